package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/BespalovSergey/banners/internal/imaging"
	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// TesseractDetector detects words with the Tesseract OCR engine.
//
// The engine is initialised on the first call and reused afterwards. A
// Tesseract handle is not reentrant, so calls are serialised; share one
// detector between pipelines instead of creating one per image.
type TesseractDetector struct {
	languages      []string
	tessdataPrefix string
	minConfidence  float64

	once    sync.Once
	initErr error

	mu     sync.Mutex
	client *gosseract.Client
}

// TesseractOption configures a TesseractDetector.
type TesseractOption func(*TesseractDetector)

// WithLanguages sets the Tesseract language codes (e.g. "eng", "rus").
// The corresponding language data must be installed.
func WithLanguages(languages ...string) TesseractOption {
	return func(d *TesseractDetector) {
		if len(languages) > 0 {
			d.languages = languages
		}
	}
}

// WithTessdataPrefix points Tesseract at a non-default tessdata directory.
func WithTessdataPrefix(prefix string) TesseractOption {
	return func(d *TesseractDetector) {
		d.tessdataPrefix = prefix
	}
}

// WithMinConfidence drops words recognised with a confidence (0.0 to 1.0)
// below confidence.
func WithMinConfidence(confidence float64) TesseractOption {
	return func(d *TesseractDetector) {
		d.minConfidence = confidence
	}
}

// NewTesseractDetector creates a detector. The engine itself is not touched
// until the first DetectText call.
func NewTesseractDetector(opts ...TesseractOption) *TesseractDetector {
	d := &TesseractDetector{languages: []string{DefaultLanguage}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *TesseractDetector) init() error {
	d.once.Do(func() {
		client := gosseract.NewClient()
		if d.tessdataPrefix != "" {
			if err := client.SetTessdataPrefix(d.tessdataPrefix); err != nil {
				client.Close()
				d.initErr = fmt.Errorf("failed to set tessdata prefix: %w", err)
				return
			}
		}
		if err := client.SetLanguage(d.languages...); err != nil {
			client.Close()
			d.initErr = fmt.Errorf("failed to set language: %w", err)
			return
		}
		d.client = client
	})
	return d.initErr
}

// DetectText returns one box per recognised word, in Tesseract's reading
// order. Words that are blank after trimming are skipped.
//
// # Word-Level Results
//
// Boxes come from Tesseract's RIL_WORD iterator level and carry the
// recognised word in Text.
func (d *TesseractDetector) DetectText(ctx context.Context, imagePath string) ([]imaging.TextBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.init(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return nil, errors.New("tesseract detector is closed")
	}
	if err := d.client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	words, err := d.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get word boxes: %w", err)
	}

	boxes := make([]imaging.TextBox, 0, len(words))
	for _, word := range words {
		text := strings.TrimSpace(word.Word)
		if text == "" {
			continue
		}
		if word.Confidence/100.0 < d.minConfidence {
			continue
		}
		box := imaging.BoxFromRect(word.Box)
		box.Text = text
		boxes = append(boxes, box)
	}
	return boxes, nil
}

// Close releases the Tesseract engine. The detector must not be used
// afterwards.
func (d *TesseractDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	return err
}
