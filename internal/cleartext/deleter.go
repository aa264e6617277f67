package cleartext

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/BespalovSergey/banners/internal/imaging"
	"github.com/BespalovSergey/banners/internal/inpaint"
	"github.com/BespalovSergey/banners/internal/ocr"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultMaxRetries is the number of detect/inpaint rounds a Deleter runs
// before settling for what it has.
const DefaultMaxRetries = 5

// Deleter removes text by alternating detection and in-painting until the
// detector finds nothing or the retry budget runs out.
type Deleter struct {
	Detector  ocr.TextDetector
	Inpainter inpaint.Inpainter

	// MaxRetries caps the number of in-painting calls. Values below 1 are
	// treated as 1.
	MaxRetries int

	// Prompt is passed to the in-painter; empty means inpaint.DefaultPrompt.
	Prompt string
}

// NewDeleter creates a Deleter with the default retry budget and prompt.
func NewDeleter(detector ocr.TextDetector, inpainter inpaint.Inpainter) *Deleter {
	return &Deleter{
		Detector:   detector,
		Inpainter:  inpainter,
		MaxRetries: DefaultMaxRetries,
		Prompt:     inpaint.DefaultPrompt,
	}
}

// DeleteResult is the outcome of a DeleteText run.
type DeleteResult struct {
	// Path is the text-free image: the input path when no text was found on
	// the first pass, the output path otherwise.
	Path string `json:"path"`

	// Iterations is the number of in-painting calls made.
	Iterations int `json:"iterations"`

	// FirstPassEmpty reports that the input had no detectable text.
	FirstPassEmpty bool `json:"first_pass_empty"`

	// LastDetected holds the boxes of the final detection pass. It is
	// non-empty only when the retry budget ran out with text remaining.
	LastDetected []imaging.TextBox `json:"last_detected"`

	// LastInpainted holds the boxes behind the last mask sent to the
	// in-painter.
	LastInpainted []imaging.TextBox `json:"last_inpainted"`

	// LastMaskSize is the size of the image that last mask was built for.
	// In-painters may change resolution between rounds, so it can differ
	// from the input size.
	LastMaskSize image.Point `json:"last_mask_size"`
}

// Exhausted reports whether text was still detected when the run stopped.
func (r *DeleteResult) Exhausted() bool {
	return len(r.LastDetected) > 0
}

// DeleteText removes text from inPath, writing in-painted images to outPath.
//
// Every round detects text on the latest image and in-paints it into
// outPath, which is overwritten each time and becomes the next round's input.
// The run stops when detection comes back empty or after MaxRetries
// in-painting calls; running out of retries is not an error.
//
// When the first detection finds nothing, inPath is returned unchanged and
// the in-painter is never called.
func (d *Deleter) DeleteText(ctx context.Context, inPath, outPath string) (*DeleteResult, error) {
	logger := loggerFrom(ctx)

	maxRetries := d.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	prompt := d.Prompt
	if prompt == "" {
		prompt = inpaint.DefaultPrompt
	}

	result := &DeleteResult{Path: inPath}
	toInpaint := inPath

	for i := 0; i < maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger.Info().
			Int("iteration", i).
			Int("max_retries", maxRetries).
			Str("current", toInpaint).
			Msg("detecting text")

		boxes, err := d.Detector.DetectText(ctx, toInpaint)
		if err != nil {
			return nil, &StageError{Stage: StageDetect, Path: toInpaint, Err: err}
		}
		result.LastDetected = boxes
		logger.Info().Int("boxes", len(boxes)).Msg("text detected")

		if len(boxes) == 0 {
			if i == 0 {
				result.FirstPassEmpty = true
			}
			return result, nil
		}

		size, err := imaging.Size(toInpaint)
		if err != nil {
			return nil, &StageError{Stage: StageIO, Path: toInpaint, Err: err}
		}

		logger.Info().Str("out", outPath).Msg("in-painting text boxes")
		if err := d.Inpainter.Inpaint(ctx, toInpaint, boxes, prompt, outPath); err != nil {
			return nil, &StageError{Stage: StageInpaint, Path: toInpaint, Err: err}
		}
		if _, err := os.Stat(outPath); err != nil {
			return nil, &StageError{
				Stage: StageInpaint,
				Path:  toInpaint,
				Err:   fmt.Errorf("%w: output %s not written: %v", ErrContractViolation, outPath, err),
			}
		}

		result.Iterations++
		result.LastInpainted = boxes
		result.LastMaskSize = size
		result.Path = outPath
		toInpaint = outPath
	}

	logger.Warn().
		Int("iterations", result.Iterations).
		Int("remaining_boxes", len(result.LastDetected)).
		Msg("retry budget exhausted, text may remain")
	return result, nil
}

// loggerFrom returns the logger stored in ctx, falling back to the global
// logger.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
