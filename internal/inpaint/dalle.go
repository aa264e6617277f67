package inpaint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BespalovSergey/banners/internal/imaging"
	"github.com/go-resty/resty/v2"
)

const (
	// OpenAIBaseURL is the default OpenAI API endpoint.
	OpenAIBaseURL = "https://api.openai.com"

	// DefaultDalleModel is the only OpenAI model that accepts image edits
	// with a mask.
	DefaultDalleModel = "dall-e-2"
)

// DalleOpts configures a DalleInpainter.
type DalleOpts struct {
	APIKey  string
	BaseURL string
	Model   string
	// Size is the requested output size, e.g. "1024x1024". Empty leaves the
	// choice to the service.
	Size    string
	Timeout time.Duration
}

type imageEditResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// DalleInpainter repaints images with the OpenAI image edit endpoint.
//
// The input image is uploaded unchanged together with a PNG mask whose
// transparent pixels mark the regions to regenerate. The first returned URL
// is downloaded and saved to the output path.
type DalleInpainter struct {
	httpClient *resty.Client
	model      string
	size       string
}

// NewDalleInpainter creates an in-painter authenticated with opts.APIKey.
func NewDalleInpainter(opts DalleOpts) *DalleInpainter {
	d := &DalleInpainter{model: DefaultDalleModel, size: opts.Size}
	if opts.Model != "" {
		d.model = opts.Model
	}

	baseURL := OpenAIBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	d.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(baseURL).
		SetAuthToken(opts.APIKey)
	if opts.Timeout > 0 {
		d.httpClient.SetTimeout(opts.Timeout)
	}
	return d
}

// Inpaint implements Inpainter.
func (d *DalleInpainter) Inpaint(ctx context.Context, inPath string, boxes []imaging.TextBox, prompt, outPath string) error {
	_, mask, err := loadWithMask(inPath, boxes)
	if err != nil {
		return err
	}
	maskPNG, err := imaging.EncodePNG(mask)
	if err != nil {
		return err
	}

	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	form := map[string]string{
		"prompt": prompt,
		"n":      "1",
		"model":  d.model,
	}
	if d.size != "" {
		form["size"] = d.size
	}

	result := &imageEditResponse{}
	apiErr := &openAIError{}
	_, err = handleError(d.httpClient.R().
		SetContext(ctx).
		SetFileReader("image", filepath.Base(inPath), f).
		SetFileReader("mask", "mask.png", bytes.NewReader(maskPNG)).
		SetMultipartFormData(form).
		SetResult(result).
		SetError(apiErr).
		Post("/v1/images/edits"))
	if err != nil {
		if apiErr.Error.Message != "" {
			err = fmt.Errorf("%w: %s", err, apiErr.Error.Message)
		}
		return serviceFailure("image edit", err)
	}

	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return serviceFailure("image edit", errors.New("no image in response"))
	}

	return download(ctx, result.Data[0].URL, outPath)
}
