package inpaint

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/BespalovSergey/banners/internal/imaging"
	"github.com/go-resty/resty/v2"
)

// DefaultPrompt describes what the repainted regions should become.
const DefaultPrompt = "plain background"

// ErrServiceFailure is returned when the in-painting service fails: transport
// errors, non-2xx responses, empty or undecodable results.
var ErrServiceFailure = errors.New("in-painting service failure")

// downloadClient fetches result images. Result URLs point at storage hosts,
// so it never carries API credentials.
var downloadClient = resty.New().SetDebug(false).SetTimeout(60 * time.Second)

// Inpainter regenerates the boxed regions of an image.
//
// Inpaint reads inPath, repaints every box according to prompt and writes the
// result to outPath, overwriting it. The mask is built at the size of the
// decoded input, so boxes never refer to a different resolution than the
// image sent to the service.
type Inpainter interface {
	Inpaint(ctx context.Context, inPath string, boxes []imaging.TextBox, prompt, outPath string) error
}

// serviceFailure wraps err so that errors.Is(err, ErrServiceFailure) holds.
func serviceFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrServiceFailure, err)
}

// loadWithMask decodes the input image and builds its mask.
func loadWithMask(inPath string, boxes []imaging.TextBox) (image.Image, *image.NRGBA, error) {
	img, err := imaging.Open(inPath)
	if err != nil {
		return nil, nil, err
	}
	return img, imaging.MaskForImage(img, boxes), nil
}

// download fetches an image URL and saves it to outPath in the format given
// by the outPath extension.
func download(ctx context.Context, url, outPath string) error {
	res, err := handleError(downloadClient.R().SetContext(ctx).Get(url))
	if err != nil {
		return serviceFailure("download result", err)
	}
	if len(res.Body()) == 0 {
		return serviceFailure("download result", errors.New("empty body"))
	}

	img, err := imaging.Decode(res.Body())
	if err != nil {
		return serviceFailure("download result", err)
	}
	return imaging.Save(img, outPath)
}

// handleError is a generic error handler for failing response (>399 status
// code). Without this, failing responses would have nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, fmt.Errorf("request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}

	return res, nil
}
