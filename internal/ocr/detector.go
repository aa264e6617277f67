package ocr

import (
	"context"

	"github.com/BespalovSergey/banners/internal/imaging"
)

// TextDetector finds text in an image file.
//
// Implementations return an empty, non-nil slice when the image holds no
// text. Detectors are constructed once and shared by reference; each
// implementation documents whether it may be called concurrently.
type TextDetector interface {
	DetectText(ctx context.Context, imagePath string) ([]imaging.TextBox, error)
}
