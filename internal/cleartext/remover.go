package cleartext

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/BespalovSergey/banners/internal/detection"
	"github.com/BespalovSergey/banners/internal/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OutputSuffix is appended to the input file name to form the output path.
const OutputSuffix = "_remove_text"

// Remover clears text from an image and reports where text was, or where new
// text could go when there was none.
type Remover struct {
	Deleter *Deleter

	// NumTextAreas is the number of horizontal bands used when searching for
	// a discharged area.
	NumTextAreas int

	// PointThreshold is the fraction of the maximum corner response above
	// which a pixel counts as a singular point.
	PointThreshold float64

	// KernelWidth, KernelHeight and Iterations control how glyph boxes are
	// merged into reported text blocks.
	KernelWidth  int
	KernelHeight int
	Iterations   int
}

// NewRemover creates a Remover with the default analysis parameters.
func NewRemover(deleter *Deleter) *Remover {
	return &Remover{
		Deleter:        deleter,
		NumTextAreas:   detection.DefaultNumTextAreas,
		PointThreshold: detection.DefaultPointThreshold,
		KernelWidth:    detection.DefaultKernelWidth,
		KernelHeight:   detection.DefaultKernelHeight,
		Iterations:     detection.DefaultIterations,
	}
}

// RemovalResult is the outcome of Remove.
type RemovalResult struct {
	// ClearImagePath is the text-free image.
	ClearImagePath string `json:"clear_image_path"`

	// Boxes are the text blocks that were removed, largest first, or the
	// single discharged area when Discharged is set.
	Boxes []imaging.TextBox `json:"boxes"`

	// Discharged reports that no text was found and Boxes holds a suggested
	// placement area instead.
	Discharged bool `json:"discharged"`

	// Background is the mean colour of the discharged area as "#rrggbb".
	Background string `json:"background,omitempty"`

	// Iterations is the number of in-painting calls made.
	Iterations int `json:"iterations"`
}

// Report formats the result the way RemoveText returns it.
func (r *RemovalResult) Report() string {
	return FormatReport(r.ClearImagePath, r.Boxes)
}

// RemoveText runs Remove and returns its textual report.
func (r *Remover) RemoveText(ctx context.Context, imagePath string) (string, error) {
	result, err := r.Remove(ctx, imagePath)
	if err != nil {
		return "", err
	}
	return result.Report(), nil
}

// Remove clears text from imagePath.
//
// The text-free image is written next to the input as
// "<name>_remove_text<ext>". When text was found, the boxes of the last mask
// sent to the in-painter are merged into text blocks (see
// detection.FindTextBoxes). When the input had no text, a discharged area is
// computed instead (see detection.FindDischargedArea).
func (r *Remover) Remove(ctx context.Context, imagePath string) (*RemovalResult, error) {
	imagePath = strings.TrimSpace(imagePath)
	if _, err := os.Stat(imagePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &StageError{Stage: StageIO, Path: imagePath, Err: ErrNotFound}
		}
		return nil, &StageError{Stage: StageIO, Path: imagePath, Err: err}
	}

	logger := log.With().Str("run", uuid.NewString()).Str("image", imagePath).Logger()
	ctx = logger.WithContext(ctx)

	outPath := imaging.DerivedPath(imagePath, OutputSuffix)
	deleted, err := r.Deleter.DeleteText(ctx, imagePath, outPath)
	if err != nil {
		logger.Error().Err(err).Str("stage", string(StageOf(err))).Msg("text removal failed")
		return nil, err
	}

	result := &RemovalResult{
		ClearImagePath: deleted.Path,
		Iterations:     deleted.Iterations,
	}

	if deleted.FirstPassEmpty {
		img, err := imaging.Open(imagePath)
		if err != nil {
			return nil, &StageError{Stage: StageIO, Path: imagePath, Err: err}
		}
		area, err := detection.FindDischargedArea(img, r.NumTextAreas, r.PointThreshold)
		if err != nil {
			return nil, &StageError{Stage: StageAnalyze, Path: imagePath, Err: err}
		}
		logger.Debug().
			Int("band", area.Band).
			Int("quietest_band", area.Quietest).
			Interface("bands", area.Bands).
			Msg("discharged area selected")

		result.Boxes = []imaging.TextBox{area.Area}
		result.Discharged = true
		result.Background = imaging.MeanColorHex(img, area.Area.Rect())
	} else {
		// In-painters may resize; the last boxes belong to the image that
		// round in-painted, not to the input.
		size := deleted.LastMaskSize
		mask := imaging.MakeMask(deleted.LastInpainted, size.X, size.Y)
		result.Boxes = detection.FindTextBoxes(mask, r.KernelWidth, r.KernelHeight, r.Iterations)
	}

	logger.Info().
		Str("clear_image", result.ClearImagePath).
		Int("boxes", len(result.Boxes)).
		Bool("discharged", result.Discharged).
		Msg("text removal finished")
	return result, nil
}
