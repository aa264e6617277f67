package cleartext

import (
	"errors"
	"fmt"

	"github.com/BespalovSergey/banners/internal/inpaint"
)

var (
	// ErrNotFound means the input image does not exist.
	ErrNotFound = errors.New("image not found")

	// ErrServiceFailure means the in-painting backend failed. It is the same
	// value as inpaint.ErrServiceFailure.
	ErrServiceFailure = inpaint.ErrServiceFailure

	// ErrContractViolation means an in-painter reported success without
	// writing its output file.
	ErrContractViolation = errors.New("in-painter contract violation")
)

// Stage names the pipeline step that failed.
type Stage string

const (
	StageDetect  Stage = "detect"
	StageInpaint Stage = "inpaint"
	StageIO      Stage = "io"
	StageAnalyze Stage = "analyze"
)

// StageError attaches the failing stage and the image it was working on to
// an error. Use errors.Is on it to test for the sentinel errors above.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed for %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage recorded in err, or "" when err carries none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
