package ocr

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/BespalovSergey/banners/internal/imaging"
	"github.com/go-resty/resty/v2"
)

// DefaultDetectPath is the endpoint the remote detector posts images to.
const DefaultDetectPath = "/detect"

// Prediction is one recognised word as returned by the detection service:
// the text and the four corners of its (possibly rotated) quadrilateral.
type Prediction struct {
	Text string       `json:"text"`
	Box  [][2]float64 `json:"box"`
}

// PredictionResponse is the body returned by the detection service.
type PredictionResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// RemoteOpts configures a RemoteDetector.
type RemoteOpts struct {
	BaseURL string
	Path    string
	Token   string
	Timeout time.Duration
}

// RemoteDetector calls an HTTP text-detection service running a neural
// detector (keras-ocr or similar). It is safe for concurrent use.
type RemoteDetector struct {
	httpClient *resty.Client
	path       string
}

// NewRemoteDetector creates a detector for the service at opts.BaseURL.
func NewRemoteDetector(opts RemoteOpts) *RemoteDetector {
	d := &RemoteDetector{path: DefaultDetectPath}
	if opts.Path != "" {
		d.path = opts.Path
	}

	d.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json")
	if opts.Token != "" {
		d.httpClient.SetAuthToken(opts.Token)
	}
	if opts.Timeout > 0 {
		d.httpClient.SetTimeout(opts.Timeout)
	}
	return d
}

// DetectText uploads the image and converts every predicted polygon into its
// axis-aligned bounding rectangle.
func (d *RemoteDetector) DetectText(ctx context.Context, imagePath string) ([]imaging.TextBox, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	result := &PredictionResponse{}
	_, err = handleError(d.httpClient.R().
		SetContext(ctx).
		SetFileReader("image", filepath.Base(imagePath), f).
		SetResult(result).
		Post(d.path))
	if err != nil {
		return nil, fmt.Errorf("text detection failed: %w", err)
	}

	boxes := make([]imaging.TextBox, 0, len(result.Predictions))
	for _, p := range result.Predictions {
		box, ok := PolygonBox(p.Box)
		if !ok {
			continue
		}
		box.Text = p.Text
		boxes = append(boxes, box)
	}
	return boxes, nil
}

// PolygonBox returns the bounding rectangle of a polygon. Coordinates are
// truncated to integers before the width and height are taken, so
// W = int(max x) - int(min x). Polygons without points report false.
func PolygonBox(points [][2]float64) (imaging.TextBox, bool) {
	if len(points) == 0 {
		return imaging.TextBox{}, false
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p[0])
		maxX = math.Max(maxX, p[0])
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}

	x, y := int(minX), int(minY)
	return imaging.TextBox{
		X: x,
		Y: y,
		W: int(maxX) - x,
		H: int(maxY) - y,
	}, true
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
