package detection

import (
	"fmt"
	"image"

	"github.com/BespalovSergey/banners/internal/imaging"
)

// Defaults for the discharged-area heuristic.
const (
	DefaultNumTextAreas   = 5
	DefaultPointThreshold = 0.1
)

// dischargedBand is the band that receives replacement text.
const dischargedBand = 1

// dischargedMargin is the horizontal inset, as a fraction of the width, kept
// free on each side of the discharged area.
const dischargedMargin = 0.05

// Band is a horizontal slice of the image, rows [Top, Bottom).
type Band struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
	Points int `json:"points"`
}

// DischargeResult describes the suggested placement area together with the
// per-band density it was chosen from.
type DischargeResult struct {
	Area  imaging.TextBox `json:"area"`
	Bands []Band          `json:"bands"`
	// Band is the index of the band that supplied the area.
	Band int `json:"band"`
	// Quietest is the index of the band with the fewest singular points.
	Quietest int `json:"quietest"`
}

// PointsDensity counts singular points in n equal-height horizontal bands.
// Band borders are int(i*h/n).
func PointsDensity(points [][]bool, n int) []Band {
	height := len(points)
	bands := make([]Band, 0, n)
	for i := 1; i <= n; i++ {
		top := int(float64(i-1) * float64(height) / float64(n))
		bottom := int(float64(i) * float64(height) / float64(n))
		count := 0
		for y := top; y < bottom; y++ {
			for _, p := range points[y] {
				if p {
					count++
				}
			}
		}
		bands = append(bands, Band{Top: top, Bottom: bottom, Points: count})
	}
	return bands
}

// FindDischargedArea suggests a visually quiet rectangle for new text.
//
// The image is split into numTextAreas horizontal bands and the Harris
// singular points of each band are counted. The second band (index 1, or the
// only band when numTextAreas is 1) supplies the vertical extent; the
// horizontal extent is the image width less a 5% margin on each side. The
// least dense band is reported in Quietest but not used.
//
// The result depends only on pixel content and the two parameters.
func FindDischargedArea(img image.Image, numTextAreas int, pointThreshold float64) (*DischargeResult, error) {
	if numTextAreas < 1 {
		return nil, fmt.Errorf("number of text areas must be at least 1, got %d", numTextAreas)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image is empty: %dx%d", width, height)
	}

	bands := PointsDensity(SingularPoints(img, pointThreshold), numTextAreas)

	quietest := 0
	for i, b := range bands {
		if b.Points < bands[quietest].Points {
			quietest = i
		}
	}

	index := min(dischargedBand, numTextAreas-1)
	band := bands[index]

	margin := int(dischargedMargin * float64(width))
	area := imaging.TextBox{
		X: bounds.Min.X + margin,
		Y: bounds.Min.Y + band.Top,
		W: width - 2*margin,
		H: band.Bottom - band.Top,
	}

	return &DischargeResult{
		Area:     area,
		Bands:    bands,
		Band:     index,
		Quietest: quietest,
	}, nil
}
