package imaging

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// MeanColorHex returns the average colour of region as "#rrggbb".
//
// Pixels are averaged in linear RGB so the hint matches perceived brightness
// better than a plain sRGB mean. The region is clipped to the image; an empty
// intersection yields an empty string.
func MeanColorHex(img image.Image, region image.Rectangle) string {
	r := region.Intersect(img.Bounds())
	if r.Empty() {
		return ""
	}

	var sr, sg, sb float64
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				// fully transparent pixel
				continue
			}
			lr, lg, lb := c.LinearRgb()
			sr += lr
			sg += lg
			sb += lb
			n++
		}
	}
	if n == 0 {
		return ""
	}

	return colorful.LinearRgb(sr/float64(n), sg/float64(n), sb/float64(n)).Clamped().Hex()
}
