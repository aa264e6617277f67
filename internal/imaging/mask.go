package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// MakeMask builds an in-painting mask of exactly width × height pixels.
//
// The mask starts fully opaque (alpha 255, RGB 0). For every box the alpha of
// the sub-rectangle [Y, Y+H) × [X, X+W) is set to 0, marking it for repaint.
// Boxes are neither merged nor validated; the parts of a box that fall outside
// the image are simply not drawn.
func MakeMask(boxes []TextBox, width, height int) *image.NRGBA {
	mask := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(mask, mask.Bounds(), image.NewUniform(color.NRGBA{A: 255}), image.Point{}, draw.Src)

	transparent := image.NewUniform(color.NRGBA{})
	for _, b := range boxes {
		r := b.Rect().Intersect(mask.Bounds())
		if r.Empty() {
			continue
		}
		draw.Draw(mask, r, transparent, image.Point{}, draw.Src)
	}
	return mask
}

// RepaintMask converts an alpha mask into the white-on-black convention used
// by diffusion in-painting models: transparent pixels become white (repaint),
// opaque pixels black (keep).
func RepaintMask(mask *image.NRGBA) *image.Gray {
	b := mask.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetGray(x, y, color.Gray{Y: 255 - mask.NRGBAAt(x, y).A})
		}
	}
	return out
}

// AlphaPlane extracts the alpha channel of a mask as a grayscale image.
func AlphaPlane(mask *image.NRGBA) *image.Gray {
	b := mask.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetGray(x, y, color.Gray{Y: mask.NRGBAAt(x, y).A})
		}
	}
	return out
}

// EncodePNG serialises an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// MaskForImage builds the mask for boxes at the size of img.
func MaskForImage(img image.Image, boxes []TextBox) *image.NRGBA {
	b := img.Bounds()
	return MakeMask(boxes, b.Dx(), b.Dy())
}
