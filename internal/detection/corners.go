package detection

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// Harris parameters used for singular point detection.
const (
	harrisBlockSize = 2
	harrisK         = 0.07
)

// 5-tap Sobel kernels: smoothing and first derivative.
var (
	sobelSmooth5 = [5]float64{1, 4, 6, 4, 1}
	sobelDeriv5  = [5]float64{-1, -2, 0, 2, 1}
)

// CornerResponse computes the Harris corner response of img.
//
// # Algorithm
//
//  1. Grayscale conversion with ITU-R BT.601 weights (0.299, 0.587, 0.114)
//  2. Image derivatives Ix, Iy with 5×5 Sobel operators
//  3. Structure tensor (Ix², IxIy, Iy²) summed over a 2×2 block whose anchor
//     is its bottom-right pixel
//  4. R = det(M) - k·trace(M)², with k = 0.07
//
// Borders are handled by reflection without repeating the edge pixel
// (…cb|abcd|cb…). The absolute scale of R is arbitrary; callers only compare
// it against a fraction of its maximum.
func CornerResponse(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	gray := effect.GrayscaleWithWeights(img, 0.299, 0.587, 0.114)
	lum := make([][]float64, height)
	for y := 0; y < height; y++ {
		lum[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			lum[y][x] = float64(gray.Pix[y*gray.Stride+x*4])
		}
	}

	ix := separable(lum, sobelDeriv5[:], sobelSmooth5[:])
	iy := separable(lum, sobelSmooth5[:], sobelDeriv5[:])

	xx := make([][]float64, height)
	xy := make([][]float64, height)
	yy := make([][]float64, height)
	for y := 0; y < height; y++ {
		xx[y] = make([]float64, width)
		xy[y] = make([]float64, width)
		yy[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			dx, dy := ix[y][x], iy[y][x]
			xx[y][x] = dx * dx
			xy[y][x] = dx * dy
			yy[y][x] = dy * dy
		}
	}

	a := blockSum(xx, harrisBlockSize)
	b := blockSum(xy, harrisBlockSize)
	c := blockSum(yy, harrisBlockSize)

	response := make([][]float64, height)
	for y := 0; y < height; y++ {
		response[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			det := a[y][x]*c[y][x] - b[y][x]*b[y][x]
			trace := a[y][x] + c[y][x]
			response[y][x] = det - harrisK*trace*trace
		}
	}
	return response
}

// SingularPoints marks the pixels whose Harris response exceeds
// threshold × max(response), after a 3×3 dilation that merges the
// neighbourhood of each corner into one blob.
//
// The result is indexed [y][x].
func SingularPoints(img image.Image, threshold float64) [][]bool {
	response := CornerResponse(img)
	if len(response) == 0 {
		return nil
	}
	height := len(response)
	width := len(response[0])

	maxResponse := response[0][0]
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if response[y][x] > maxResponse {
				maxResponse = response[y][x]
			}
		}
	}
	limit := threshold * maxResponse

	// Dilating the response and then thresholding keeps exactly the pixels
	// with at least one neighbour above the limit, so threshold first and
	// dilate the binary map.
	marks := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if response[y][x] > limit {
				marks.Pix[y*marks.Stride+x] = 255
			}
		}
	}
	dilated := effect.Dilate(marks, 1)

	points := make([][]bool, height)
	for y := 0; y < height; y++ {
		points[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			points[y][x] = dilated.Pix[y*dilated.Stride+x*4] == 255
		}
	}
	return points
}

// separable correlates src with the outer product of col (vertical) and row
// (horizontal) 5-tap kernels.
func separable(src [][]float64, row, col []float64) [][]float64 {
	height := len(src)
	width := len(src[0])
	radius := len(row) / 2

	tmp := make([][]float64, height)
	for y := 0; y < height; y++ {
		tmp[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var sum float64
			for k := range row {
				sum += row[k] * src[y][reflect101(x+k-radius, width)]
			}
			tmp[y][x] = sum
		}
	}

	out := make([][]float64, height)
	for y := 0; y < height; y++ {
		out[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var sum float64
			for k := range col {
				sum += col[k] * tmp[reflect101(y+k-radius, height)][x]
			}
			out[y][x] = sum
		}
	}
	return out
}

// blockSum sums src over a size×size window anchored at size/2, i.e. offsets
// [-size/2, size-1-size/2] on both axes.
func blockSum(src [][]float64, size int) [][]float64 {
	height := len(src)
	width := len(src[0])
	anchor := size / 2

	out := make([][]float64, height)
	for y := 0; y < height; y++ {
		out[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var sum float64
			for dy := 0; dy < size; dy++ {
				sy := reflect101(y+dy-anchor, height)
				for dx := 0; dx < size; dx++ {
					sum += src[sy][reflect101(x+dx-anchor, width)]
				}
			}
			out[y][x] = sum
		}
	}
	return out
}

// reflect101 maps an out-of-range index back into [0, n) by mirroring
// around the edge pixels without repeating them.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}
