package detection

import (
	"image"

	"github.com/BespalovSergey/banners/internal/imaging"
	"github.com/anthonynsimon/bild/segment"
)

// Defaults for merging glyphs of a mask into text blocks.
const (
	DefaultKernelWidth  = 20
	DefaultKernelHeight = 20
	DefaultIterations   = 1
)

// maskThreshold separates text (alpha below) from background in a mask.
const maskThreshold = 128

// point is a pixel coordinate in component space.
type point struct {
	X, Y int
}

// FindTextBoxes turns an in-painting mask back into reportable text blocks.
//
// # Algorithm
//
//  1. Threshold the alpha plane: alpha < 128 is text
//  2. Dilate the text pixels with a kernelW × kernelH rectangle, iterations
//     times, so nearby words and glyphs merge into one blob
//  3. Label 8-connected components
//  4. Return each component's bounding rectangle
//
// Boxes are sorted by descending area; equal areas keep scan order (the
// order in which each component's first pixel is met, row by row).
func FindTextBoxes(mask *image.NRGBA, kernelW, kernelH, iterations int) []imaging.TextBox {
	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return []imaging.TextBox{}
	}

	binary := segment.Threshold(imaging.AlphaPlane(mask), maskThreshold)

	text := make([][]bool, height)
	for y := 0; y < height; y++ {
		text[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			// Opaque background thresholds to white.
			text[y][x] = binary.Pix[y*binary.Stride+x] == 0
		}
	}

	for i := 0; i < iterations; i++ {
		text = DilateRect(text, kernelW, kernelH)
	}

	components := findComponents(text, width, height)

	boxes := make([]imaging.TextBox, 0, len(components))
	for _, component := range components {
		minX, minY := width, height
		maxX, maxY := -1, -1
		for _, p := range component {
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
		boxes = append(boxes, imaging.TextBox{
			X: minX + bounds.Min.X,
			Y: minY + bounds.Min.Y,
			W: maxX - minX + 1,
			H: maxY - minY + 1,
		})
	}

	imaging.SortByAreaDesc(boxes)
	return boxes
}

// DilateRect dilates a binary map with a kw × kh rectangular structuring
// element anchored at (kw/2, kh/2): each output pixel is set when any input
// pixel in [x-kw/2, x-kw/2+kw) × [y-kh/2, y-kh/2+kh) is set. Pixels outside
// the map count as unset.
//
// The rectangle is separable, so the work is a horizontal then a vertical
// sliding window over prefix counts.
func DilateRect(src [][]bool, kw, kh int) [][]bool {
	height := len(src)
	if height == 0 || kw <= 0 || kh <= 0 {
		return src
	}
	width := len(src[0])

	horizontal := make([][]bool, height)
	prefix := make([]int, max(width, height)+1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			prefix[x+1] = prefix[x] + boolInt(src[y][x])
		}
		horizontal[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			lo, hi := windowRange(x, kw, width)
			horizontal[y][x] = prefix[hi]-prefix[lo] > 0
		}
	}

	out := make([][]bool, height)
	for y := 0; y < height; y++ {
		out[y] = make([]bool, width)
	}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			prefix[y+1] = prefix[y] + boolInt(horizontal[y][x])
		}
		for y := 0; y < height; y++ {
			lo, hi := windowRange(y, kh, height)
			out[y][x] = prefix[hi]-prefix[lo] > 0
		}
	}
	return out
}

// windowRange returns the clipped half-open index range covered by a window
// of size k anchored at k/2 around i.
func windowRange(i, k, n int) (int, int) {
	lo := i - k/2
	hi := lo + k
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// findComponents groups set pixels into 8-connected components, returned in
// scan order.
func findComponents(pixels [][]bool, width, height int) [][]point {
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		visited[y] = make([]bool, width)
	}

	components := make([][]point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if pixels[y][x] && !visited[y][x] {
				component := make([]point, 0)
				floodFill(pixels, visited, x, y, width, height, &component)
				components = append(components, component)
			}
		}
	}
	return components
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large components. Uses 8-connectivity.
func floodFill(pixels, visited [][]bool, startX, startY, width, height int, component *[]point) {
	stack := []point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !pixels[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		*component = append(*component, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}
