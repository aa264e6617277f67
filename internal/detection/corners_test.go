package detection

import (
	"image"
	"image/color"
	"testing"
)

// createSquareImage draws a filled white square on a black background.
func createSquareImage(size, x1, y1, x2, y2 int) *image.RGBA {
	img := createTestImage(size, size, color.Black)
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func anyPointNear(points [][]bool, cx, cy, radius int) bool {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			if y >= 0 && y < len(points) && x >= 0 && x < len(points[y]) && points[y][x] {
				return true
			}
		}
	}
	return false
}

func TestSingularPoints_SquareCorners(t *testing.T) {
	img := createSquareImage(60, 20, 20, 40, 40)
	points := SingularPoints(img, DefaultPointThreshold)

	if len(points) != 60 || len(points[0]) != 60 {
		t.Fatalf("points grid %dx%d, want 60x60", len(points[0]), len(points))
	}

	for _, c := range []image.Point{{20, 20}, {39, 20}, {20, 39}, {39, 39}} {
		if !anyPointNear(points, c.X, c.Y, 4) {
			t.Errorf("expected a singular point near corner %v", c)
		}
	}

	if points[5][5] {
		t.Error("background far from the square should have no singular point")
	}
	if points[30][30] {
		t.Error("flat interior of the square should have no singular point")
	}
}

func TestSingularPoints_FlatImage(t *testing.T) {
	img := createTestImage(40, 30, color.RGBA{200, 100, 50, 255})
	points := SingularPoints(img, DefaultPointThreshold)

	for y := range points {
		for x := range points[y] {
			if points[y][x] {
				t.Fatalf("flat image has singular point at (%d,%d)", x, y)
			}
		}
	}
}

func TestCornerResponse_EmptyImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if got := CornerResponse(img); got != nil {
		t.Errorf("expected nil response for empty image, got %v", got)
	}
}

func TestReflect101(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{-1, 5, 1},
		{-2, 5, 2},
		{5, 5, 3},
		{6, 5, 2},
		{-3, 1, 0},
		{-1, 2, 1},
		{2, 2, 0},
	}

	for _, tt := range tests {
		if got := reflect101(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}
