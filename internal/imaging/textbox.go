package imaging

import (
	"fmt"
	"image"
	"sort"
)

// TextBox is an axis-aligned rectangle marking detected text.
//
// Detectors produce TextBox values; in-painters and the box geometry routines
// consume them. A TextBox is a plain value and is never mutated after
// creation.
type TextBox struct {
	// X is the left edge in pixels (inclusive).
	X int `json:"x"`

	// Y is the top edge in pixels (inclusive).
	Y int `json:"y"`

	// W is the horizontal extent in pixels.
	W int `json:"width"`

	// H is the vertical extent in pixels.
	H int `json:"height"`

	// Text is the recognized string, empty when the backend only locates text.
	Text string `json:"text,omitempty"`
}

// Area returns W × H.
func (b TextBox) Area() int {
	return b.W * b.H
}

// Rect returns the box as an image.Rectangle.
func (b TextBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

func (b TextBox) String() string {
	return fmt.Sprintf("x: %d, y: %d, width: %d, height: %d", b.X, b.Y, b.W, b.H)
}

// BoxFromRect converts a rectangle into a TextBox without text.
func BoxFromRect(r image.Rectangle) TextBox {
	return TextBox{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// SortByAreaDesc orders boxes largest first. Boxes of equal area keep their
// relative order.
func SortByAreaDesc(boxes []TextBox) {
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].Area() > boxes[j].Area()
	})
}
