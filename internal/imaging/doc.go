// Package imaging provides the image primitives shared by the text-removal
// pipeline: text boxes, in-painting masks, cached image loading and colour
// hints.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - A TextBox covers the half-open region [X, X+W) × [Y, Y+H)
//
// # Masks
//
// An in-painting mask has the exact dimensions of its source image. It is
// fully opaque everywhere except inside text boxes, where alpha is 0. Backends
// that expect the opposite convention (white = repaint) derive it with
// RepaintMask rather than building their own.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Mask construction and colour
// sampling are stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Missing or undecodable image files
//   - Files that cannot be created when saving
//   - Encoding errors during mask serialisation
package imaging
