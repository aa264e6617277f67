// Package detection locates text blocks and quiet regions in banner images.
//
// Two independent analyses live here:
//
//   - FindTextBoxes recovers reportable text blocks from an in-painting mask
//     by thresholding, rectangular dilation and 8-connected component labelling.
//   - FindDischargedArea proposes a place for new text when no text was found,
//     by counting Harris singular points in horizontal bands.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Boxes cover [X, X+W) × [Y, Y+H)
//
// # Determinism
//
// Both analyses are pure functions of pixel content and parameters. Calling
// them twice on the same input yields the same boxes in the same order.
//
// # Performance Considerations
//
// The corner response walks every pixel several times with small kernels, so
// cost grows linearly with image area. Banner-sized images (around 1024×1024)
// take well under a second.
package detection
