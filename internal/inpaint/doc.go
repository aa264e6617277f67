// Package inpaint regenerates masked regions of an image with hosted
// diffusion models.
//
// Two Inpainter implementations are provided:
//
//   - DalleInpainter: OpenAI image edits. The mask is a PNG whose transparent
//     pixels mark the regions to repaint.
//   - ReplicateInpainter: any Replicate in-painting model. The mask is a
//     grayscale PNG where white marks the regions to repaint.
//
// Both derive their mask from the same imaging.MakeMask output, sized from
// the decoded input image, and both download the first generated image and
// save it to the requested output path.
//
// Every failure on the service side (transport errors, non-2xx statuses,
// failed predictions, empty or undecodable results) wraps ErrServiceFailure.
package inpaint
