// Package ocr finds text in banner images.
//
// Two TextDetector implementations are provided:
//
//   - TesseractDetector: local OCR via the Tesseract engine (gosseract/v2),
//     one box per recognised word
//   - RemoteDetector: a neural text-detection service reached over HTTP,
//     one box per predicted word polygon
//
// Both return boxes as imaging.TextBox values in image pixel coordinates,
// with the recognised word in Text.
//
// # Prerequisites
//
// TesseractDetector needs Tesseract and its language data installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Sharing Detectors
//
// Engine setup is expensive. Create one detector at startup and pass it to
// every pipeline that needs it. TesseractDetector serialises calls internally;
// RemoteDetector is safe for concurrent use.
//
// # Remote Service Contract
//
// RemoteDetector posts the image as multipart field "image" and expects:
//
//	{"predictions": [{"text": "sale", "box": [[x, y], [x, y], [x, y], [x, y]]}]}
//
// Any transport error or non-2xx status is returned as an error.
package ocr
