// Package cleartext removes text from banner images.
//
// A Deleter alternates text detection and in-painting until no text is left
// or its retry budget runs out. A Remover wraps a Deleter, derives the output
// path, and afterwards reports either the text blocks that were removed or,
// for images that had no text, a quiet area where new text could be placed.
//
// Detectors and in-painters are injected; see packages ocr and inpaint.
//
// # Errors
//
// Failures are returned as *StageError values naming the stage (detect,
// inpaint, io, analyze). Use errors.Is with ErrNotFound, ErrServiceFailure
// and ErrContractViolation to classify them. Running out of retries is not an
// error.
package cleartext
