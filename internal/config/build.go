package config

import (
	"github.com/BespalovSergey/banners/internal/cleartext"
	"github.com/BespalovSergey/banners/internal/inpaint"
	"github.com/BespalovSergey/banners/internal/ocr"
)

// NewDetector builds the configured text detector. Call once and share it.
func (c *Config) NewDetector() ocr.TextDetector {
	if c.Detector.Backend == DetectorRemote {
		return ocr.NewRemoteDetector(ocr.RemoteOpts{
			BaseURL: c.Detector.URL,
			Token:   c.Detector.Token,
			Timeout: c.HTTPTimeout,
		})
	}

	opts := []ocr.TesseractOption{
		ocr.WithLanguages(c.Detector.Languages...),
		ocr.WithMinConfidence(c.Detector.MinConfidence),
	}
	if c.Detector.TessdataPrefix != "" {
		opts = append(opts, ocr.WithTessdataPrefix(c.Detector.TessdataPrefix))
	}
	return ocr.NewTesseractDetector(opts...)
}

// NewInpainter builds the configured in-painting backend.
func (c *Config) NewInpainter() inpaint.Inpainter {
	if c.Inpainter.Backend == InpainterReplicate {
		return inpaint.NewReplicateInpainter(inpaint.ReplicateOpts{
			APIToken:    c.Inpainter.ReplicateToken,
			BaseURL:     c.Inpainter.ReplicateBaseURL,
			Model:       c.Inpainter.ReplicateModel,
			Version:     c.Inpainter.ReplicateVersion,
			Timeout:     c.HTTPTimeout,
			PollTimeout: c.Inpainter.PollTimeout,
		})
	}

	return inpaint.NewDalleInpainter(inpaint.DalleOpts{
		APIKey:  c.Inpainter.OpenAIKey,
		BaseURL: c.Inpainter.OpenAIBaseURL,
		Model:   c.Inpainter.DalleModel,
		Size:    c.Inpainter.DalleSize,
		Timeout: c.HTTPTimeout,
	})
}

// NewRemover wires a Remover around the given backends using the
// configured retry budget, prompt and analysis parameters.
func (c *Config) NewRemover(detector ocr.TextDetector, inpainter inpaint.Inpainter) *cleartext.Remover {
	deleter := cleartext.NewDeleter(detector, inpainter)
	deleter.MaxRetries = c.MaxRetries
	deleter.Prompt = c.Prompt

	remover := cleartext.NewRemover(deleter)
	remover.NumTextAreas = c.NumTextAreas
	remover.PointThreshold = c.PointThreshold
	remover.KernelWidth = c.KernelWidth
	remover.KernelHeight = c.KernelHeight
	remover.Iterations = c.Iterations
	return remover
}
