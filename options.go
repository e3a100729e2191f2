package marginalia

import (
	"log/slog"

	"github.com/tsawler/marginalia/document"
	"github.com/tsawler/marginalia/export"
	"github.com/tsawler/marginalia/pipeline"
)

// config holds session settings assembled from Options.
type config struct {
	logger     *slog.Logger
	workers    int
	renderer   document.Renderer
	recognizer pipeline.Recognizer
	clipboard  export.Clipboard
}

// defaultConfig returns the default session configuration.
func defaultConfig() config {
	return config{
		logger:    slog.Default(),
		clipboard: export.SystemClipboard{},
	}
}

// Option configures a Session.
type Option func(*config)

// WithLogger routes session and pipeline logging to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWorkers bounds how many pages the extraction pipeline fetches at
// once. Values below 1 keep the default.
func WithWorkers(workers int) Option {
	return func(c *config) {
		c.workers = workers
	}
}

// WithOCR enables the pipeline's OCR fallback for pages with no text
// layer. Both a renderer and a recognizer are required; the render and ocr
// packages provide implementations.
func WithOCR(renderer document.Renderer, recognizer pipeline.Recognizer) Option {
	return func(c *config) {
		c.renderer = renderer
		c.recognizer = recognizer
	}
}

// WithClipboard substitutes the clipboard capability used by
// CopyToClipboard. Useful in tests and headless environments.
func WithClipboard(cb export.Clipboard) Option {
	return func(c *config) {
		if cb != nil {
			c.clipboard = cb
		}
	}
}
