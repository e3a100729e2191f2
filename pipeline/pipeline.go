// Package pipeline derives the initial per-page note text from a loaded
// document's text layer.
//
// Every page is attempted exactly once. A failure on one page records a
// warning and leaves that page's text empty; it never aborts the remaining
// pages. The result always covers pages 1..PageCount, so seeding the note
// store from it is a single consistent replacement with no partial state.
//
// Pages are fetched by a small bounded pool of workers purely as a
// throughput optimization; results are keyed by page number, so no ordering
// guarantee between pages is needed.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/marginalia/document"
)

// defaultWorkers bounds how many page fetches run at once.
const defaultWorkers = 4

// defaultOCRScale is the render scale used when rasterizing a page for the
// OCR fallback.
const defaultOCRScale = 2.0

// Warning records a non-fatal, page-scoped failure. The page it names was
// seeded with empty text.
type Warning struct {
	Page int
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("page %d: %v", w.Page, w.Err)
}

// FormatWarnings joins warnings into a single human-readable string.
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}

// Recognizer turns a rasterized page into text. The ocr package provides a
// Tesseract-backed implementation.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Config holds pipeline settings.
type Config struct {
	// Workers bounds concurrent page fetches. Defaults to 4.
	Workers int

	// Logger receives a Warn entry per failed page. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Renderer and Recognizer together enable the OCR fallback for pages
	// whose text layer is empty. Leave either nil to disable it.
	Renderer   document.Renderer
	Recognizer Recognizer

	// OCRScale is the render scale used for the fallback. Defaults to 2.0.
	OCRScale float64
}

func (c *Config) defaults() {
	if c.Workers < 1 {
		c.Workers = defaultWorkers
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.OCRScale <= 0 {
		c.OCRScale = defaultOCRScale
	}
}

// Result is one complete pipeline run. Notes holds keys exactly
// 1..PageCount of the source it was run against.
type Result struct {
	// Generation tags the run with the document load it belongs to, so a
	// slow run superseded by a newer load can be discarded on arrival.
	Generation uint64

	Notes    map[int]string
	Warnings []Warning
}

// Runner executes extraction runs. A Runner is stateless between runs and
// safe for reuse across loads.
type Runner struct {
	cfg Config
}

// New creates a Runner with the given configuration.
func New(cfg Config) *Runner {
	cfg.defaults()
	return &Runner{cfg: cfg}
}

// Run fetches the text layer of every page of src and returns the complete
// seed map tagged with generation. Run blocks until all pages have been
// attempted.
func (r *Runner) Run(ctx context.Context, src document.Source, generation uint64) Result {
	n := src.PageCount()
	notes := make(map[int]string, n)
	for page := 1; page <= n; page++ {
		notes[page] = ""
	}

	type pageResult struct {
		page int
		text string
		err  error
	}

	sem := make(chan struct{}, r.cfg.Workers)
	results := make(chan pageResult, n)

	var wg sync.WaitGroup
	for page := 1; page <= n; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- pageResult{page: page, err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			text, err := r.fetchPage(ctx, src, page)
			results <- pageResult{page: page, text: text, err: err}
		}(page)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var warnings []Warning
	for res := range results {
		if res.err != nil {
			warnings = append(warnings, Warning{Page: res.page, Err: res.err})
			r.cfg.Logger.Warn("page extraction failed",
				"page", res.page, "error", res.err)
			continue
		}
		notes[res.page] = res.text
	}

	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].Page < warnings[j].Page
	})

	return Result{Generation: generation, Notes: notes, Warnings: warnings}
}

// fetchPage pulls one page's text layer, falling back to OCR when the layer
// is empty and a renderer/recognizer pair is configured.
func (r *Runner) fetchPage(ctx context.Context, src document.Source, page int) (string, error) {
	text, err := src.PageText(ctx, page)
	if err != nil {
		return "", err
	}

	text = normalize(text)
	if text != "" || r.cfg.Renderer == nil || r.cfg.Recognizer == nil {
		return text, nil
	}

	img, err := r.cfg.Renderer.RenderPage(ctx, page, r.cfg.OCRScale)
	if err != nil {
		return "", fmt.Errorf("render for ocr: %w", err)
	}
	recognized, err := r.cfg.Recognizer.Recognize(ctx, img)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return normalize(recognized), nil
}

// normalize brings extracted text to NFC and strips the surrounding
// whitespace most extractors leave behind.
func normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
