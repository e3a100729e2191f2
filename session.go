package marginalia

import (
	"context"
	"sync/atomic"

	"github.com/tsawler/marginalia/document"
	"github.com/tsawler/marginalia/export"
	"github.com/tsawler/marginalia/notes"
	"github.com/tsawler/marginalia/pipeline"
	"github.com/tsawler/marginalia/view"
)

// Session owns the state of one annotation-viewing session: the loaded
// document, the note store, and the presentation controller. Each
// successful Load replaces all of them wholesale; nothing survives into the
// next load and nothing is persisted.
//
// Session methods are meant to be driven from a single event loop. The only
// concurrency-sensitive piece is the generation counter, which extraction
// results carry back from other goroutines.
type Session struct {
	cfg    config
	runner *pipeline.Runner

	// generation distinguishes successive loads so a slow extraction from
	// a superseded document can be discarded on arrival.
	generation atomic.Uint64

	doc      *document.Document
	store    *notes.Store
	ctrl     *view.Controller
	warnings []pipeline.Warning
}

// New creates an empty session. Load must succeed before the accessors
// return anything useful.
func New(opts ...Option) *Session {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Session{
		cfg: cfg,
		runner: pipeline.New(pipeline.Config{
			Workers:    cfg.workers,
			Logger:     cfg.logger,
			Renderer:   cfg.renderer,
			Recognizer: cfg.recognizer,
		}),
	}
}

// Load validates and opens a document, then rebuilds the session state
// around it: a fresh all-empty note store covering pages 1..PageCount and a
// fresh view controller. On failure the previous state stays untouched and
// usable; the caller decides whether to prompt for another file.
func (s *Session) Load(ctx context.Context, data []byte, mediaType string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := document.Load(data, mediaType)
	if err != nil {
		s.cfg.logger.Warn("document load failed", "error", err)
		return nil, err
	}

	s.generation.Add(1)
	s.doc = doc
	s.store = notes.NewStore(doc.PageCount())
	s.ctrl = view.NewController(doc.PageCount())
	s.warnings = nil

	s.cfg.logger.Info("document loaded",
		"pages", doc.PageCount(),
		"generation", s.generation.Load())
	return doc, nil
}

// Loaded reports whether the session currently holds a document.
func (s *Session) Loaded() bool {
	return s.doc != nil
}

// Generation returns the current load's generation id.
func (s *Session) Generation() uint64 {
	return s.generation.Load()
}

// Extract runs the extraction pipeline against the current document and
// returns the complete seed, tagged with the current generation. It is safe
// to call from a worker goroutine; apply the result on the event loop with
// ApplySeed. Without a loaded document it returns an empty result.
func (s *Session) Extract(ctx context.Context) pipeline.Result {
	gen := s.generation.Load()
	if s.doc == nil {
		return pipeline.Result{Generation: gen, Notes: map[int]string{}}
	}
	return s.runner.Run(ctx, s.doc, gen)
}

// ApplySeed seeds the note store from an extraction result, unless the
// result belongs to a superseded load, in which case it is dropped and
// ApplySeed reports false. Seeding overwrites any edits made since the
// matching load; that is accepted behavior, since the seed follows the load
// directly.
func (s *Session) ApplySeed(res pipeline.Result) bool {
	if res.Generation != s.generation.Load() || s.store == nil {
		s.cfg.logger.Debug("dropping stale extraction result",
			"result_generation", res.Generation,
			"current_generation", s.generation.Load())
		return false
	}
	s.store.Seed(res.Notes)
	s.warnings = append(s.warnings, res.Warnings...)
	return true
}

// Warnings returns the per-page warnings accumulated since the last load.
func (s *Session) Warnings() []pipeline.Warning {
	return append([]pipeline.Warning(nil), s.warnings...)
}

// Document returns the loaded document, or nil before the first load.
func (s *Session) Document() *document.Document {
	return s.doc
}

// Notes returns the note store for the current document, or nil before the
// first load.
func (s *Session) Notes() *notes.Store {
	return s.store
}

// View returns the presentation controller for the current document, or
// nil before the first load.
func (s *Session) View() *view.Controller {
	return s.ctrl
}

// Export derives the combined note text for the current document.
func (s *Session) Export() string {
	if s.store == nil {
		return ""
	}
	return export.Concatenate(s.store.Snapshot(), s.store.PageCount())
}

// CopyToClipboard feeds the export string to the configured clipboard
// capability. A failure is transient and changes no state.
func (s *Session) CopyToClipboard() error {
	if s.store == nil {
		return nil
	}
	if err := export.Copy(s.cfg.clipboard, s.store.Snapshot(), s.store.PageCount()); err != nil {
		s.cfg.logger.Warn("clipboard export failed", "error", err)
		return err
	}
	return nil
}
