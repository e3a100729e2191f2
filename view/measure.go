package view

import (
	"sync"
	"time"
)

// Measurer reports the current inner width of a container on the rendering
// surface. Injecting it keeps scale computation testable without a display.
type Measurer interface {
	Width() float64
}

// MeasurerFunc adapts a plain function to the Measurer interface.
type MeasurerFunc func() float64

func (f MeasurerFunc) Width() float64 { return f() }

// ModalSettleDelay is how long modal measurement waits after the modal
// opens. The modal's box only reaches its final size after being mounted,
// so an immediate read would see a stale width.
const ModalSettleDelay = 50 * time.Millisecond

// ResizeDebounce is the quiet period applied to resize-driven
// recomputation, so a drag does not trigger a recomputation storm.
const ResizeDebounce = 150 * time.Millisecond

// ScaleContext tracks the last-measured container widths, source pane and
// modal separately, against a document's baseline page width. It is purely
// derived state: recomputed on demand, never persisted.
type ScaleContext struct {
	pageWidth   float64
	sourceWidth float64
	modalWidth  float64
}

// NewScaleContext creates a context for a document whose first page is
// pageWidth points wide.
func NewScaleContext(pageWidth float64) *ScaleContext {
	return &ScaleContext{pageWidth: pageWidth}
}

// MeasureSource records a fresh source-pane width.
func (c *ScaleContext) MeasureSource(m Measurer) {
	if m != nil {
		c.sourceWidth = m.Width()
	}
}

// MeasureModal records a fresh modal width. Call only after the modal has
// had ModalSettleDelay to reach its final size.
func (c *ScaleContext) MeasureModal(m Measurer) {
	if m != nil {
		c.modalWidth = m.Width()
	}
}

// SourceScale returns the render scale for the source pane. Before the
// first measurement it returns the normal default.
func (c *ScaleContext) SourceScale() float64 {
	return Scale(c.sourceWidth, c.pageWidth, false)
}

// ModalScale returns the render scale for the enlarged-page modal. Before
// the first measurement it returns the modal default.
func (c *ScaleContext) ModalScale() float64 {
	return Scale(c.modalWidth, c.pageWidth, true)
}

// Debouncer coalesces bursts of triggers into one callback after a quiet
// period. Triggering again before the delay elapses restarts the timer.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the quiet period, dropping any previously
// scheduled callback.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending callback. Safe to call at teardown regardless
// of whether anything is scheduled.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
