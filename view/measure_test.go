package view

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScaleContextDefaultsBeforeMeasurement(t *testing.T) {
	c := NewScaleContext(612)

	if got := c.SourceScale(); got != DefaultScale {
		t.Errorf("expected default scale %g, got %g", DefaultScale, got)
	}
	if got := c.ModalScale(); got != DefaultModalScale {
		t.Errorf("expected default modal scale %g, got %g", DefaultModalScale, got)
	}
}

func TestScaleContextTracksSurfacesSeparately(t *testing.T) {
	c := NewScaleContext(800)

	c.MeasureSource(MeasurerFunc(func() float64 { return 1000 }))
	if got := c.SourceScale(); got != 1.1875 {
		t.Errorf("expected source scale 1.1875, got %g", got)
	}
	// Modal is still unmeasured.
	if got := c.ModalScale(); got != DefaultModalScale {
		t.Errorf("expected modal default, got %g", got)
	}

	c.MeasureModal(MeasurerFunc(func() float64 { return 2000 }))
	if got := c.ModalScale(); got != 2.125 {
		t.Errorf("expected modal scale 2.125, got %g", got)
	}
	// Source measurement untouched.
	if got := c.SourceScale(); got != 1.1875 {
		t.Errorf("source scale changed unexpectedly: %g", got)
	}
}

func TestScaleContextNilMeasurer(t *testing.T) {
	c := NewScaleContext(800)
	c.MeasureSource(nil)
	c.MeasureModal(nil)

	if got := c.SourceScale(); got != DefaultScale {
		t.Errorf("expected default after nil measure, got %g", got)
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
	}

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 call after burst, got %d", got)
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("expected no calls after stop, got %d", got)
	}
}
