package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeSource serves canned page text and per-page errors, and tracks how
// many fetches are in flight at once.
type fakeSource struct {
	pages map[int]string
	errs  map[int]error
	delay time.Duration

	mu          sync.Mutex
	inFlight    int
	maxInFlight int
}

func (f *fakeSource) PageCount() int { return len(f.pages) }

func (f *fakeSource) PageSize(page int) (float64, float64, error) {
	return 612, 792, nil
}

func (f *fakeSource) PageText(ctx context.Context, page int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if err, ok := f.errs[page]; ok {
		return "", err
	}
	return f.pages[page], nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunSeedsAllPages(t *testing.T) {
	src := &fakeSource{pages: map[int]string{1: "alpha", 2: "beta", 3: "gamma"}}
	res := New(Config{Logger: quietLogger()}).Run(context.Background(), src, 1)

	if len(res.Notes) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(res.Notes))
	}
	for page, want := range map[int]string{1: "alpha", 2: "beta", 3: "gamma"} {
		if got := res.Notes[page]; got != want {
			t.Errorf("page %d: expected %q, got %q", page, want, got)
		}
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}
}

func TestPageFailureIsIsolated(t *testing.T) {
	src := &fakeSource{
		pages: map[int]string{1: "hello", 2: "", 3: "world"},
		errs:  map[int]error{2: errors.New("damaged content stream")},
	}
	res := New(Config{Logger: quietLogger()}).Run(context.Background(), src, 1)

	want := map[int]string{1: "hello", 2: "", 3: "world"}
	for page, text := range want {
		if got := res.Notes[page]; got != text {
			t.Errorf("page %d: expected %q, got %q", page, text, got)
		}
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(res.Warnings))
	}
	if res.Warnings[0].Page != 2 {
		t.Errorf("expected warning for page 2, got page %d", res.Warnings[0].Page)
	}
}

func TestWarningsSortedByPage(t *testing.T) {
	src := &fakeSource{
		pages: map[int]string{1: "", 2: "", 3: "", 4: "", 5: ""},
		errs: map[int]error{
			5: errors.New("bad"),
			1: errors.New("bad"),
			3: errors.New("bad"),
		},
	}
	res := New(Config{Workers: 5, Logger: quietLogger()}).Run(context.Background(), src, 1)

	var got []int
	for _, w := range res.Warnings {
		got = append(got, w.Page)
	}
	want := []int{1, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestEmptyDocument(t *testing.T) {
	src := &fakeSource{pages: map[int]string{}}
	res := New(Config{Logger: quietLogger()}).Run(context.Background(), src, 7)

	if res.Notes == nil {
		t.Fatal("expected non-nil notes map")
	}
	if len(res.Notes) != 0 {
		t.Errorf("expected empty notes map, got %v", res.Notes)
	}
	if res.Generation != 7 {
		t.Errorf("expected generation 7, got %d", res.Generation)
	}
}

func TestTextIsNormalized(t *testing.T) {
	// "e" followed by a combining acute accent; NFC folds them into é.
	src := &fakeSource{pages: map[int]string{1: "  café  \n"}}
	res := New(Config{Logger: quietLogger()}).Run(context.Background(), src, 1)

	if got := res.Notes[1]; got != "café" {
		t.Errorf("expected normalized %q, got %q", "café", got)
	}
}

func TestBoundedConcurrency(t *testing.T) {
	pages := make(map[int]string, 12)
	for i := 1; i <= 12; i++ {
		pages[i] = fmt.Sprintf("page %d", i)
	}
	src := &fakeSource{pages: pages, delay: 10 * time.Millisecond}

	New(Config{Workers: 2, Logger: quietLogger()}).Run(context.Background(), src, 1)

	if src.maxInFlight > 2 {
		t.Errorf("expected at most 2 concurrent fetches, saw %d", src.maxInFlight)
	}
}

func TestGenerationTagPassesThrough(t *testing.T) {
	src := &fakeSource{pages: map[int]string{1: "x"}}
	res := New(Config{Logger: quietLogger()}).Run(context.Background(), src, 42)
	if res.Generation != 42 {
		t.Errorf("expected generation 42, got %d", res.Generation)
	}
}

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) RenderPage(ctx context.Context, page int, scale float64) (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(image.Rect(0, 0, 10, 10)), nil
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	return f.text, f.err
}

func TestOCRFallbackFillsEmptyPages(t *testing.T) {
	src := &fakeSource{pages: map[int]string{1: "has a text layer", 2: "   "}}
	r := New(Config{
		Logger:     quietLogger(),
		Renderer:   &fakeRenderer{},
		Recognizer: &fakeRecognizer{text: "  scanned text  "},
	})
	res := r.Run(context.Background(), src, 1)

	if got := res.Notes[1]; got != "has a text layer" {
		t.Errorf("page with text layer should not go through OCR, got %q", got)
	}
	if got := res.Notes[2]; got != "scanned text" {
		t.Errorf("expected OCR text for page 2, got %q", got)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}
}

func TestOCRFailureDegradesToEmptyPage(t *testing.T) {
	src := &fakeSource{pages: map[int]string{1: ""}}
	r := New(Config{
		Logger:     quietLogger(),
		Renderer:   &fakeRenderer{},
		Recognizer: &fakeRecognizer{err: errors.New("tesseract unavailable")},
	})
	res := r.Run(context.Background(), src, 1)

	if got := res.Notes[1]; got != "" {
		t.Errorf("expected empty text after OCR failure, got %q", got)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(res.Warnings))
	}
}

func TestNoFallbackWithoutRecognizer(t *testing.T) {
	src := &fakeSource{pages: map[int]string{1: ""}}
	r := New(Config{Logger: quietLogger(), Renderer: &fakeRenderer{}})
	res := r.Run(context.Background(), src, 1)

	if got := res.Notes[1]; got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}
}

func TestCanceledContextStillCompletes(t *testing.T) {
	src := &fakeSource{pages: map[int]string{1: "a", 2: "b", 3: "c"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(Config{Logger: quietLogger()}).Run(ctx, src, 1)

	if len(res.Notes) != 3 {
		t.Fatalf("expected complete notes map, got %d entries", len(res.Notes))
	}
	for page := 1; page <= 3; page++ {
		if res.Notes[page] != "" {
			t.Errorf("page %d: expected empty text under cancellation, got %q",
				page, res.Notes[page])
		}
	}
	if len(res.Warnings) != 3 {
		t.Errorf("expected 3 warnings, got %d", len(res.Warnings))
	}
}

func TestFormatWarnings(t *testing.T) {
	warnings := []Warning{
		{Page: 2, Err: errors.New("bad stream")},
		{Page: 5, Err: errors.New("no font")},
	}
	got := FormatWarnings(warnings)
	if !strings.Contains(got, "page 2: bad stream") || !strings.Contains(got, "page 5: no font") {
		t.Errorf("unexpected format: %q", got)
	}
}
