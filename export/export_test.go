package export

import (
	"errors"
	"testing"
)

func TestConcatenate(t *testing.T) {
	tests := []struct {
		name      string
		notes     map[int]string
		pageCount int
		want      string
	}{
		{
			name:      "skips whitespace-only pages",
			notes:     map[int]string{1: "A", 2: "   ", 3: "B"},
			pageCount: 3,
			want:      "=== Page 1 ===\nA\n\n=== Page 3 ===\nB",
		},
		{
			name:      "all empty",
			notes:     map[int]string{1: "", 2: "\n\t "},
			pageCount: 2,
			want:      "",
		},
		{
			name:      "single page",
			notes:     map[int]string{1: "only note"},
			pageCount: 1,
			want:      "=== Page 1 ===\nonly note",
		},
		{
			name:      "trims body text",
			notes:     map[int]string{1: "  padded  "},
			pageCount: 1,
			want:      "=== Page 1 ===\npadded",
		},
		{
			name:      "multiline body survives",
			notes:     map[int]string{1: "line one\nline two"},
			pageCount: 1,
			want:      "=== Page 1 ===\nline one\nline two",
		},
		{
			name:      "zero pages",
			notes:     map[int]string{},
			pageCount: 0,
			want:      "",
		},
		{
			name:      "keys beyond range ignored",
			notes:     map[int]string{1: "in", 5: "out"},
			pageCount: 2,
			want:      "=== Page 1 ===\nin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Concatenate(tt.notes, tt.pageCount); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

type recordingClipboard struct {
	written string
	err     error
}

func (c *recordingClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.written = text
	return nil
}

func TestCopyWritesConcatenation(t *testing.T) {
	cb := &recordingClipboard{}
	err := Copy(cb, map[int]string{1: "hello", 2: "world"}, 2)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	want := "=== Page 1 ===\nhello\n\n=== Page 2 ===\nworld"
	if cb.written != want {
		t.Errorf("expected %q, got %q", want, cb.written)
	}
}

func TestCopyFailure(t *testing.T) {
	cb := &recordingClipboard{err: errors.New("no display")}
	err := Copy(cb, map[int]string{1: "x"}, 1)
	if !errors.Is(err, ErrClipboard) {
		t.Fatalf("expected ErrClipboard, got %v", err)
	}
}
