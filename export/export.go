// Package export derives the combined note text for a document and hands it
// to a clipboard capability.
//
// Concatenation is deterministic and side-effect-free: pages come out in
// ascending order, pages with only whitespace are skipped entirely, and each
// included page gets a "=== Page n ===" header. Nothing is written to disk
// and no network call is made.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrClipboard wraps a failed clipboard write. The failure is transient;
// no state changes and the user simply retries.
var ErrClipboard = errors.New("export: clipboard write failed")

// Concatenate renders the notes for pages 1..pageCount as a single string.
// A page whose trimmed text is empty is omitted, header included; the
// remaining pages are joined by one blank line.
func Concatenate(notes map[int]string, pageCount int) string {
	var b strings.Builder
	for page := 1; page <= pageCount; page++ {
		text := strings.TrimSpace(notes[page])
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "=== Page %d ===\n%s", page, text)
	}
	return b.String()
}

// Clipboard is the external clipboard-write capability.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the operating system clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Copy concatenates the notes and writes the result to cb. A nil cb uses
// the system clipboard.
func Copy(cb Clipboard, notes map[int]string, pageCount int) error {
	if cb == nil {
		cb = SystemClipboard{}
	}
	if err := cb.WriteAll(Concatenate(notes, pageCount)); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboard, err)
	}
	return nil
}
