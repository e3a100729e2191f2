// Package notes holds the mutable page-to-text mapping a session edits.
//
// The store's key set is always exactly 1..PageCount for the currently
// loaded document: never sparser, never extended past the range. There is
// no history and no undo.
package notes

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrOutOfRange is returned by Set for a page outside 1..PageCount. It
// signals a wiring defect in the caller, not a user-facing condition.
var ErrOutOfRange = errors.New("notes: page out of range")

// Store maps page numbers to note text. A Store belongs to a single loaded
// document and is rebuilt wholesale on a new load.
type Store struct {
	pageCount int
	text      map[int]string
}

// NewStore creates a store with keys exactly 1..pageCount, all empty.
func NewStore(pageCount int) *Store {
	if pageCount < 0 {
		pageCount = 0
	}
	s := &Store{
		pageCount: pageCount,
		text:      make(map[int]string, pageCount),
	}
	for page := 1; page <= pageCount; page++ {
		s.text[page] = ""
	}
	return s
}

// PageCount returns the number of pages the store covers.
func (s *Store) PageCount() int {
	return s.pageCount
}

// Get returns the note text for a page, or the empty string for a page
// outside the valid range.
func (s *Store) Get(page int) string {
	return s.text[page]
}

// Set replaces the note text for a page. Pages outside 1..PageCount are
// rejected with ErrOutOfRange and the store is left untouched.
func (s *Store) Set(page int, text string) error {
	if page < 1 || page > s.pageCount {
		return fmt.Errorf("%w: page %d of %d", ErrOutOfRange, page, s.pageCount)
	}
	s.text[page] = text
	return nil
}

// CharCount returns the number of characters in a page's note. It is
// derived on demand, never stored.
func (s *Store) CharCount(page int) int {
	return utf8.RuneCountInString(s.text[page])
}

// LineCount returns the number of declared lines in a page's note: line
// breaks plus one, or zero for an empty note.
func (s *Store) LineCount(page int) int {
	text := s.text[page]
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}

// Seed replaces every page's text from the given map in one shot. Pages
// absent from the map reset to empty; keys outside the valid range are
// ignored. Seeding overwrites user edits; the caller only seeds directly
// after a load event.
func (s *Store) Seed(texts map[int]string) {
	for page := 1; page <= s.pageCount; page++ {
		s.text[page] = texts[page]
	}
}

// Snapshot returns a copy of the page-to-text mapping.
func (s *Store) Snapshot() map[int]string {
	out := make(map[int]string, s.pageCount)
	for page, text := range s.text {
		out[page] = text
	}
	return out
}
