package view

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Pane identifies one of the three independently toggleable display regions.
type Pane int

const (
	PaneSource Pane = iota
	PaneNotes
	PaneCombined
)

func (p Pane) String() string {
	switch p {
	case PaneSource:
		return "source"
	case PaneNotes:
		return "notes"
	case PaneCombined:
		return "combined"
	default:
		return "unknown"
	}
}

// LayoutMode is the presentation policy for note-editor sizing. It is
// independent of pane visibility.
type LayoutMode int

const (
	// ModeNormal gives every editor a fixed height.
	ModeNormal LayoutMode = iota
	// ModeComparison matches each editor's height to the rendered page at
	// the current scale, so the two panes align row for row.
	ModeComparison
	// ModeReading grows each editor with its estimated line count, clamped
	// to a maximum. Only this mode permits user resizing.
	ModeReading
)

func (m LayoutMode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeComparison:
		return "comparison"
	case ModeReading:
		return "reading"
	default:
		return "unknown"
	}
}

// Visibility holds the three independent pane flags. Source and Notes are
// never both false; Combined is unconstrained.
type Visibility struct {
	Source   bool
	Notes    bool
	Combined bool
}

// Modal is the enlarged-page overlay state. Open implies Page is within
// 1..PageCount.
type Modal struct {
	Open bool
	Page int
}

// ErrPageOutOfRange is returned by OpenModal for an invalid page. The
// request is rejected rather than clamped; clamping would silently show the
// wrong page.
var ErrPageOutOfRange = errors.New("view: page out of range")

// Controller is the state machine over pane visibility, layout mode, and
// the modal. It is created per loaded document and discarded on reload.
type Controller struct {
	pageCount int
	vis       Visibility
	mode      LayoutMode
	modal     Modal
}

// NewController creates a controller for a document of pageCount pages.
// All three panes start visible, in normal layout mode, modal closed.
func NewController(pageCount int) *Controller {
	if pageCount < 0 {
		pageCount = 0
	}
	return &Controller{
		pageCount: pageCount,
		vis:       Visibility{Source: true, Notes: true, Combined: true},
	}
}

// PageCount returns the page count the controller was built for.
func (c *Controller) PageCount() int { return c.pageCount }

// Visibility returns the current pane flags.
func (c *Controller) Visibility() Visibility { return c.vis }

// LayoutMode returns the current editor sizing policy.
func (c *Controller) LayoutMode() LayoutMode { return c.mode }

// Modal returns the current modal state.
func (c *Controller) Modal() Modal { return c.modal }

// Toggle flips a pane's visibility. A toggle that would hide both the
// source and notes panes at once is refused and reported as false, so at
// least one primary pane stays visible. The combined pane has no such
// constraint.
func (c *Controller) Toggle(pane Pane) bool {
	switch pane {
	case PaneSource:
		if c.vis.Source && !c.vis.Notes {
			return false
		}
		c.vis.Source = !c.vis.Source
	case PaneNotes:
		if c.vis.Notes && !c.vis.Source {
			return false
		}
		c.vis.Notes = !c.vis.Notes
	case PaneCombined:
		c.vis.Combined = !c.vis.Combined
	default:
		return false
	}
	return true
}

// SetLayoutMode switches the editor sizing policy. Unconditional; it does
// not touch visibility.
func (c *Controller) SetLayoutMode(mode LayoutMode) {
	c.mode = mode
}

// OpenModal opens the enlarged-page overlay on a page. Pages outside
// 1..PageCount are rejected and the modal state is left unchanged.
func (c *Controller) OpenModal(page int) error {
	if page < 1 || page > c.pageCount {
		return fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, c.pageCount)
	}
	c.modal = Modal{Open: true, Page: page}
	return nil
}

// CloseModal closes the overlay. The explicit close control, a backdrop
// dismissal, and an escape press all land here; they are one transition.
func (c *Controller) CloseModal() {
	c.modal = Modal{}
}

// Editor sizing policy parameters, in abstract display units.
const (
	// FixedEditorHeight is the editor height in normal mode.
	FixedEditorHeight = 220.0

	// ReadingLineHeight is the height contributed by one estimated line in
	// reading mode.
	ReadingLineHeight = 20.0

	// MaxReadingHeight caps reading-mode growth.
	MaxReadingHeight = 800.0

	// readingCharsPerLine is the assumed wrap width for estimating how
	// many lines a note occupies.
	readingCharsPerLine = 60
)

// EditorHeight applies the sizing policy for mode to one page's note text.
// pageHeightAtScale is the rendered page height at the current scale and is
// only consulted in comparison mode.
func EditorHeight(mode LayoutMode, text string, pageHeightAtScale float64) float64 {
	switch mode {
	case ModeComparison:
		return pageHeightAtScale
	case ModeReading:
		lines := 0
		if text != "" {
			lines = strings.Count(text, "\n") + 1
		}
		wrapped := int(math.Ceil(float64(utf8.RuneCountInString(text)) / readingCharsPerLine))
		if wrapped > lines {
			lines = wrapped
		}
		if lines < 1 {
			lines = 1
		}
		return math.Min(float64(lines)*ReadingLineHeight, MaxReadingHeight)
	default:
		return FixedEditorHeight
	}
}

// AllowsResize reports whether the user may resize the editor by hand.
// Only reading mode permits it.
func AllowsResize(mode LayoutMode) bool {
	return mode == ModeReading
}
