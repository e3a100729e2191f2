// Package document loads a single PDF document and exposes the page-level
// facts the rest of the library needs: the page count, the intrinsic size of
// each page, and the raw text layer of each page.
//
// Validation of the input is deliberately weak: only the declared media type
// is checked before parsing; the bytes are never content-sniffed. A
// mislabelled file is caught at parse time instead and surfaces as
// ErrCorrupt.
//
// Page rasterization is treated as an external capability (see the Renderer
// interface); the render package provides a MuPDF-backed implementation.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/ledongthuc/pdf"
)

// MediaTypePDF is the only declared media type Load accepts.
const MediaTypePDF = "application/pdf"

var (
	// ErrInvalidType is returned when the declared media type is not PDF.
	ErrInvalidType = errors.New("document: declared media type is not PDF")

	// ErrCorrupt is returned when the byte stream cannot be parsed as a PDF.
	ErrCorrupt = errors.New("document: corrupt or unsupported document")
)

// Source is the read-only view of a loaded document consumed by the
// extraction pipeline. Pages are numbered 1..PageCount.
type Source interface {
	PageCount() int
	PageSize(page int) (width, height float64, err error)
	PageText(ctx context.Context, page int) (string, error)
}

// Renderer rasterizes a single page at a multiplicative scale applied to the
// page's intrinsic dimensions.
type Renderer interface {
	RenderPage(ctx context.Context, page int, scale float64) (image.Image, error)
}

// Size holds a page's intrinsic dimensions in PDF points.
type Size struct {
	Width  float64
	Height float64
}

// Document is a loaded PDF. A Document is owned by a single session and is
// replaced wholesale on reload; it is never partially mutated.
type Document struct {
	reader    *pdf.Reader
	pageCount int
	baseline  Size
}

// Ensure Document satisfies the pipeline-facing interface.
var _ Source = (*Document)(nil)

// Load parses data as a PDF and returns a Document.
//
// Inputs whose declared media type is not MediaTypePDF are rejected before
// any parsing happens (ErrInvalidType). Parse failures surface as ErrCorrupt.
// On success the Document reports its page count and, when the document has
// at least one page, the intrinsic size of page 1 as the scale baseline.
func Load(data []byte, mediaType string) (doc *Document, err error) {
	if mediaType != MediaTypePDF {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, mediaType)
	}

	// The underlying parser panics on some malformed inputs; fold those
	// into the corrupt-document error path.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrCorrupt, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	d := &Document{
		reader:    reader,
		pageCount: reader.NumPage(),
	}

	if d.pageCount > 0 {
		w, h, err := d.PageSize(1)
		if err != nil {
			return nil, fmt.Errorf("%w: page 1: %v", ErrCorrupt, err)
		}
		d.baseline = Size{Width: w, Height: h}
	}

	return d, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pageCount
}

// Baseline returns the intrinsic size of page 1, or the zero Size for an
// empty document. It is the baseline for render-scale calculations.
func (d *Document) Baseline() Size {
	return d.baseline
}

// BaselineWidth returns the intrinsic width of page 1 in PDF points.
func (d *Document) BaselineWidth() float64 {
	return d.baseline.Width
}

// PageSize returns the intrinsic width and height of a page in PDF points.
// The MediaBox may live on the page itself or be inherited from an ancestor
// page-tree node.
func (d *Document) PageSize(page int) (width, height float64, err error) {
	if page < 1 || page > d.pageCount {
		return 0, 0, fmt.Errorf("document: page %d out of range 1..%d", page, d.pageCount)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("document: page %d: %v", page, r)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return 0, 0, fmt.Errorf("document: page %d not found", page)
	}

	for v := p.V; v.Kind() == pdf.Dict; v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Kind() != pdf.Array || box.Len() != 4 {
			continue
		}
		width = box.Index(2).Float64() - box.Index(0).Float64()
		height = box.Index(3).Float64() - box.Index(1).Float64()
		if width <= 0 || height <= 0 {
			return 0, 0, fmt.Errorf("document: page %d has degenerate MediaBox", page)
		}
		return width, height, nil
	}

	return 0, 0, fmt.Errorf("document: page %d has no MediaBox", page)
}

// PageText returns the machine-readable text layer of a page. Pages with no
// text layer yield an empty string, not an error.
func (d *Document) PageText(ctx context.Context, page int) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if page < 1 || page > d.pageCount {
		return "", fmt.Errorf("document: page %d out of range 1..%d", page, d.pageCount)
	}

	// Content-stream interpretation panics on some damaged pages; report
	// those as per-page failures so the caller can isolate them.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("document: page %d: %v", page, r)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", fmt.Errorf("document: page %d not found", page)
	}

	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("document: page %d: %w", page, err)
	}
	return text, nil
}
