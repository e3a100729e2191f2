// Package render rasterizes document pages via MuPDF (go-fitz). It is the
// concrete implementation of the rendering capability the rest of the
// library treats as external: failures here degrade a single page to a
// placeholder and never affect other pages.
package render

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/image/draw"
)

// baseDPI is the resolution corresponding to scale 1.0. PDF points are
// 1/72 inch, so 72 DPI renders one pixel per point.
const baseDPI = 72.0

// PageRenderer rasterizes pages of one loaded document.
type PageRenderer struct {
	mu  sync.Mutex // go-fitz handles are not safe for concurrent use
	doc *fitz.Document
}

// New opens a renderer over raw PDF bytes. The renderer holds native
// resources and must be closed.
func New(data []byte) (*PageRenderer, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("render: open document: %w", err)
	}
	return &PageRenderer{doc: doc}, nil
}

// Close releases the underlying MuPDF resources.
func (r *PageRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc == nil {
		return nil
	}
	err := r.doc.Close()
	r.doc = nil
	return err
}

// RenderPage rasterizes one page at a multiplicative scale over the page's
// intrinsic size. Pages are numbered 1..NumPage.
func (r *PageRenderer) RenderPage(ctx context.Context, page int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scale <= 0 {
		return nil, fmt.Errorf("render: non-positive scale %g", scale)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc == nil {
		return nil, fmt.Errorf("render: renderer is closed")
	}
	if page < 1 || page > r.doc.NumPage() {
		return nil, fmt.Errorf("render: page %d out of range 1..%d", page, r.doc.NumPage())
	}

	img, err := r.doc.ImageDPI(page-1, baseDPI*scale)
	if err != nil {
		return nil, fmt.Errorf("render: page %d: %w", page, err)
	}
	return img, nil
}

// Resample fits an already-rendered page image to targetWidth, preserving
// aspect ratio. It returns the input unchanged when no scaling is needed.
func Resample(img image.Image, targetWidth int) image.Image {
	bounds := img.Bounds()
	if targetWidth <= 0 || bounds.Dx() <= 0 || bounds.Dx() == targetWidth {
		return img
	}

	targetHeight := bounds.Dy() * targetWidth / bounds.Dx()
	if targetHeight < 1 {
		targetHeight = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
