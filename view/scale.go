// Package view holds the presentation state machine of the annotation
// viewer: which panes are visible, the note-editor sizing policy, the
// enlarged-page modal, and the responsive render-scale calculation.
//
// Everything in this package is deliberately free of any real rendering
// surface. Container widths arrive through the Measurer interface, so the
// whole package is testable without a display.
package view

import "math"

// Scale bounds and defaults. The defaults apply before the first
// measurement completes, when a container width is still unknown.
const (
	DefaultScale      = 0.8
	DefaultModalScale = 1.5

	MinScale      = 0.3
	MaxScale      = 1.5
	MaxModalScale = 3.0

	paneWidthFraction  = 0.95
	modalWidthFraction = 0.85
)

// Scale maps an available container width and a page's intrinsic width to a
// bounded render scale. Zero or negative widths yield the fixed default for
// the surface, a safe fallback before the first measurement.
func Scale(containerWidth, pageWidth float64, modal bool) float64 {
	if containerWidth <= 0 || pageWidth <= 0 {
		if modal {
			return DefaultModalScale
		}
		return DefaultScale
	}

	fraction := paneWidthFraction
	ceiling := MaxScale
	if modal {
		fraction = modalWidthFraction
		ceiling = MaxModalScale
	}

	target := containerWidth * fraction / pageWidth
	return math.Min(math.Max(target, MinScale), ceiling)
}
