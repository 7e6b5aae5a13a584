package layout

import (
	"fmt"
	"math"

	"planogram-studio/internal/planogram/models"
	"planogram-studio/internal/planogram/units"
)

const (
	// DefaultProductSize is used for products whose master record has no dimensions.
	DefaultProductSize units.Millimeters = 50
	// FillerStep is the width of trailing filler tiles.
	FillerStep units.DisplayUnits = 5
)

// slivers below this are float noise, not shelf space
const epsilon = 1e-9

// ============================================================
// Shelf Line Layout Engine
// ============================================================

// Line lays products left to right on a shelf of the given width (display
// units). Products must already be sorted by position. Gaps before a product
// become one filler segment, trailing space is tiled with FillerStep fillers.
//
// Positions past the shelf width are wrapped modulo the width; the ids of
// wrapped products are returned so callers can report them.
func Line(bay, shelf int, width units.DisplayUnits, scale float64, products []models.FlattenedProduct) ([]models.LineSegment, []models.ProductID) {
	segments := make([]models.LineSegment, 0, len(products)+1)
	var wrapped []models.ProductID

	var cursor units.DisplayUnits
	fillers := 0
	addFiller := func(w units.DisplayUnits) {
		segments = append(segments, models.LineSegment{
			ID:        fmt.Sprintf("%d-%d-e%d", bay, shelf, fillers),
			Width:     w,
			IsEmpty:   true,
			Offset:    cursor,
			XPosition: cursor.Unscale(scale),
		})
		fillers++
		cursor += w
	}

	for i := range products {
		p := products[i]

		rawWidth, rawHeight := physicalSize(p.ProductDetails)
		unitWidth := units.ToDisplay(rawWidth, scale)
		height := units.ToDisplay(rawHeight, scale)

		position := p.Position.Scale(scale)
		if width > 0 && position >= width {
			wrapped = append(wrapped, p.ProductID)
		}
		scaled := units.DisplayUnits(math.Min(math.Mod(float64(position), float64(width)), float64(width)))

		if scaled > cursor {
			addFiller(scaled - cursor)
		}

		facings := p.FacingsWide
		if facings == 0 {
			facings = 1
		}
		segWidth := units.DisplayUnits(facings) * unitWidth

		segments = append(segments, models.LineSegment{
			ID:               fmt.Sprintf("%d-%d-p%d", bay, shelf, i),
			Width:            segWidth,
			Height:           height,
			Offset:           cursor,
			XPosition:        cursor.Unscale(scale),
			ActualWidth:      rawWidth,
			ActualHeight:     rawHeight,
			FlattenedProduct: &p,
		})
		cursor += segWidth
	}

	for width-cursor > epsilon {
		addFiller(units.DisplayUnits(math.Min(float64(FillerStep), float64(width-cursor))))
	}

	return segments, wrapped
}

func physicalSize(d *models.ProductDetails) (units.Millimeters, units.Millimeters) {
	if d == nil {
		return DefaultProductSize, DefaultProductSize
	}
	return units.Or(d.Width, DefaultProductSize), units.Or(d.Height, DefaultProductSize)
}
