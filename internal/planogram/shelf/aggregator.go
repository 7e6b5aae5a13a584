package shelf

import (
	"planogram-studio/internal/planogram/models"
	"planogram-studio/internal/planogram/units"
)

// ============================================================
// Shelf Dimension Aggregator
// ============================================================

// Aggregate groups bay/shelf records into bay -> shelf -> dimension.
//
// Height that the declared shelves do not account for is spread evenly:
// every shelf of a bay gets (bayHeight - Σ shelfHeights) / shelfCount on top of
// its own height, even when the shelf declares one. Bays with a zero number are
// dropped, the first record per (bay, shelf) wins.
func Aggregate(bays []models.BayDescriptor, scale float64) models.Dimensions {
	dims := make(models.Dimensions)

	for _, bay := range bays {
		if bay.Number == 0 {
			continue
		}

		shelves, ok := dims[bay.Number]
		if !ok {
			shelves = make(map[int]models.ShelfDimension)
			dims[bay.Number] = shelves
		}

		count := len(bay.Shelves)
		var total units.Millimeters
		for _, s := range bay.Shelves {
			total += units.Or(s.Height, 0)
		}

		var leftover units.Millimeters
		if count > 0 {
			leftover = (bay.Height - total) / units.Millimeters(count)
		}

		for _, s := range bay.Shelves {
			if _, seen := shelves[s.Number]; seen {
				continue
			}

			width := units.Or(s.Width, bay.Width)
			height := units.Or(s.Height, bay.Height/units.Millimeters(count)) + leftover

			shelves[s.Number] = models.ShelfDimension{
				Width:     units.ToDisplay(width, scale),
				Height:    units.ToDisplay(height, scale),
				BaseWidth: units.ToCentimeters(width),
			}
		}
	}

	return dims
}
