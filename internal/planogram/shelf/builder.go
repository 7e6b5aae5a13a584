package shelf

import (
	"sort"

	"planogram-studio/internal/planogram/models"
)

// ============================================================
// Shelf Builder
// ============================================================

// Build turns the dimension map into bays ordered by number, each with its
// sub-shelves ordered by number. Lines are left empty for the layout engine.
func Build(dims models.Dimensions) []models.BayLayout {
	bayNumbers := make([]int, 0, len(dims))
	for n := range dims {
		bayNumbers = append(bayNumbers, n)
	}
	sort.Ints(bayNumbers)

	bays := make([]models.BayLayout, 0, len(bayNumbers))
	for _, bn := range bayNumbers {
		shelves := dims[bn]

		shelfNumbers := make([]int, 0, len(shelves))
		for n := range shelves {
			shelfNumbers = append(shelfNumbers, n)
		}
		sort.Ints(shelfNumbers)

		bay := models.BayLayout{
			Number:     bn,
			SubShelves: make([]models.SubShelf, 0, len(shelfNumbers)),
		}
		for _, sn := range shelfNumbers {
			d := shelves[sn]
			bay.SubShelves = append(bay.SubShelves, models.SubShelf{
				Number:    sn,
				Height:    d.Height,
				Width:     d.Width,
				BaseWidth: d.BaseWidth,
			})
			bay.Height += d.Height
			if d.Width > bay.Width {
				bay.Width = d.Width
			}
		}
		bays = append(bays, bay)
	}

	return bays
}
