package layout

import (
	"sort"

	"planogram-studio/internal/planogram/models"
)

type shelfKey struct {
	bay, shelf int
}

// Wrap records a product whose position fell outside its shelf.
type Wrap struct {
	Bay       int
	Shelf     int
	ProductID models.ProductID
}

// Apply fills the line of every sub-shelf with the products assigned to its
// (bay, shelf) pair, ordered by position. It recomputes every line from scratch.
func Apply(bays []models.BayLayout, products []models.FlattenedProduct, scale float64) []Wrap {
	byShelf := make(map[shelfKey][]models.FlattenedProduct)
	for _, p := range products {
		k := shelfKey{p.Bay, p.Shelf}
		byShelf[k] = append(byShelf[k], p)
	}

	var wraps []Wrap
	for bi := range bays {
		bay := &bays[bi]
		for si := range bay.SubShelves {
			sub := &bay.SubShelves[si]

			assigned := byShelf[shelfKey{bay.Number, sub.Number}]
			sort.SliceStable(assigned, func(i, j int) bool {
				return assigned[i].Position < assigned[j].Position
			})

			line, wrapped := Line(bay.Number, sub.Number, sub.Width, scale, assigned)
			sub.Line = line
			for _, id := range wrapped {
				wraps = append(wraps, Wrap{Bay: bay.Number, Shelf: sub.Number, ProductID: id})
			}
		}
	}

	return wraps
}
