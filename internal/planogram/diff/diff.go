// Package diff computes which products were added or removed between two
// planogram versions and maps the result onto the two comparison panes.
package diff

import "planogram-studio/internal/planogram/models"

// Result holds the ids present only in the newer version (Added) and only in
// the older version (Removed).
type Result struct {
	Added   []models.ProductID `json:"addedIds"`
	Removed []models.ProductID `json:"removedIds"`
}

// Outline is the highlight set of one pane: green = added, red = removed.
type Outline struct {
	Green []models.ProductID `json:"green"`
	Red   []models.ProductID `json:"red"`
}

// Outlines is the per-pane result of Compare.
type Outlines struct {
	Left  Outline `json:"leftOutlines"`
	Right Outline `json:"rightOutlines"`
}

func emptyResult() Result {
	return Result{Added: []models.ProductID{}, Removed: []models.ProductID{}}
}

func emptyOutline() Outline {
	return Outline{Green: []models.ProductID{}, Red: []models.ProductID{}}
}

// Versions diffs two product id lists. Nothing is computed when either list is
// empty or either version is unknown. On equal versions the right side is the
// baseline (left is not newer).
func Versions(left, right []models.ProductID, leftVersion, rightVersion *int) (Result, bool) {
	if len(left) == 0 || len(right) == 0 || leftVersion == nil || rightVersion == nil {
		return emptyResult(), false
	}

	newer, older := right, left
	if *leftVersion > *rightVersion {
		newer, older = left, right
	}

	return Result{
		Added:   subtract(newer, older),
		Removed: subtract(older, newer),
	}, true
}

// Compare diffs two panes. The newer pane is outlined green with the added ids,
// the other pane red with the removed ids.
func Compare(left, right []models.ProductID, leftVersion, rightVersion *int) Outlines {
	out := Outlines{Left: emptyOutline(), Right: emptyOutline()}

	res, ok := Versions(left, right, leftVersion, rightVersion)
	if !ok {
		return out
	}

	if *leftVersion > *rightVersion {
		out.Left.Green = res.Added
		out.Right.Red = res.Removed
	} else {
		out.Right.Green = res.Added
		out.Left.Red = res.Removed
	}
	return out
}

// subtract returns ids of a missing from b, in first-seen order of a, deduplicated.
func subtract(a, b []models.ProductID) []models.ProductID {
	inB := make(map[models.ProductID]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}

	out := make([]models.ProductID, 0)
	seen := make(map[models.ProductID]struct{})
	for _, id := range a {
		if _, ok := inB[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
