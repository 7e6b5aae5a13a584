package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planogram-studio/internal/planogram/models"
	"planogram-studio/internal/planogram/units"
)

const tolerance = 1e-6

func product(id string, position units.Centimeters, facings int, widthMM float64) models.FlattenedProduct {
	p := models.FlattenedProduct{Bay: 1, Shelf: 1, ProductID: models.ProductID(id), Position: position, FacingsWide: facings}
	if widthMM > 0 {
		p.ProductDetails = &models.ProductDetails{ID: p.ProductID, Width: units.MM(widthMM), Height: units.MM(200)}
	}
	return p
}

func requireCoverage(t *testing.T, width units.DisplayUnits, segments []models.LineSegment) {
	t.Helper()

	var sum units.DisplayUnits
	for i, s := range segments {
		assert.GreaterOrEqual(t, float64(s.Width), 0.0, "segment %d width", i)
		sum += s.Width
		if i+1 < len(segments) {
			assert.InDelta(t, float64(s.Offset+s.Width), float64(segments[i+1].Offset), tolerance, "gap after segment %d", i)
		}
	}
	require.InDelta(t, float64(width), float64(sum), tolerance)
}

func TestLine_EmptyShelfIsAllFiller(t *testing.T) {
	segments, wrapped := Line(1, 1, 23, 1, nil)

	require.Len(t, segments, 5)
	for _, s := range segments {
		assert.True(t, s.IsEmpty)
		assert.Equal(t, units.DisplayUnits(0), s.Height)
		assert.Nil(t, s.FlattenedProduct)
	}
	assert.Equal(t, units.DisplayUnits(3), segments[4].Width)
	assert.Empty(t, wrapped)
	requireCoverage(t, 23, segments)
}

func TestLine_RoundTripScenario(t *testing.T) {
	p := models.FlattenedProduct{
		Bay: 1, Shelf: 1, ProductID: "1", Position: 0, FacingsWide: 2, FacingsHigh: 1, TotalFacings: 2,
		ProductDetails: &models.ProductDetails{ID: "1", TPNB: "T1"},
	}

	segments, _ := Line(1, 1, 399, 3, []models.FlattenedProduct{p})

	first := segments[0]
	assert.False(t, first.IsEmpty)
	assert.Equal(t, units.Centimeters(0), first.XPosition)
	assert.Equal(t, units.DisplayUnits(30), first.Width)
	assert.Equal(t, units.DisplayUnits(15), first.Height)
	assert.Equal(t, DefaultProductSize, first.ActualWidth)
	assert.Equal(t, models.ProductID("1"), first.ProductID)

	for _, s := range segments[1:] {
		assert.True(t, s.IsEmpty)
	}
	require.Len(t, segments, 1+74)
	assert.Equal(t, units.DisplayUnits(4), segments[len(segments)-1].Width)
	requireCoverage(t, 399, segments)
}

func TestLine_GapBeforeProduct(t *testing.T) {
	segments, _ := Line(2, 3, 100, 1, []models.FlattenedProduct{product("A", 20, 1, 100)})

	require.GreaterOrEqual(t, len(segments), 2)
	assert.True(t, segments[0].IsEmpty)
	assert.Equal(t, units.DisplayUnits(20), segments[0].Width)
	assert.Equal(t, "2-3-e0", segments[0].ID)

	assert.False(t, segments[1].IsEmpty)
	assert.Equal(t, units.DisplayUnits(20), segments[1].Offset)
	assert.Equal(t, units.Centimeters(20), segments[1].XPosition)
	assert.Equal(t, units.DisplayUnits(10), segments[1].Width)
	assert.Equal(t, "2-3-p0", segments[1].ID)

	requireCoverage(t, 100, segments)
}

func TestLine_XPositionIsUnscaled(t *testing.T) {
	segments, _ := Line(1, 1, 300, 3, []models.FlattenedProduct{product("A", 10, 1, 100)})

	require.False(t, segments[1].IsEmpty)
	assert.Equal(t, units.DisplayUnits(30), segments[1].Offset)
	assert.InDelta(t, 10, float64(segments[1].XPosition), tolerance)
	for _, s := range segments {
		assert.InDelta(t, float64(s.Offset)/3, float64(s.XPosition), tolerance)
	}
}

func TestLine_OverlapPlacesAtCursor(t *testing.T) {
	segments, _ := Line(1, 1, 100, 1, []models.FlattenedProduct{
		product("A", 0, 1, 100),
		product("B", 5, 1, 100),
	})

	assert.Equal(t, models.ProductID("A"), segments[0].ProductID)
	assert.Equal(t, models.ProductID("B"), segments[1].ProductID)
	assert.Equal(t, units.DisplayUnits(10), segments[1].Offset)
	requireCoverage(t, 100, segments)
}

func TestLine_FacingsDefaultToOne(t *testing.T) {
	segments, _ := Line(1, 1, 100, 1, []models.FlattenedProduct{product("A", 0, 0, 100)})
	assert.Equal(t, units.DisplayUnits(10), segments[0].Width)

	segments, _ = Line(1, 1, 100, 1, []models.FlattenedProduct{product("A", 0, 3, 100)})
	assert.Equal(t, units.DisplayUnits(30), segments[0].Width)
}

func TestLine_WrapsOutOfRangePositions(t *testing.T) {
	segments, wrapped := Line(1, 1, 100, 1, []models.FlattenedProduct{product("A", 130, 1, 100)})

	assert.Equal(t, []models.ProductID{"A"}, wrapped)
	assert.True(t, segments[0].IsEmpty)
	assert.Equal(t, units.DisplayUnits(30), segments[0].Width)
	assert.Equal(t, units.DisplayUnits(30), segments[1].Offset)
	requireCoverage(t, 100, segments)
}

func TestLine_FractionalCoverage(t *testing.T) {
	segments, _ := Line(1, 1, 399, 3, []models.FlattenedProduct{
		product("A", 13.3, 2, 133),
		product("B", 71.9, 1, 87),
	})

	requireCoverage(t, 399, segments)
}

func TestLine_DoesNotAliasInput(t *testing.T) {
	in := []models.FlattenedProduct{product("A", 0, 1, 100)}
	segments, _ := Line(1, 1, 100, 1, in)

	segments[0].FlattenedProduct.ProductID = "changed"
	assert.Equal(t, models.ProductID("A"), in[0].ProductID)
}

func TestApply_AssignsAndSortsPerShelf(t *testing.T) {
	bays := []models.BayLayout{{
		Number: 1,
		SubShelves: []models.SubShelf{
			{Number: 1, Width: 100},
			{Number: 2, Width: 50},
		},
	}}
	p1 := product("late", 50, 1, 100)
	p2 := product("early", 10, 1, 100)
	p3 := product("upper", 0, 1, 100)
	p3.Shelf = 2
	stray := product("other-bay", 0, 1, 100)
	stray.Bay = 9

	wraps := Apply(bays, []models.FlattenedProduct{p1, p2, p3, stray}, 1)

	assert.Empty(t, wraps)
	var ids []models.ProductID
	for _, s := range bays[0].SubShelves[0].Line {
		if !s.IsEmpty {
			ids = append(ids, s.ProductID)
		}
	}
	assert.Equal(t, []models.ProductID{"early", "late"}, ids)
	requireCoverage(t, 100, bays[0].SubShelves[0].Line)

	upper := bays[0].SubShelves[1].Line
	assert.Equal(t, models.ProductID("upper"), upper[0].ProductID)
	requireCoverage(t, 50, upper)
}

func TestApply_ReportsWraps(t *testing.T) {
	bays := []models.BayLayout{{Number: 1, SubShelves: []models.SubShelf{{Number: 1, Width: 20}}}}

	wraps := Apply(bays, []models.FlattenedProduct{product("A", 25, 1, 50)}, 1)

	assert.Equal(t, []Wrap{{Bay: 1, Shelf: 1, ProductID: "A"}}, wraps)
}
