package shelf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planogram-studio/internal/planogram/models"
	"planogram-studio/internal/planogram/units"
)

func shelfOf(number int, width, height *units.Millimeters) models.ShelfDescriptor {
	return models.ShelfDescriptor{Number: number, Width: width, Height: height}
}

func TestAggregate_LeftoverDistribution(t *testing.T) {
	bays := []models.BayDescriptor{{
		Number: 1, Width: 1000, Height: 240,
		Shelves: []models.ShelfDescriptor{
			shelfOf(1, nil, units.MM(100)),
			shelfOf(2, nil, units.MM(100)),
		},
	}}

	dims := Aggregate(bays, 1)

	require.Len(t, dims[1], 2)
	assert.Equal(t, units.DisplayUnits(12), dims[1][1].Height)
	assert.Equal(t, units.DisplayUnits(12), dims[1][2].Height)
	assert.Equal(t, units.DisplayUnits(100), dims[1][1].Width)
	assert.Equal(t, units.Centimeters(100), dims[1][1].BaseWidth)
}

func TestAggregate_Fallbacks(t *testing.T) {
	// Shelf 1 declares 600, shelf 2 nothing: total 600, leftover (1800-600)/2 = 600.
	// Shelf 2 falls back to bayHeight/count = 900, plus leftover.
	bays := []models.BayDescriptor{{
		Number: 3, Width: 1250, Height: 1800,
		Shelves: []models.ShelfDescriptor{
			shelfOf(1, units.MM(1000), units.MM(600)),
			shelfOf(2, nil, nil),
		},
	}}

	dims := Aggregate(bays, 2)

	assert.Equal(t, units.DisplayUnits(240), dims[3][1].Height)
	assert.Equal(t, units.DisplayUnits(300), dims[3][2].Height)
	assert.Equal(t, units.DisplayUnits(200), dims[3][1].Width)
	assert.Equal(t, units.DisplayUnits(250), dims[3][2].Width)
	assert.Equal(t, units.Centimeters(125), dims[3][2].BaseWidth)
}

func TestAggregate_NegativeLeftover(t *testing.T) {
	bays := []models.BayDescriptor{{
		Number: 1, Width: 100, Height: 100,
		Shelves: []models.ShelfDescriptor{shelfOf(1, nil, units.MM(300))},
	}}

	assert.Equal(t, units.DisplayUnits(10), Aggregate(bays, 1)[1][1].Height)
}

func TestAggregate_DropsZeroBayNumber(t *testing.T) {
	bays := []models.BayDescriptor{
		{Number: 0, Width: 100, Height: 100, Shelves: []models.ShelfDescriptor{shelfOf(1, nil, nil)}},
		{Number: 2, Width: 100, Height: 100, Shelves: []models.ShelfDescriptor{shelfOf(1, nil, nil)}},
	}

	dims := Aggregate(bays, 1)

	assert.NotContains(t, dims, 0)
	assert.Contains(t, dims, 2)
}

func TestAggregate_FirstWriteWins(t *testing.T) {
	bays := []models.BayDescriptor{{
		Number: 1, Width: 1000, Height: 400,
		Shelves: []models.ShelfDescriptor{
			shelfOf(1, units.MM(500), units.MM(200)),
			shelfOf(1, units.MM(900), units.MM(200)),
		},
	}}

	dims := Aggregate(bays, 1)

	require.Len(t, dims[1], 1)
	assert.Equal(t, units.DisplayUnits(50), dims[1][1].Width)
}

func TestAggregate_BayWithoutShelves(t *testing.T) {
	dims := Aggregate([]models.BayDescriptor{{Number: 4, Width: 100, Height: 100}}, 1)

	require.Contains(t, dims, 4)
	assert.Empty(t, dims[4])
}

func TestBuild_OrdersAndTotals(t *testing.T) {
	dims := models.Dimensions{
		2: {
			2: {Width: 30, Height: 10, BaseWidth: 10},
			1: {Width: 45, Height: 20, BaseWidth: 15},
		},
		1: {
			1: {Width: 30, Height: 5, BaseWidth: 10},
		},
	}

	want := []models.BayLayout{
		{Number: 1, Height: 5, Width: 30, SubShelves: []models.SubShelf{
			{Number: 1, Height: 5, Width: 30, BaseWidth: 10},
		}},
		{Number: 2, Height: 30, Width: 45, SubShelves: []models.SubShelf{
			{Number: 1, Height: 20, Width: 45, BaseWidth: 15},
			{Number: 2, Height: 10, Width: 30, BaseWidth: 10},
		}},
	}

	if diff := cmp.Diff(want, Build(dims)); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Empty(t *testing.T) {
	bays := Build(models.Dimensions{})
	assert.NotNil(t, bays)
	assert.Empty(t, bays)
}
