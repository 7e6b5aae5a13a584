package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planogram-studio/internal/planogram/models"
	"planogram-studio/internal/planogram/units"
)

func intPtr(v int) *int { return &v }

func fixtureBays() []models.BayDescriptor {
	return []models.BayDescriptor{
		{Number: 1, Width: 1330, Height: 2400, Shelves: []models.ShelfDescriptor{
			{Number: 1, Height: units.MM(800), Products: []models.ProductPlacement{
				{ProductID: "1", Position: 250, FacingWide: intPtr(2), FacingHigh: intPtr(3), Width: units.MM(90)},
				{ProductID: "999", Position: 0},
			}},
			{Number: 2, Height: units.MM(600), Products: []models.ProductPlacement{
				{ProductID: "2", Position: 1200, FacingWide: intPtr(1)},
			}},
		}},
		{Number: 2, Width: 1330, Height: 2400, Shelves: []models.ShelfDescriptor{
			{Number: 1, Products: []models.ProductPlacement{{ProductID: "1", Position: 40}}},
		}},
	}
}

func TestFlatten_DocumentOrder(t *testing.T) {
	products := Flatten(fixtureBays(), nil, nil)

	require.Len(t, products, 4)
	assert.Equal(t, []models.ProductID{"1", "999", "2", "1"}, models.ProductIDs(products))
	assert.Equal(t, 1, products[2].Bay)
	assert.Equal(t, 2, products[2].Shelf)
	assert.Equal(t, 2, products[3].Bay)
}

func TestFlatten_Conversions(t *testing.T) {
	products := Flatten(fixtureBays(), nil, nil)

	first := products[0]
	assert.Equal(t, units.Centimeters(25), first.Position)
	assert.Equal(t, units.Centimeters(80), first.ShelfHeight)
	assert.Equal(t, 6, first.TotalFacings)
	assert.Equal(t, units.Millimeters(90), first.ShelfWidth)

	second := products[1]
	assert.Equal(t, 0, second.TotalFacings)
	assert.Equal(t, DefaultShelfWidth, second.ShelfWidth)
	assert.Equal(t, 0.0, second.Orientation)

	// Facing high missing multiplies to zero.
	assert.Equal(t, 0, products[2].TotalFacings)
	// Shelf without height.
	assert.Equal(t, units.Centimeters(0), products[3].ShelfHeight)
}

func TestFlatten_KPIJoin(t *testing.T) {
	master := models.ProductMap{"1": {ID: "1", TPNB: "T1"}, "2": {ID: "2"}}
	kpis := map[string]models.KPIRecord{"T1": {"sales": 5}}

	products := Flatten(fixtureBays(), master, kpis)

	require.NotNil(t, products[0].ProductDetails)
	assert.Equal(t, "T1", products[0].ProductDetails.TPNB)
	assert.Equal(t, models.KPIRecord{"sales": 5}, products[0].ProductKPIs)

	assert.Nil(t, products[1].ProductDetails, "unknown product id")
	assert.Nil(t, products[1].ProductKPIs)

	require.NotNil(t, products[2].ProductDetails)
	assert.Nil(t, products[2].ProductKPIs, "master record without tpnb")
}

func TestFlatten_DetailsAreCopies(t *testing.T) {
	master := models.ProductMap{"1": {ID: "1", TPNB: "T1"}}
	products := Flatten(fixtureBays(), master, nil)

	products[0].ProductDetails.TPNB = "changed"
	assert.Equal(t, "T1", master["1"].TPNB)
	assert.Equal(t, "T1", products[3].ProductDetails.TPNB)
}

func TestFlatten_Empty(t *testing.T) {
	products := Flatten(nil, nil, nil)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}
