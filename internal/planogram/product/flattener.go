package product

import (
	"planogram-studio/internal/planogram/models"
	"planogram-studio/internal/planogram/units"
)

// DefaultShelfWidth is used when a placement carries no width of its own.
const DefaultShelfWidth units.Millimeters = 133

// ============================================================
// Product Flattener
// ============================================================

// Flatten walks bay -> shelf -> placement in document order and emits one
// record per placement joined with master data (by product id) and KPIs (by
// the master record's tpnb). Missing joins stay nil.
func Flatten(bays []models.BayDescriptor, master models.ProductMap, kpis map[string]models.KPIRecord) []models.FlattenedProduct {
	products := make([]models.FlattenedProduct, 0)

	for _, bay := range bays {
		for _, shelf := range bay.Shelves {
			shelfHeight := units.ToCentimeters(units.Or(shelf.Height, 0))
			for _, pl := range shelf.Products {
				products = append(products, flatten(bay.Number, shelf.Number, shelfHeight, pl, master, kpis))
			}
		}
	}

	return products
}

func flatten(bay, shelf int, shelfHeight units.Centimeters, pl models.ProductPlacement, master models.ProductMap, kpis map[string]models.KPIRecord) models.FlattenedProduct {
	wide := intOr(pl.FacingWide)
	high := intOr(pl.FacingHigh)

	fp := models.FlattenedProduct{
		Bay:          bay,
		Shelf:        shelf,
		ProductID:    pl.ProductID,
		Position:     units.ToCentimeters(pl.Position),
		ShelfHeight:  shelfHeight,
		ShelfWidth:   units.Or(pl.Width, DefaultShelfWidth),
		FacingsWide:  wide,
		FacingsHigh:  high,
		TotalFacings: wide * high,
		TrayHeight:   units.Or(pl.TrayHeight, 0),
		TrayWidth:    units.Or(pl.TrayWidth, 0),
		TrayDepth:    units.Or(pl.TrayDepth, 0),
		Orientation:  floatOr(pl.Orientation),
		LinearValue:  floatOr(pl.LinearValue),
	}

	if details, ok := master[pl.ProductID]; ok {
		fp.ProductDetails = &details
		if details.TPNB != "" {
			if kpi, ok := kpis[details.TPNB]; ok {
				fp.ProductKPIs = kpi
			}
		}
	}

	return fp
}

func intOr(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
