package models

import "planogram-studio/internal/planogram/units"

// ============================================================
// Derived structures
// ============================================================

// FlattenedProduct is one placement joined with master data and KPIs.
// All optional raw fields are resolved to concrete values at construction.
type FlattenedProduct struct {
	Bay            int               `json:"bay"`
	Shelf          int               `json:"shelf"`
	ProductID      ProductID         `json:"product_id"`
	Position       units.Centimeters `json:"position"`
	ShelfHeight    units.Centimeters `json:"shelfheight"`
	ShelfWidth     units.Millimeters `json:"shelfwidth"`
	FacingsWide    int               `json:"facings_wide"`
	FacingsHigh    int               `json:"facings_high"`
	TotalFacings   int               `json:"total_facings"`
	TrayHeight     units.Millimeters `json:"tray_height"`
	TrayWidth      units.Millimeters `json:"tray_width"`
	TrayDepth      units.Millimeters `json:"tray_depth"`
	Orientation    float64           `json:"orientation"`
	LinearValue    float64           `json:"linear_value"`
	ProductDetails *ProductDetails   `json:"product_details"`
	ProductKPIs    KPIRecord         `json:"product_kpis"`
}

// ProductIDs extracts placement product ids in order.
func ProductIDs(products []FlattenedProduct) []ProductID {
	ids := make([]ProductID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ProductID)
	}
	return ids
}

// ShelfDimension is the scaled size of one shelf.
type ShelfDimension struct {
	Width     units.DisplayUnits `json:"width"`
	Height    units.DisplayUnits `json:"height"`
	BaseWidth units.Centimeters  `json:"baseWidth"`
}

// Dimensions maps bay number -> shelf number -> dimension.
type Dimensions map[int]map[int]ShelfDimension

// LineSegment is either a product on the shelf line or a filler span.
// Offset/Width/Height are display units; XPosition is Offset in centimeters.
type LineSegment struct {
	ID           string             `json:"id"`
	Width        units.DisplayUnits `json:"width"`
	Height       units.DisplayUnits `json:"height"`
	IsEmpty      bool               `json:"isEmpty"`
	Offset       units.DisplayUnits `json:"offset"`
	XPosition    units.Centimeters  `json:"xPosition"`
	ActualWidth  units.Millimeters  `json:"actualWidth,omitempty"`
	ActualHeight units.Millimeters  `json:"actualHeight,omitempty"`

	*FlattenedProduct
}

// SubShelf is one tier of a bay with its laid-out line.
type SubShelf struct {
	Number    int                `json:"number"`
	Height    units.DisplayUnits `json:"height"`
	Width     units.DisplayUnits `json:"width"`
	BaseWidth units.Centimeters  `json:"baseWidth"`
	Line      []LineSegment      `json:"line"`
}

// BayLayout is a bay ready for rendering: height is the sum of its sub-shelves,
// width the widest one.
type BayLayout struct {
	Number     int                `json:"number"`
	Height     units.DisplayUnits `json:"height"`
	Width      units.DisplayUnits `json:"width"`
	SubShelves []SubShelf         `json:"subShelves"`
}
