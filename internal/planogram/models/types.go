package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"planogram-studio/internal/planogram/units"
)

// ============================================================
// Identifiers
// ============================================================

// ProductID is the master-data identifier of a product. The upstream API sends
// it either as a JSON number or a string; both decode to the same value.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product_id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// ============================================================
// Raw planogram snapshot
// ============================================================

// Snapshot is one planogram as served by the catalog.
type Snapshot struct {
	ID      string          `json:"id"`
	Version *int            `json:"version,omitempty"`
	Bays    []BayDescriptor `json:"bay_details_list"`
	Rules   map[string]any  `json:"planogram_rules"`
}

type BayDescriptor struct {
	Number  int               `json:"number"`
	Width   units.Millimeters `json:"width"`
	Height  units.Millimeters `json:"height"`
	Shelves []ShelfDescriptor `json:"shelves"`
}

// ShelfDescriptor width/height are optional, the aggregator falls back to the bay.
type ShelfDescriptor struct {
	Number   int                `json:"number"`
	Width    *units.Millimeters `json:"width,omitempty"`
	Height   *units.Millimeters `json:"height,omitempty"`
	Products []ProductPlacement `json:"products"`
}

type ProductPlacement struct {
	ProductID   ProductID          `json:"product_id"`
	Position    units.Millimeters  `json:"position"`
	FacingWide  *int               `json:"facing_wide,omitempty"`
	FacingHigh  *int               `json:"facing_high,omitempty"`
	TrayHeight  *units.Millimeters `json:"tray_height,omitempty"`
	TrayWidth   *units.Millimeters `json:"tray_width,omitempty"`
	TrayDepth   *units.Millimeters `json:"tray_depth,omitempty"`
	Orientation *float64           `json:"orientation,omitempty"`
	Width       *units.Millimeters `json:"width,omitempty"`
	LinearValue *float64           `json:"linear_value,omitempty"`
}

// ============================================================
// Master data & KPIs
// ============================================================

// ProductDetails is a master product record. Physical dimensions are optional.
type ProductDetails struct {
	ID          ProductID          `json:"product_id"`
	TPNB        string             `json:"tpnb"`
	Description string             `json:"description,omitempty"`
	Brand       string             `json:"brand,omitempty"`
	Width       *units.Millimeters `json:"width,omitempty"`
	Height      *units.Millimeters `json:"height,omitempty"`
	Depth       *units.Millimeters `json:"depth,omitempty"`
}

// ProductMap indexes master products by id.
type ProductMap map[ProductID]ProductDetails

// NewProductMap indexes a master product list; the first record per id wins.
func NewProductMap(list []ProductDetails) ProductMap {
	m := make(ProductMap, len(list))
	for _, p := range list {
		if _, ok := m[p.ID]; !ok {
			m[p.ID] = p
		}
	}
	return m
}

// KPIRecord is an open set of metrics keyed by name; "tpnb" is the join key.
type KPIRecord map[string]any

// TPNB returns the join key of the record, "" when absent.
func (k KPIRecord) TPNB() string {
	switch v := k["tpnb"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// KPIsByTPNB indexes KPI records by tpnb. Records without tpnb are skipped,
// a later record for the same tpnb replaces an earlier one.
func KPIsByTPNB(records []KPIRecord) map[string]KPIRecord {
	m := make(map[string]KPIRecord, len(records))
	for _, r := range records {
		if tpnb := r.TPNB(); tpnb != "" {
			m[tpnb] = r
		}
	}
	return m
}

// KPIEnvelope is the wire shape of the KPI collaborator: {data: {data: [...]}}.
type KPIEnvelope struct {
	Data struct {
		Data []KPIRecord `json:"data"`
	} `json:"data"`
}
