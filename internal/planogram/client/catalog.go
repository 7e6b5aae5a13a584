package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"planogram-studio/internal/planogram/models"
)

// ErrNotFound is returned when the catalog has no such planogram.
var ErrNotFound = errors.New("not found")

// ============================================================
// Catalog Client
// ============================================================

// Catalog reads planogram snapshots, KPIs and master products from the
// catalog service.
type Catalog struct {
	baseURL string
	http    *http.Client
}

func NewCatalog(baseURL string, timeout time.Duration) *Catalog {
	return &Catalog{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Snapshot загружает bay_details_list и planogram_rules планограммы.
func (c *Catalog) Snapshot(ctx context.Context, planogramID string) (*models.Snapshot, error) {
	var s models.Snapshot
	if err := c.getJSON(ctx, "/planograms/"+url.PathEscape(planogramID), &s); err != nil {
		return nil, err
	}
	if s.ID == "" {
		s.ID = planogramID
	}
	return &s, nil
}

// KPIs загружает KPI-записи планограммы ({data: {data: [...]}}).
func (c *Catalog) KPIs(ctx context.Context, planogramID string) ([]models.KPIRecord, error) {
	var env models.KPIEnvelope
	if err := c.getJSON(ctx, "/planograms/"+url.PathEscape(planogramID)+"/kpis", &env); err != nil {
		return nil, err
	}
	return env.Data.Data, nil
}

// Products загружает мастер-данные товаров.
func (c *Catalog) Products(ctx context.Context) (models.ProductMap, error) {
	var list []models.ProductDetails
	if err := c.getJSON(ctx, "/products", &list); err != nil {
		return nil, err
	}
	return models.NewProductMap(list), nil
}

func (c *Catalog) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("GET %s: %w", path, ErrNotFound)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s: catalog status %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
