package builder

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"planogram-studio/internal/planogram/layout"
	"planogram-studio/internal/planogram/models"
	"planogram-studio/internal/planogram/product"
	"planogram-studio/internal/planogram/shelf"
)

// ============================================================
// Source
// ============================================================

// Source supplies the raw data of one planogram.
type Source interface {
	Snapshot(ctx context.Context, planogramID string) (*models.Snapshot, error)
	KPIs(ctx context.Context, planogramID string) ([]models.KPIRecord, error)
}

// ============================================================
// Result
// ============================================================

// Result is the full layout of one planogram. RuleManager and
// ProductKPIsByTPNB are nil when the source could not be read.
type Result struct {
	DynamicShelves    []models.BayLayout          `json:"dynamicShelves"`
	Products          []models.FlattenedProduct   `json:"products"`
	RuleManager       map[string]any              `json:"ruleManager,omitempty"`
	ProductKPIsByTPNB map[string]models.KPIRecord `json:"productKPIsByTpnb,omitempty"`
	Version           *int                        `json:"version,omitempty"`
}

// Empty is the "nothing to show" result.
func Empty() *Result {
	return &Result{
		DynamicShelves: []models.BayLayout{},
		Products:       []models.FlattenedProduct{},
	}
}

// ============================================================
// Builder
// ============================================================

type Builder struct {
	source Source
	logger *zap.Logger
}

func New(source Source, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{source: source, logger: logger.Named("builder")}
}

// Build fetches the planogram and lays it out at the given display scale.
// A failed fetch is logged and yields Empty(); Build never fails.
func (b *Builder) Build(ctx context.Context, scale float64, planogramID string, master models.ProductMap) *Result {
	snapshot, kpis, err := b.fetch(ctx, planogramID)
	if err != nil {
		b.logger.Error("planogram fetch failed",
			zap.String("planogram_id", planogramID),
			zap.Error(err))
		return Empty()
	}

	kpiByTPNB := models.KPIsByTPNB(kpis)

	// Dimensions and products read the same snapshot and are independent.
	var (
		dims     models.Dimensions
		products []models.FlattenedProduct
		g        errgroup.Group
	)
	g.Go(func() error {
		dims = shelf.Aggregate(snapshot.Bays, scale)
		return nil
	})
	g.Go(func() error {
		products = product.Flatten(snapshot.Bays, master, kpiByTPNB)
		return nil
	})
	_ = g.Wait()

	bays := shelf.Build(dims)
	for _, w := range layout.Apply(bays, products, scale) {
		b.logger.Warn("product position exceeds shelf width, wrapped",
			zap.String("planogram_id", planogramID),
			zap.Int("bay", w.Bay),
			zap.Int("shelf", w.Shelf),
			zap.String("product_id", string(w.ProductID)))
	}

	rules := snapshot.Rules
	if rules == nil {
		rules = map[string]any{}
	}

	return &Result{
		DynamicShelves:    bays,
		Products:          products,
		RuleManager:       rules,
		ProductKPIsByTPNB: kpiByTPNB,
		Version:           snapshot.Version,
	}
}

func (b *Builder) fetch(ctx context.Context, planogramID string) (*models.Snapshot, []models.KPIRecord, error) {
	var (
		snapshot *models.Snapshot
		kpis     []models.KPIRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := b.source.Snapshot(gctx, planogramID)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		snapshot = s
		return nil
	})
	g.Go(func() error {
		k, err := b.source.KPIs(gctx, planogramID)
		if err != nil {
			return fmt.Errorf("kpis: %w", err)
		}
		kpis = k
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if snapshot == nil {
		return nil, nil, fmt.Errorf("snapshot: empty response")
	}
	return snapshot, kpis, nil
}
