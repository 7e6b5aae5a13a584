package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"planogram-studio/internal/planogram/models"
	"planogram-studio/internal/planogram/units"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	snapshot    *models.Snapshot
	kpis        []models.KPIRecord
	snapshotErr error
	kpiErr      error
}

func (f *fakeSource) Snapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	return f.snapshot, f.snapshotErr
}

func (f *fakeSource) KPIs(ctx context.Context, id string) ([]models.KPIRecord, error) {
	return f.kpis, f.kpiErr
}

func intPtr(v int) *int { return &v }

func roundTripSnapshot() *models.Snapshot {
	return &models.Snapshot{
		ID:      "pg-1",
		Version: intPtr(7),
		Rules:   map[string]any{"min_facings": 1.0},
		Bays: []models.BayDescriptor{{
			Number: 1, Width: 1330, Height: 2400,
			Shelves: []models.ShelfDescriptor{{
				Number: 1, Width: units.MM(1330), Height: units.MM(800),
				Products: []models.ProductPlacement{{
					ProductID:  "1",
					Position:   0,
					FacingWide: intPtr(2),
					FacingHigh: intPtr(1),
					Width:      units.MM(133),
				}},
			}},
		}},
	}
}

func TestBuild_RoundTripScenario(t *testing.T) {
	src := &fakeSource{
		snapshot: roundTripSnapshot(),
		kpis:     []models.KPIRecord{{"tpnb": "T1", "sales": 5.0}},
	}
	master := models.ProductMap{"1": {ID: "1", TPNB: "T1"}}

	res := New(src, zap.NewNop()).Build(context.Background(), 3, "pg-1", master)

	require.Len(t, res.Products, 1)
	p := res.Products[0]
	assert.Equal(t, 2, p.TotalFacings)
	assert.Equal(t, units.Centimeters(0), p.Position)
	assert.Equal(t, models.KPIRecord{"tpnb": "T1", "sales": 5.0}, p.ProductKPIs)

	require.Len(t, res.DynamicShelves, 1)
	bay := res.DynamicShelves[0]
	require.Len(t, bay.SubShelves, 1)
	sub := bay.SubShelves[0]
	assert.Equal(t, units.DisplayUnits(399), sub.Width)
	// 800mm shelf + (2400-800)/1 leftover = 2400mm -> 720 at scale 3
	assert.Equal(t, units.DisplayUnits(720), sub.Height)
	assert.Equal(t, sub.Height, bay.Height)

	line := sub.Line
	require.NotEmpty(t, line)
	assert.False(t, line[0].IsEmpty)
	assert.Equal(t, units.Centimeters(0), line[0].XPosition)

	var fill units.DisplayUnits
	for _, s := range line[1:] {
		assert.True(t, s.IsEmpty)
		fill += s.Width
	}
	assert.InDelta(t, 399-float64(line[0].Width), float64(fill), 1e-9)

	assert.Equal(t, 7, *res.Version)
	assert.Equal(t, map[string]any{"min_facings": 1.0}, res.RuleManager)
	assert.Contains(t, res.ProductKPIsByTPNB, "T1")
}

func TestBuild_Idempotent(t *testing.T) {
	src := &fakeSource{snapshot: roundTripSnapshot(), kpis: []models.KPIRecord{{"tpnb": "T1"}}}
	master := models.ProductMap{"1": {ID: "1", TPNB: "T1", Width: units.MM(70)}}
	b := New(src, zap.NewNop())

	first := b.Build(context.Background(), 2, "pg-1", master)
	second := b.Build(context.Background(), 2, "pg-1", master)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Build() not idempotent (-first +second):\n%s", diff)
	}
}

func TestBuild_FetchFailureYieldsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	for name, src := range map[string]*fakeSource{
		"snapshot": {snapshotErr: errors.New("connection refused")},
		"kpis":     {snapshot: roundTripSnapshot(), kpiErr: errors.New("503")},
		"nil":      {},
	} {
		t.Run(name, func(t *testing.T) {
			res := New(src, zap.New(core)).Build(context.Background(), 3, "pg-x", nil)

			assert.Equal(t, Empty(), res)
			assert.Nil(t, res.RuleManager)
			assert.Nil(t, res.ProductKPIsByTPNB)
		})
	}

	assert.Equal(t, 3, logs.FilterMessage("planogram fetch failed").Len())
	assert.Equal(t, "pg-x", logs.All()[0].ContextMap()["planogram_id"])
}

func TestBuild_LogsWrappedPositions(t *testing.T) {
	snap := roundTripSnapshot()
	snap.Bays[0].Shelves[0].Products[0].Position = 20000

	core, logs := observer.New(zapcore.WarnLevel)
	res := New(&fakeSource{snapshot: snap}, zap.New(core)).Build(context.Background(), 1, "pg-1", nil)

	require.Len(t, res.DynamicShelves, 1)
	entries := logs.FilterMessage("product position exceeds shelf width, wrapped").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].ContextMap()["product_id"])
}

func TestBuild_UnknownProductHasNoJoins(t *testing.T) {
	res := New(&fakeSource{snapshot: roundTripSnapshot()}, nil).Build(context.Background(), 1, "pg-1", models.ProductMap{})

	require.Len(t, res.Products, 1)
	assert.Nil(t, res.Products[0].ProductDetails)
	assert.Nil(t, res.Products[0].ProductKPIs)
	assert.NotNil(t, res.RuleManager)
}
