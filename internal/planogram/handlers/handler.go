package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"planogram-studio/internal/planogram/builder"
	"planogram-studio/internal/planogram/models"
	"planogram-studio/internal/planogram/service"
)

// ============================================================
// Planogram Handler
// ============================================================

// MasterData supplies the master product lookup.
type MasterData interface {
	Products(ctx context.Context) (models.ProductMap, error)
}

type Options struct {
	DefaultScale     float64
	FetchTimeout     time.Duration
	WatchMinInterval time.Duration
}

type PlanogramHandler struct {
	builder *builder.Builder
	master  MasterData
	panes   *service.Panes
	jobs    *service.Registry
	opts    Options
	logger  *zap.Logger
}

func NewPlanogramHandler(b *builder.Builder, master MasterData, panes *service.Panes, jobs *service.Registry, opts Options, logger *zap.Logger) *PlanogramHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultScale <= 0 {
		opts.DefaultScale = 1
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 15 * time.Second
	}
	h := &PlanogramHandler{
		builder: b,
		master:  master,
		panes:   panes,
		jobs:    jobs,
		opts:    opts,
		logger:  logger.Named("handlers"),
	}
	jobs.OnError = func(id string, err error) {
		h.logger.Warn("watch job tick failed", zap.String("job_id", id), zap.Error(err))
	}
	return h
}

// Register вешает маршруты сервиса на приложение.
func (h *PlanogramHandler) Register(app fiber.Router) {
	app.Get("/planograms/:id/layout", h.GetLayout)
	app.Post("/diff", h.Diff)
	app.Get("/compare", h.Compare)

	app.Get("/panes/diff", h.DiffPanes)
	app.Put("/panes/:pane", h.LoadPane)
	app.Get("/panes/:pane", h.GetPane)
	app.Post("/panes/:pane/watch", h.WatchPane)

	app.Get("/jobs/:id", h.GetJob)
	app.Delete("/jobs/:id", h.StopJob)
}

// masterProducts читает мастер-данные каталога. Ошибка не фатальна: товары
// останутся без product_details.
func (h *PlanogramHandler) masterProducts(ctx context.Context) models.ProductMap {
	master, err := h.master.Products(ctx)
	if err != nil {
		h.logger.Warn("master products unavailable", zap.Error(err))
		return models.ProductMap{}
	}
	return master
}

// build собирает layout с мастер-данными каталога.
func (h *PlanogramHandler) build(ctx context.Context, planogramID string, scale float64) *builder.Result {
	return h.builder.Build(ctx, scale, planogramID, h.masterProducts(ctx))
}

// requestContext ограничивает выборки таймаутом и обрывает их вместе с запросом.
func (h *PlanogramHandler) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, h.opts.FetchTimeout)
}

// parseScale читает ?scale=, пустое значение = масштаб по умолчанию.
func (h *PlanogramHandler) parseScale(c fiber.Ctx) (float64, bool) {
	raw := c.Query("scale")
	if raw == "" {
		return h.opts.DefaultScale, true
	}
	scale, err := strconv.ParseFloat(raw, 64)
	if err != nil || scale <= 0 {
		return 0, false
	}
	return scale, true
}
