package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"planogram-studio/internal/catalog/repository"
	"planogram-studio/internal/common/validation"
	"planogram-studio/internal/planogram/models"
)

// ============================================================
// Catalog Handler
// ============================================================

type CatalogHandler struct {
	repo    *repository.Repository
	timeout time.Duration
	logger  *zap.Logger
}

func NewCatalogHandler(repo *repository.Repository, timeout time.Duration, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CatalogHandler{
		repo:    repo,
		timeout: timeout,
		logger:  logger.Named("catalog"),
	}
}

// Register вешает маршруты каталога.
func (h *CatalogHandler) Register(app fiber.Router) {
	app.Put("/planograms/:id", h.PutPlanogram)
	app.Get("/planograms/:id", h.GetPlanogram)
	app.Put("/planograms/:id/kpis", h.PutKPIs)
	app.Get("/planograms/:id/kpis", h.GetKPIs)

	app.Put("/products", h.PutProducts)
	app.Get("/products", h.GetProducts)
}

// ctx ограничивает запрос к базе таймаутом и обрывает его вместе с запросом.
func (h *CatalogHandler) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, h.timeout)
}

func (h *CatalogHandler) internalError(c fiber.Ctx, msg string, err error) error {
	h.logger.Error(msg, zap.String("path", c.Path()), zap.Error(err))
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}

// ============================================================
// Planograms
// ============================================================

type planogramRequest struct {
	Version *int                   `json:"version" validate:"omitempty,gte=0"`
	Bays    []models.BayDescriptor `json:"bay_details_list" validate:"required,dive"`
	Rules   map[string]any         `json:"planogram_rules"`
}

// PutPlanogram сохраняет снимок планограммы целиком.
func (h *CatalogHandler) PutPlanogram(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "body required"})
	}

	var req planogramRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON payload"})
	}
	if err := validation.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	snap := &models.Snapshot{
		ID:      c.Params("id"),
		Version: req.Version,
		Bays:    req.Bays,
		Rules:   req.Rules,
	}
	if err := h.repo.SavePlanogram(ctx, snap); err != nil {
		return h.internalError(c, "failed to save planogram", err)
	}

	h.logger.Info("planogram saved",
		zap.String("planogram_id", snap.ID),
		zap.Int("bays", len(snap.Bays)))
	return c.SendStatus(http.StatusNoContent)
}

func (h *CatalogHandler) GetPlanogram(c fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	snap, err := h.repo.GetPlanogram(ctx, c.Params("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "planogram not found"})
	}
	if err != nil {
		return h.internalError(c, "failed to load planogram", err)
	}
	return c.JSON(snap)
}

// ============================================================
// KPIs
// ============================================================

type kpiRequest struct {
	Data []models.KPIRecord `json:"data" validate:"required"`
}

// PutKPIs заменяет набор KPI планограммы.
func (h *CatalogHandler) PutKPIs(c fiber.Ctx) error {
	var req kpiRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON payload"})
	}
	if err := validation.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	for _, rec := range req.Data {
		if rec.TPNB() == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "every kpi record needs tpnb"})
		}
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.repo.ReplaceKPIs(ctx, c.Params("id"), req.Data); err != nil {
		return h.internalError(c, "failed to save kpis", err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// GetKPIs отдает KPI в обертке {data: {data: [...]}}.
func (h *CatalogHandler) GetKPIs(c fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	records, err := h.repo.ListKPIs(ctx, c.Params("id"))
	if err != nil {
		return h.internalError(c, "failed to load kpis", err)
	}

	var env models.KPIEnvelope
	env.Data.Data = records
	return c.JSON(env)
}

// ============================================================
// Master products
// ============================================================

type productKey struct {
	ID   models.ProductID `json:"product_id" validate:"required"`
	TPNB string           `json:"tpnb" validate:"required"`
}

// PutProducts добавляет или обновляет мастер-данные товаров.
func (h *CatalogHandler) PutProducts(c fiber.Ctx) error {
	var products []models.ProductDetails
	if err := json.Unmarshal(c.Body(), &products); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON payload"})
	}

	for i, p := range products {
		if err := validation.Struct(productKey{ID: p.ID, TPNB: p.TPNB}); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("product %d: %v", i, err)})
		}
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.repo.UpsertProducts(ctx, products); err != nil {
		return h.internalError(c, "failed to save products", err)
	}

	h.logger.Info("products upserted", zap.Int("count", len(products)))
	return c.SendStatus(http.StatusNoContent)
}

func (h *CatalogHandler) GetProducts(c fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	products, err := h.repo.ListProducts(ctx)
	if err != nil {
		return h.internalError(c, "failed to load products", err)
	}
	return c.JSON(products)
}
