package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"planogram-studio/internal/common/validation"
	"planogram-studio/internal/planogram/diff"
	"planogram-studio/internal/planogram/models"
)

// ============================================================
// Panes & Jobs
// ============================================================

type loadPaneRequest struct {
	PlanogramID string  `json:"planogram_id" validate:"required"`
	Scale       float64 `json:"scale" validate:"omitempty,gt=0"`
}

// LoadPane загружает планограмму в панель сравнения. Если пока шла сборка
// панель успели перезагрузить, ответ 409.
func (h *PlanogramHandler) LoadPane(c fiber.Ctx) error {
	var req loadPaneRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON payload"})
	}
	if err := validation.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Scale == 0 {
		req.Scale = h.opts.DefaultScale
	}

	name := strings.Clone(c.Params("pane"))
	ctx, cancel := h.requestContext(c)
	defer cancel()

	ok, err := h.reload(ctx, name, req.PlanogramID, req.Scale)
	if err != nil {
		return c.Status(http.StatusGatewayTimeout).JSON(fiber.Map{"error": "pane load timed out"})
	}
	if !ok {
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": "superseded by a newer request"})
	}

	state, _ := h.panes.Current(name)
	return c.JSON(state)
}

// reload пересобирает панель. Результат отменённой сборки не сохраняется.
func (h *PlanogramHandler) reload(ctx context.Context, pane, planogramID string, scale float64) (bool, error) {
	gen := h.panes.Begin(pane)
	res := h.build(ctx, planogramID, scale)
	if err := ctx.Err(); err != nil {
		return false, err
	}

	ok := h.panes.Commit(pane, gen, planogramID, scale, res)
	if !ok {
		h.logger.Debug("stale pane load discarded",
			zap.String("pane", pane),
			zap.Uint64("generation", gen))
	}
	return ok, nil
}

// refresh пересобирает то, что панель показывает сейчас. Пока идёт загрузка
// пользователя, панель не трогается, а начатая до неё пересборка отбрасывается.
func (h *PlanogramHandler) refresh(ctx context.Context, pane string) error {
	state, ok := h.panes.Settled(pane)
	if !ok {
		return nil
	}

	res := h.build(ctx, state.PlanogramID, state.Scale)
	if err := ctx.Err(); err != nil {
		return err
	}

	if !h.panes.Refresh(pane, state.Generation, res) {
		h.logger.Debug("pane refresh superseded by a load",
			zap.String("pane", pane),
			zap.String("planogram_id", state.PlanogramID))
	}
	return nil
}

// GetPane отдаёт текущее состояние панели.
func (h *PlanogramHandler) GetPane(c fiber.Ctx) error {
	state, ok := h.panes.Current(c.Params("pane"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "pane not loaded"})
	}
	return c.JSON(state)
}

// DiffPanes сравнивает текущие состояния двух панелей.
func (h *PlanogramHandler) DiffPanes(c fiber.Ctx) error {
	leftName, rightName := c.Query("left", "left"), c.Query("right", "right")

	var left, right []models.ProductID
	var lv, rv *int
	if st, ok := h.panes.Current(leftName); ok {
		left, lv = models.ProductIDs(st.Result.Products), st.Result.Version
	}
	if st, ok := h.panes.Current(rightName); ok {
		right, rv = models.ProductIDs(st.Result.Products), st.Result.Version
	}

	return c.JSON(diff.Compare(left, right, lv, rv))
}

type watchRequest struct {
	IntervalSeconds int `json:"interval_seconds" validate:"gte=0"`
}

// WatchPane запускает периодическую перезагрузку панели.
func (h *PlanogramHandler) WatchPane(c fiber.Ctx) error {
	var req watchRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON payload"})
		}
	}
	if err := validation.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	name := strings.Clone(c.Params("pane"))
	if _, ok := h.panes.Current(name); !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "pane not loaded"})
	}

	interval := time.Duration(req.IntervalSeconds) * time.Second
	if interval < h.opts.WatchMinInterval {
		interval = h.opts.WatchMinInterval
	}
	if interval <= 0 {
		interval = time.Second
	}

	id := h.jobs.Start(interval, func(ctx context.Context) error {
		tctx, cancel := context.WithTimeout(ctx, h.opts.FetchTimeout)
		defer cancel()
		return h.refresh(tctx, name)
	})

	h.logger.Info("pane watch started",
		zap.String("job_id", id),
		zap.String("pane", name),
		zap.Duration("interval", interval))

	return c.Status(http.StatusAccepted).JSON(fiber.Map{"job_id": id})
}

// GetJob сообщает, активна ли задача.
func (h *PlanogramHandler) GetJob(c fiber.Ctx) error {
	id := c.Params("id")
	return c.JSON(fiber.Map{"job_id": id, "active": h.jobs.IsActive(id)})
}

// StopJob останавливает задачу.
func (h *PlanogramHandler) StopJob(c fiber.Ctx) error {
	if !h.jobs.Stop(c.Params("id")) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}
	return c.SendStatus(http.StatusNoContent)
}
