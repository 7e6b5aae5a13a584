package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"

	"planogram-studio/internal/common/validation"
	"planogram-studio/internal/planogram/builder"
	"planogram-studio/internal/planogram/diff"
	"planogram-studio/internal/planogram/models"
)

// ============================================================
// Layout & Diff
// ============================================================

// GetLayout строит раскладку планограммы в заданном масштабе.
func (h *PlanogramHandler) GetLayout(c fiber.Ctx) error {
	scale, ok := h.parseScale(c)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "scale must be a positive number"})
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	return c.JSON(h.build(ctx, c.Params("id"), scale))
}

type productRef struct {
	ProductID models.ProductID `json:"product_id"`
}

type diffRequest struct {
	LeftProducts  []productRef `json:"left_products"`
	RightProducts []productRef `json:"right_products"`
	LeftVersion   *int         `json:"left_version" validate:"omitempty,gte=0"`
	RightVersion  *int         `json:"right_version" validate:"omitempty,gte=0"`
}

func refIDs(refs []productRef) []models.ProductID {
	ids := make([]models.ProductID, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ProductID)
	}
	return ids
}

// Diff сравнивает два набора товаров по версиям.
func (h *PlanogramHandler) Diff(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "body required"})
	}

	var req diffRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON payload"})
	}
	if err := validation.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(diff.Compare(refIDs(req.LeftProducts), refIDs(req.RightProducts), req.LeftVersion, req.RightVersion))
}

type compareResponse struct {
	Left     *builder.Result `json:"left"`
	Right    *builder.Result `json:"right"`
	Outlines diff.Outlines   `json:"outlines"`
}

// Compare строит обе планограммы параллельно и возвращает их вместе с подсветкой.
func (h *PlanogramHandler) Compare(c fiber.Ctx) error {
	leftID, rightID := c.Query("left"), c.Query("right")
	if leftID == "" || rightID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "left and right required"})
	}
	scale, ok := h.parseScale(c)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "scale must be a positive number"})
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	master := h.masterProducts(ctx)

	var resp compareResponse
	var g errgroup.Group
	g.Go(func() error {
		resp.Left = h.builder.Build(ctx, scale, leftID, master)
		return nil
	})
	g.Go(func() error {
		resp.Right = h.builder.Build(ctx, scale, rightID, master)
		return nil
	})
	_ = g.Wait()

	resp.Outlines = diff.Compare(
		models.ProductIDs(resp.Left.Products),
		models.ProductIDs(resp.Right.Products),
		resp.Left.Version,
		resp.Right.Version,
	)
	return c.JSON(resp)
}
