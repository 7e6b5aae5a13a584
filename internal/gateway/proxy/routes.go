package proxy

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Gateway Routes
// ============================================================

// Upstreams адреса сервисов за шлюзом.
type Upstreams struct {
	Catalog   string
	Planogram string
}

// Mount вешает маршруты /api/v1 на группу api, смонтированную по prefix.
func (p *Proxy) Mount(api fiber.Router, prefix string, up Upstreams) {
	catalogURL := strings.TrimRight(up.Catalog, "/")
	planogramURL := strings.TrimRight(up.Planogram, "/")

	// Catalog Service
	toCatalog := p.StripPrefix(catalogURL, prefix)
	api.Get("/planograms/:id", toCatalog)
	api.Put("/planograms/:id", toCatalog)
	api.Get("/planograms/:id/kpis", toCatalog)
	api.Put("/planograms/:id/kpis", toCatalog)
	api.Get("/products", toCatalog)
	api.Put("/products", toCatalog)

	// Planogram Service
	toPlanogram := p.StripPrefix(planogramURL, prefix)
	api.Get("/layout/:id", func(c fiber.Ctx) error {
		return p.Forward(c, planogramURL+"/planograms/"+PathParam(c, "id")+"/layout")
	})
	api.Post("/diff", p.To(planogramURL+"/diff"))
	api.Get("/compare", p.To(planogramURL+"/compare"))
	api.Get("/panes/diff", toPlanogram)
	api.Get("/panes/:pane", toPlanogram)
	api.Put("/panes/:pane", toPlanogram)
	api.Post("/panes/:pane/watch", toPlanogram)
	api.Get("/jobs/:id", toPlanogram)
	api.Delete("/jobs/:id", toPlanogram)
}

// PathParam возвращает параметр пути, экранированный ровно один раз.
func PathParam(c fiber.Ctx, key string) string {
	raw := c.Params(key)
	if v, err := url.PathUnescape(raw); err == nil {
		raw = v
	}
	return url.PathEscape(raw)
}
