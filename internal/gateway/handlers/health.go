package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"
)

// ============================================================
// Health Check Handlers
// ============================================================

// LivenessProbe проверяет, что приложение работает
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// StartupProbe проверяет, что приложение успешно запустилось
func StartupProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "started",
	})
}

// Readiness опрашивает /health/live всех upstream-сервисов.
type Readiness struct {
	upstreams map[string]string
	client    *http.Client
}

func NewReadiness(upstreams map[string]string, timeout time.Duration) *Readiness {
	return &Readiness{
		upstreams: upstreams,
		client:    &http.Client{Timeout: timeout},
	}
}

// Probe отвечает 200, если все upstream живы, иначе 503 с перечнем статусов.
func (r *Readiness) Probe(c fiber.Ctx) error {
	names := make([]string, 0, len(r.upstreams))
	for name := range r.upstreams {
		names = append(names, name)
	}
	sort.Strings(names)

	var mu sync.Mutex
	statuses := make(map[string]string, len(names))

	var g errgroup.Group
	for _, name := range names {
		g.Go(func() error {
			err := r.check(r.upstreams[name])
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				statuses[name] = err.Error()
				return err
			}
			statuses[name] = "ok"
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "degraded",
			"services": statuses,
		})
	}
	return c.JSON(fiber.Map{
		"status":   "ready",
		"services": statuses,
	})
}

func (r *Readiness) check(baseURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/health/live", nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("unreachable")
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
