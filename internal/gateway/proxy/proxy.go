package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Proxy Handler
// ============================================================

// hopHeaders не пробрасываются обратно клиенту.
var hopHeaders = map[string]bool{
	"Connection":        true,
	"Keep-Alive":        true,
	"Transfer-Encoding": true,
	"Content-Length":    true,
	"Upgrade":           true,
}

type Proxy struct {
	client *http.Client
	logger *zap.Logger
}

func New(timeout time.Duration, logger *zap.Logger) *Proxy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Proxy{
		client: &http.Client{Timeout: timeout},
		logger: logger.Named("proxy"),
	}
}

// To проксирует запрос на фиксированный путь upstream-сервиса.
func (p *Proxy) To(targetURL string) fiber.Handler {
	return func(c fiber.Ctx) error {
		return p.Forward(c, targetURL)
	}
}

// StripPrefix проксирует запрос, заменяя префикс пути на адрес upstream.
// /api/v1/planograms/7/kpis с префиксом /api/v1 уходит в <upstream>/planograms/7/kpis.
func (p *Proxy) StripPrefix(upstream, prefix string) fiber.Handler {
	upstream = strings.TrimRight(upstream, "/")
	return func(c fiber.Ctx) error {
		return p.Forward(c, upstream+strings.TrimPrefix(c.Path(), prefix))
	}
}

// Forward проксирует запрос по переданному URL, сохраняя query string.
func (p *Proxy) Forward(c fiber.Ctx, targetURL string) error {
	if qs := c.Request().URI().QueryString(); len(qs) > 0 {
		targetURL += "?" + string(qs)
	}

	p.logger.Debug("forwarding",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("target", targetURL),
		zap.Int("body_bytes", len(c.Body())))

	req, err := http.NewRequest(c.Method(), targetURL, bytes.NewReader(c.Body()))
	if err != nil {
		p.logger.Error("build request failed", zap.String("target", targetURL), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
	}

	for _, h := range []string{"Content-Type", "Accept", "Authorization", fiber.HeaderXRequestID} {
		if v := c.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("upstream unreachable", zap.String("target", targetURL), zap.Error(err))
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach upstream service"})
	}
	defer resp.Body.Close()

	return p.copyResponse(c, resp)
}

func (p *Proxy) copyResponse(c fiber.Ctx, resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		p.logger.Warn("read upstream response failed", zap.Error(err))
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "invalid upstream response"})
	}

	for key, values := range resp.Header {
		if len(values) > 0 && !hopHeaders[key] {
			c.Set(key, values[0])
		}
	}

	c.Status(resp.StatusCode)
	return c.Send(data)
}
