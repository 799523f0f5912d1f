// Package handlers exposes the storefront over HTTP with gin.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/royal-pizza/internal/catalog"
	"github.com/imrishuroy/royal-pizza/internal/idempotency"
	"github.com/imrishuroy/royal-pizza/internal/metrics"
	"github.com/imrishuroy/royal-pizza/internal/ordering"
	"github.com/imrishuroy/royal-pizza/internal/orders"
	"github.com/imrishuroy/royal-pizza/internal/validation"
)

// OrderService is the ordering core as seen by the HTTP layer.
type OrderService interface {
	CreateOrder(ctx context.Context, req validation.CreateOrderRequest) (*ordering.CreateOrderResponse, error)
	GetOrder(ctx context.Context, id string) (*orders.Order, error)
}

// Menu serves the pizza catalog.
type Menu interface {
	ListAvailable(ctx context.Context) ([]catalog.Pizza, error)
	GetPizza(ctx context.Context, id string) (*catalog.Pizza, error)
}

// IdempotencyStore tracks Idempotency-Key headers. *idempotency.Store
// implements it.
type IdempotencyStore interface {
	Claim(ctx context.Context, key, fingerprint string) (bool, error)
	Get(ctx context.Context, key string) (*idempotency.Record, error)
	MarkDone(ctx context.Context, key, orderID, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerConfig groups dependencies for the router. Idempotency and
// Prometheus are optional.
type HandlerConfig struct {
	Orders          OrderService
	Menu            Menu
	Idempotency     IdempotencyStore
	Health          map[string]Pinger
	Prometheus      *metrics.Prometheus
	Logger          zerolog.Logger
	CORSAllowOrigin []string
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(cfg HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID(cfg.Logger))
	r.Use(RequestLogger())
	r.Use(cors.New(corsConfig(cfg.CORSAllowOrigin)))
	if cfg.Prometheus != nil {
		r.Use(cfg.Prometheus.HTTPMiddleware())
		r.GET("/metrics", gin.WrapH(cfg.Prometheus.Handler()))
	}

	api := r.Group("/api")
	api.GET("/health", healthHandler(cfg.Health))
	RegisterPizzaRoutes(api, cfg.Menu)
	RegisterOrdersRoutes(api, cfg.Orders, cfg.Idempotency)

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader, idempotencyHeader},
		ExposeHeaders: []string{requestIDHeader, "Location"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

func healthHandler(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("check", name).Msg("health check failed")
				results[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "unavailable"
		}
		c.JSON(status, gin.H{"status": overall, "checks": results})
	}
}
