package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus records to a dedicated registry served by Handler.
type Prometheus struct {
	registry      *prometheus.Registry
	ordersCreated prometheus.Counter
	orderValue    prometheus.Histogram
	orderItems    prometheus.Histogram
	orderFailures *prometheus.CounterVec
	publishFails  prometheus.Counter
	httpDuration  *prometheus.HistogramVec
}

// NewPrometheus registers the collectors under namespace.
func NewPrometheus(namespace string) *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		ordersCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders persisted.",
		}),
		orderValue: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_total_amount",
			Help:      "Total amount of persisted orders.",
			Buckets:   []float64{10, 20, 30, 50, 75, 100, 150, 250},
		}),
		orderItems: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_item_count",
			Help:      "Pizzas per persisted order.",
			Buckets:   prometheus.LinearBuckets(1, 2, 8),
		}),
		orderFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_failures_total",
			Help:      "Rejected or failed order creations by error kind.",
		}, []string{"kind"}),
		publishFails: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "OrderPlaced events that could not be published.",
		}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (p *Prometheus) OrderCreated(_ context.Context, itemCount int, total float64) {
	p.ordersCreated.Inc()
	p.orderValue.Observe(total)
	p.orderItems.Observe(float64(itemCount))
}

func (p *Prometheus) OrderFailed(_ context.Context, kind string) {
	p.orderFailures.WithLabelValues(kind).Inc()
}

func (p *Prometheus) EventPublishFailed(context.Context) {
	p.publishFails.Inc()
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// HTTPMiddleware observes request latency labelled by the matched route.
func (p *Prometheus) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		p.httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
