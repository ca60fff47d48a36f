package router

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	promhandler "github.com/jwalitptl/frontdesk-scheduler/internal/handler/prometheus"
	"github.com/jwalitptl/frontdesk-scheduler/internal/middleware"
	"github.com/jwalitptl/frontdesk-scheduler/internal/render"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// PageHandler serves HTML pages outside the API group
type PageHandler interface {
	RegisterPages(gin.IRoutes)
}

type Router struct {
	engine   *gin.Engine
	pages    PageHandler
	handlers []Handler
	metrics  *routerMetrics
	config   RouterConfig
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	Mode           string
	RequestTimeout time.Duration
	// RateLimit of zero disables rate limiting
	RateLimit     rate.Limit
	RateBurst     int
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
	MetricsPath   string
	// Registry receives the router metrics and backs the metrics endpoint.
	// Nil uses the default registry.
	Registry *prometheus.Registry
}

func NewRouter(config RouterConfig, pages PageHandler, handlers ...Handler) (*Router, error) {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()

	tmpl, err := render.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to load page templates: %w", err)
	}
	engine.SetHTMLTemplate(tmpl)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	if config.Registry != nil {
		registerer = config.Registry
	}

	r := &Router{
		engine:   engine,
		pages:    pages,
		handlers: handlers,
		metrics:  initRouterMetrics(registerer, config.MetricsPrefix),
		config:   config,
	}

	// Add core middlewares
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.ErrorHandler(),
		middleware.Validation(middleware.DefaultValidationConfig()),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
	)

	// Add CORS with config
	engine.Use(middleware.CORS(config.CORSConfig))

	// Configure rate limiter
	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	engine.Use(middleware.Compress(middleware.DefaultCompressConfig()))

	return r, nil
}

func (r *Router) Setup() {
	if r.pages != nil {
		r.pages.RegisterPages(r.engine)
	}

	api := r.engine.Group("/api/v1")

	// Add version header
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}

	r.setupMetrics()
}

func (r *Router) setupMetrics() {
	if r.config.MetricsPath == "" {
		return
	}
	var gatherer prometheus.Gatherer
	if r.config.Registry != nil {
		gatherer = r.config.Registry
	}
	r.engine.GET(r.config.MetricsPath, promhandler.New(gatherer).Handler())
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Metrics initialization and middleware
func initRouterMetrics(reg prometheus.Registerer, prefix string) *routerMetrics {
	factory := promauto.With(reg)
	return &routerMetrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: prefix,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prefix,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prefix,
				Name:      "http_errors_total",
				Help:      "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		switch {
		case c.Writer.Status() >= 500:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		case c.Writer.Status() >= 400:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
