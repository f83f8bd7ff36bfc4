package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/clusterboard/dashboard-api/internal/handler"
	authhandler "github.com/clusterboard/dashboard-api/internal/handler/auth"
	"github.com/clusterboard/dashboard-api/internal/handler/monitoring"
	"github.com/clusterboard/dashboard-api/internal/middleware"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dashboard_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "path", "status"},
	)
	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

type Config struct {
	RateLimit rate.Limit
	RateBurst int
}

type Router struct {
	engine      *gin.Engine
	auth        *middleware.AuthMiddleware
	authH       *authhandler.Handler
	monitoringH *monitoring.Handler
}

func New(auth *middleware.AuthMiddleware, authH *authhandler.Handler,
	monitoringH *monitoring.Handler, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		metricsMiddleware(),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return &Router{
		engine:      engine,
		auth:        auth,
		authH:       authH,
		monitoringH: monitoringH,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api")

	r.authH.RegisterRoutes(api)
	r.monitoringH.RegisterReceiver(api)

	prometheusGroup := api.Group("/prometheus", r.auth.Authenticate())
	r.monitoringH.RegisterRoutes(prometheusGroup)

	r.engine.GET("/health", handler.HealthCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		requestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
		requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
