package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/careloop/emr-gateway/internal/handler"
	encounterHandler "github.com/careloop/emr-gateway/internal/handler/encounter"
	patientHandler "github.com/careloop/emr-gateway/internal/handler/patient"
	webhookHandler "github.com/careloop/emr-gateway/internal/handler/webhook"
	"github.com/careloop/emr-gateway/internal/middleware"
	"github.com/careloop/emr-gateway/pkg/metrics"
)

type Config struct {
	RateLimit rate.Limit
	RateBurst int
	CORS      middleware.CORSConfig
}

type Router struct {
	engine     *gin.Engine
	patientH   *patientHandler.Handler
	encounterH *encounterHandler.Handler
	webhookH   *webhookHandler.Handler
	h          *handler.Handler
	metrics    *metrics.Metrics
	registry   *prometheus.Registry
}

func NewRouter(
	config Config,
	patientH *patientHandler.Handler,
	encounterH *encounterHandler.Handler,
	webhookH *webhookHandler.Handler,
	h *handler.Handler,
	m *metrics.Metrics,
	registry *prometheus.Registry,
	logger zerolog.Logger,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:     engine,
		patientH:   patientH,
		encounterH: encounterH,
		webhookH:   webhookH,
		h:          h,
		metrics:    m,
		registry:   registry,
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(config.CORS),
		r.metricsMiddleware(),
	)

	if config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return r
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Setup registers all routes. The root-level paths are the documented demo
// surface; the /api/v1 group carries the equivalent REST aliases. Both
// families share one handler per operation.
func (r *Router) Setup() {
	r.engine.GET("/health", r.h.HealthCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))

	r.engine.GET("/", r.patientH.ListPatients)
	r.engine.GET("/dashboard/:id", r.patientH.Dashboard)
	r.engine.POST("/create-patient", r.patientH.CreatePatient)
	r.engine.POST("/create-encounter", r.encounterH.CreateEncounter)
	r.engine.POST("/webhook", r.webhookH.Receive)

	api := r.engine.Group("/api/v1")
	r.patientH.RegisterRoutes(api)
	r.encounterH.RegisterRoutes(api)
	r.webhookH.RegisterRoutes(api)
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		r.metrics.RequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		r.metrics.RequestTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
