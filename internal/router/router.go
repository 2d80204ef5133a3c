package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hms-api/internal/handler/account"
	"github.com/jwalitptl/hms-api/internal/handler/appointment"
	"github.com/jwalitptl/hms-api/internal/handler/auth"
	"github.com/jwalitptl/hms-api/internal/handler/doctor"
	"github.com/jwalitptl/hms-api/internal/handler/health"
	"github.com/jwalitptl/hms-api/internal/handler/patient"
	prometheusHandler "github.com/jwalitptl/hms-api/internal/handler/prometheus"
	"github.com/jwalitptl/hms-api/internal/handler/role"
	"github.com/jwalitptl/hms-api/internal/middleware"
)

type RouterConfig struct {
	LoginRate      rate.Limit
	LoginBurst     int
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	CORSConfig     middleware.CORSConfig
	SecurityConfig middleware.SecurityConfig
	MetricsPrefix  string
}

// Handlers groups the route handlers mounted under /api/v1.
type Handlers struct {
	Auth        *auth.Handler
	Account     *account.Handler
	Appointment *appointment.Handler
	Doctor      *doctor.Handler
	Patient     *patient.Handler
	Role        *role.Handler
	Health      *health.Handler
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	limiter  *middleware.RateLimiter
	metrics  *prometheusHandler.Handler
}

func NewRouter(
	log zerolog.Logger,
	auth *middleware.AuthMiddleware,
	handlers Handlers,
	registry *prometheus.Registry,
	config RouterConfig,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		limiter: middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.LoginRate,
			Burst: config.LoginBurst,
		}),
		metrics: prometheusHandler.New(registry, config.MetricsPrefix),
	}

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = config.MaxBodyBytes
	}
	timeout := middleware.DefaultTimeoutConfig()
	if config.RequestTimeout > 0 {
		timeout.Duration = config.RequestTimeout
	}

	// RequestID runs first so every log line and error carries the id.
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(),
		r.metrics.Middleware(),
		middleware.SecurityHeaders(config.SecurityConfig),
		middleware.CORS(config.CORSConfig),
		middleware.SizeLimit(sizeLimit),
		middleware.Timeout(timeout),
	)

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group("/api/v1")
	r.handlers.Health.RegisterRoutes(api)

	r.handlers.Auth.RegisterRoutes(api, r.auth, r.limiter.RateLimit())
	r.handlers.Account.RegisterRoutes(api, r.auth)
	r.handlers.Appointment.RegisterRoutes(api, r.auth)
	r.handlers.Doctor.RegisterRoutes(api, r.auth)
	r.handlers.Patient.RegisterRoutes(api, r.auth)
	r.handlers.Role.RegisterRoutes(api, r.auth)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
