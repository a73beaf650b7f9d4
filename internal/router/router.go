package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/scheduling-api/internal/handler/appointment"
	"github.com/jwalitptl/scheduling-api/internal/handler/client"
	"github.com/jwalitptl/scheduling-api/internal/handler/clinic"
	"github.com/jwalitptl/scheduling-api/internal/handler/health"
	"github.com/jwalitptl/scheduling-api/internal/handler/integration"
	"github.com/jwalitptl/scheduling-api/internal/handler/professional"
	"github.com/jwalitptl/scheduling-api/internal/handler/prometheus"
	"github.com/jwalitptl/scheduling-api/internal/middleware"
)

// Handlers groups every route owner mounted by the router.
type Handlers struct {
	Clinic       *clinic.Handler
	Professional *professional.Handler
	Client       *client.Handler
	Appointment  *appointment.Handler
	Integration  *integration.Handler
	Health       *health.Handler
	Metrics      *prometheus.Handler
}

type RouterConfig struct {
	Mode           string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	RateLimit      rate.Limit
	RateBurst      int
	CORSConfig     middleware.CORSConfig
	// IntegrationFailOpen lets integration calls through when Redis is
	// unreachable.
	IntegrationFailOpen bool
}

type Router struct {
	engine             *gin.Engine
	handlers           Handlers
	session            *middleware.SessionAuth
	serviceToken       *middleware.ServiceToken
	integrationLimiter *middleware.RedisRateLimiter
	config             RouterConfig
}

// NewRouter builds the engine and its global middleware. The integration
// limiter is optional.
func NewRouter(
	handlers Handlers,
	session *middleware.SessionAuth,
	serviceToken *middleware.ServiceToken,
	integrationLimiter *middleware.RedisRateLimiter,
	config RouterConfig,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	engine := gin.New()

	r := &Router{
		engine:             engine,
		handlers:           handlers,
		session:            session,
		serviceToken:       serviceToken,
		integrationLimiter: integrationLimiter,
		config:             config,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Sentry(),
		middleware.Logger(),
		middleware.ErrorHandler(),
	)
	if handlers.Metrics != nil {
		engine.Use(handlers.Metrics.Middleware())
	}
	if config.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}))
	}
	engine.Use(middleware.SecurityHeaders(middleware.DefaultSecurityConfig()))
	if config.MaxBodyBytes > 0 {
		engine.Use(middleware.SizeLimit(config.MaxBodyBytes))
	}
	engine.Use(middleware.CORS(config.CORSConfig))

	if config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.setupOperational()

	api := r.engine.Group("/api/v1")
	r.setupDashboardRoutes(api)
	r.setupIntegrationRoutes(api)
}

func (r *Router) setupOperational() {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(r.engine)
	}
	if r.handlers.Metrics != nil {
		r.engine.GET("/metrics", r.handlers.Metrics.Handler())
	}
}

func (r *Router) setupDashboardRoutes(api *gin.RouterGroup) {
	dashboard := api.Group("", r.session.Authenticate())
	r.handlers.Clinic.RegisterCreate(dashboard)

	clinicScoped := dashboard.Group("/clinics/:clinicId", r.session.RequireClinic("clinicId"))
	r.handlers.Clinic.RegisterRoutes(clinicScoped)
	r.handlers.Professional.RegisterRoutes(clinicScoped)
	r.handlers.Client.RegisterRoutes(clinicScoped)
	r.handlers.Appointment.RegisterRoutes(clinicScoped)

	// Advisory lookups answer an empty list instead of 401 or 403.
	advisory := api.Group("/clinics/:clinicId", r.session.Optional())
	r.handlers.Professional.RegisterAvailability(advisory)
}

func (r *Router) setupIntegrationRoutes(api *gin.RouterGroup) {
	integrations := api.Group("", r.serviceToken.Authenticate())
	if r.integrationLimiter != nil {
		integrations.Use(r.integrationLimiter.Middleware(r.config.IntegrationFailOpen))
	}
	r.handlers.Integration.RegisterRoutes(integrations)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
