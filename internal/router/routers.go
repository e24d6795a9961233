package router

import (
	"github.com/Payphone-Digital/vidtube/config"
	"github.com/Payphone-Digital/vidtube/internal/handler"
	"github.com/Payphone-Digital/vidtube/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	videoHandler        *handler.VideoHandler
	subscriptionHandler *handler.SubscriptionHandler
	healthHandler       *handler.HealthHandler
	cacheHandler        *handler.CacheHandler

	validMw *middleware.ValidationMiddleware
	jwtMw   *middleware.JWTMiddleware
	Config  *config.Config
}

type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Video        *handler.VideoHandler
	Subscription *handler.SubscriptionHandler
	Health       *handler.HealthHandler
	Cache        *handler.CacheHandler
}

func NewRouter(
	handlers Handlers,
	validMw *middleware.ValidationMiddleware,
	jwtMw *middleware.JWTMiddleware,
	config *config.Config,
) *Router {
	return &Router{
		authHandler:         handlers.Auth,
		userHandler:         handlers.User,
		videoHandler:        handlers.Video,
		subscriptionHandler: handlers.Subscription,
		healthHandler:       handlers.Health,
		cacheHandler:        handlers.Cache,

		validMw: validMw,
		jwtMw:   jwtMw,
		Config:  config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = 32 << 20

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.SecurityLoggingMiddleware())
	router.Use(middleware.CORS(r.Config.App.CORSOrigin))
	router.Use(middleware.DefaultContextMiddleware("api", r.Config.App.Timeout, r.Config.Upload.Timeout)...)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.BasicHealth)
		api.GET("/health/ready", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(r.Config.RateLimit.RPS, r.Config.RateLimit.Burst))

			r.authRoutes(v1)
			r.userRoutes(v1)
			r.videoRoutes(v1)
			r.subscriptionRoutes(v1)
			r.cacheRoutes(v1)
		}
	}

	return router
}

// cacheRoutes defines cache management routes
func (r *Router) cacheRoutes(rg *gin.RouterGroup) {
	cache := rg.Group("/cache")
	cache.Use(r.jwtMw.RequireAuth())
	{
		cache.GET("/stats", r.cacheHandler.GetCacheStats)
		cache.DELETE("/videos", r.cacheHandler.PurgeVideos)
		cache.DELETE("/videos/:videoId", r.cacheHandler.InvalidateVideo)
	}
}
