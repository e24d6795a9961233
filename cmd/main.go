package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/Payphone-Digital/vidtube/config"
	"github.com/Payphone-Digital/vidtube/internal/constants"
	"github.com/Payphone-Digital/vidtube/internal/dto"
	"github.com/Payphone-Digital/vidtube/internal/handler"
	"github.com/Payphone-Digital/vidtube/internal/middleware"
	"github.com/Payphone-Digital/vidtube/internal/repository"
	"github.com/Payphone-Digital/vidtube/internal/router"
	"github.com/Payphone-Digital/vidtube/internal/service"
	"github.com/Payphone-Digital/vidtube/pkg/database"
	"github.com/Payphone-Digital/vidtube/pkg/health"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"github.com/Payphone-Digital/vidtube/pkg/media"
	"github.com/Payphone-Digital/vidtube/pkg/pool"
	"github.com/Payphone-Digital/vidtube/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// videoCache is what both the video service and the cache admin need.
type videoCache interface {
	Get(ctx context.Context, id uint) (*dto.VideoResponse, bool)
	Set(ctx context.Context, video *dto.VideoResponse)
	Invalidate(ctx context.Context, id uint)
	InvalidateOwner(ctx context.Context, ownerID uint)
	Purge(ctx context.Context) (int, error)
	Stats(ctx context.Context) map[string]any
}

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.GetLogger()
	log.Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", constants.AppVersion),
	)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(config)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	conns := pool.NewConnectionPool(pool.DefaultPoolConfig(), log)
	defer conns.CloseAllConnections()

	store, err := media.NewStore(startupCtx, config.Media, conns)
	if err != nil {
		log.Fatal("Failed to initialize media store", zap.Error(err), zap.String("driver", config.Media.Driver))
	}
	gateway := media.NewGateway(store, media.NewFFProbe(config.Media.FFProbePath), media.Config{
		Timeout:          config.Media.Timeout,
		BreakerThreshold: config.Media.BreakerThreshold,
		BreakerTimeout:   config.Media.BreakerTimeout,
	}, log)

	monitor := health.NewMonitor(time.Minute, log)
	monitor.Register("database", true, func(ctx context.Context) error { return database.Ping(ctx, db) })
	monitor.Register("media", false, gateway.Ping)

	var cache videoCache
	if config.Redis.Enabled {
		redisClient, err := redis.NewClient(config)
		if err != nil {
			log.Warn("Redis unavailable, falling back to in-memory video cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			cache = service.NewRedisVideoCache(redisClient, config.Redis.VideoTTL)
			monitor.Register("redis", false, redisClient.Ping)
		}
	} else {
		monitor.RegisterDisabled("redis")
	}
	if cache == nil {
		memory := service.NewMemoryVideoCache(config.Redis.VideoTTL)
		defer memory.Close()
		cache = memory
	}

	monitor.Start()
	defer monitor.Stop()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	// Services
	tokenService := service.NewTokenService(userRepo, config.JWT)
	userService := service.NewUserService(userRepo, tokenService, gateway, cache)
	videoService := service.NewVideoService(videoRepo, gateway, cache)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo)

	// Handlers
	uploads := handler.NewUploads(config.Upload)
	cookies := handler.NewCookies(config.Cookie, config.JWT)

	r := router.NewRouter(
		router.Handlers{
			Auth:         handler.NewAuthHandler(userService, cookies, uploads),
			User:         handler.NewUserHandler(userService, uploads),
			Video:        handler.NewVideoHandler(videoService, uploads),
			Subscription: handler.NewSubscriptionHandler(subscriptionService),
			Health:       handler.NewHealthHandler(monitor, gateway, conns),
			Cache:        handler.NewCacheHandler(cache),
		},
		middleware.NewValidationMiddleware(),
		middleware.NewJWTMiddleware(userService),
		config,
	).SetupRoutes()

	srv := &http.Server{
		Addr:              ":" + config.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("port", config.App.Port), zap.String("host", "0.0.0.0"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err), zap.String("port", config.App.Port))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
}
