package config

import (
	"context"
	"fmt"

	"synca/jobs"
	middlewares "synca/middleware"
	"synca/repository"
	"synca/repository/memstore"
	"synca/routes"
	"synca/services"
	"synca/services/logger"
	"synca/services/notification"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// App các thành phần đã khởi tạo của server
type App struct {
	Router   *gin.Engine
	Melody   *melody.Melody
	Cron     *cron.Cron
	Services *services.Services
	Logger   *logger.ZapLogger

	redis *redis.Client
}

// InitApp dựng store, cache, lưu trữ ảnh, service, route và cron theo cấu hình
func InitApp(ctx context.Context, cfg *Config) (*App, error) {
	log := logger.NewZapLogger(cfg.Env, logger.ParseLevel(cfg.LogLevel))

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(cors.New(corsConfig(cfg)))
	router.SetTrustedProxies(nil)
	router.Use(middlewares.ErrorHandler())

	app := &App{Router: router, Logger: log}

	store, err := initStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	var cache services.Cache
	app.redis, err = ConnectRedis(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	if app.redis != nil {
		cache = services.NewRedisCache(app.redis)
		log.Info("Redis cache connected at %s", cfg.RedisAddr)
	} else {
		cache = services.NewMemoryCache()
		log.Info("REDIS_ADDR not set, using in-process cache")
	}

	var images services.ImageStore = services.DisabledImageStore{}
	if cfg.CloudinaryURL != "" {
		cld, err := services.NewCloudinaryStore(cfg.CloudinaryURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
		}
		images = cld
	} else {
		log.Info("CLOUDINARY_URL not set, image uploads disabled")
	}

	app.Melody = melody.New()
	app.Services = services.NewServices(services.Options{
		Store:  store,
		Cache:  cache,
		Images: images,
		Pusher: notification.NewMelodyService(app.Melody),
		Tokens: services.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL),
		Logger: log,
		Clock:  services.SystemClock(cfg.Location),
	})

	routes.SetupRoutes(router, app.Services, app.Melody)

	app.Cron = cron.New(cron.WithLocation(cfg.Location))
	if err := jobs.InitCronJobs(app.Cron, cfg.StatusSweepCron, app.Services.Bookings, log); err != nil {
		return nil, fmt.Errorf("failed to initialize cron jobs: %w", err)
	}

	log.Info("All components initialized successfully")
	return app, nil
}

// Close dừng cron, đóng websocket và redis
func (a *App) Close() {
	if a.Cron != nil {
		<-a.Cron.Stop().Done()
	}
	if a.Melody != nil {
		a.Melody.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.Logger != nil {
		a.Logger.Sync()
	}
}

func initStore(ctx context.Context, cfg *Config, log logger.Logger) (repository.Store, error) {
	if cfg.Store == "memory" {
		log.Info("Using in-memory store, data is lost on restart")
		return memstore.New(), nil
	}
	db, err := ConnectDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("Successfully connected to db")
	return repository.NewGormStore(db), nil
}

func corsConfig(cfg *Config) cors.Config {
	c := cors.DefaultConfig()
	c.AddAllowHeaders("Authorization", middlewares.SessionHeader)
	c.AddExposeHeaders(middlewares.SessionHeader)
	c.AllowCredentials = true
	if len(cfg.CORSOrigins) == 0 {
		c.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		c.AllowOrigins = cfg.CORSOrigins
	}
	return c
}
