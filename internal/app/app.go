package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravishankar/satify-backend/internal/config"
	"github.com/gravishankar/satify-backend/internal/controller"
	"github.com/gravishankar/satify-backend/internal/repository"
	"github.com/gravishankar/satify-backend/internal/service"
	"github.com/gravishankar/satify-backend/internal/util"
	"github.com/gravishankar/satify-backend/pkg/database"
	"github.com/gravishankar/satify-backend/pkg/logger"
	"github.com/gravishankar/satify-backend/pkg/monitoring"
	"github.com/gravishankar/satify-backend/pkg/security"
	"github.com/gravishankar/satify-backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Store           service.ContentStore
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user      *repository.UserRepository
	session   *repository.SessionRepository
	rejection *repository.RejectionRepository
}

type services struct {
	auth    *service.AuthService
	draft   *service.DraftService
	lesson  *service.LessonService
	publish *service.PublishService
	session *service.SessionService
	asset   *service.AssetService
}

type controllers struct {
	auth    *controller.AuthController
	lesson  *controller.LessonController
	review  *controller.ReviewController
	session *controller.SessionController
	asset   *controller.AssetController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// OnConfigReload is invoked by the config watcher when the file on disk
// changes. Components that can pick up new settings at runtime subscribe
// through RegisterConfigCallback.
func (a *App) OnConfigReload(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		session:   repository.NewSessionRepository(db),
		rejection: repository.NewRejectionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, store service.ContentStore, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.draft = service.NewDraftService(store, rdb)
	s.lesson = service.NewLessonService(store, rdb)
	s.publish = service.NewPublishService(store, s.lesson, s.draft, repos.rejection)
	s.session = service.NewSessionService(repos.session)
	s.asset = service.NewAssetService(cfg)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client, store service.ContentStore) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		lesson:  controller.NewLessonController(s.lesson, s.draft),
		review:  controller.NewReviewController(s.publish),
		session: controller.NewSessionController(s.session),
		asset:   controller.NewAssetController(s.asset),
		health:  controller.NewHealthController(db, rdb, store),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks keeps the manifest cache warm so lesson listings
// do not pay a store round trip after the cache TTL expires.
func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := s.lesson.Manifest(ctx); err != nil {
				logger.Log.Warn("manifest refresh failed", zap.Error(err))
			}
			cancel()
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	store, err := service.NewContentStore(&cfg.ContentStore)
	if err != nil {
		logger.Log.Fatal("Failed to initialize content store", zap.Error(err))
		log.Fatalf("Failed to initialize content store: %v", err)
	}
	logger.Log.Info("Content store ready", zap.String("backend", cfg.ContentStore.Type))

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Store:  store,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, store, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb, store)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("satify-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Assets.Type == util.StorageLocal {
		if _, err := os.Stat(cfg.Assets.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Assets.LocalPath, os.ModePerm)
		}
		router.Static("/uploads", cfg.Assets.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
