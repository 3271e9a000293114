package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasktracker/configs"
	v1 "tasktracker/internal/api/v1"
	"tasktracker/internal/cache"
	"tasktracker/internal/config"
	"tasktracker/internal/middleware"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
	myws "tasktracker/internal/websocket"
	"tasktracker/pkg/crypto"
	"tasktracker/pkg/database"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

func main() {
	cfg := configs.LoadConfig()

	// Inisialisasi logger
	logger.InitLoggers(cfg.LogDir)
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	if err := cfg.Validate(); err != nil {
		logger.ErrorLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := database.ConnectDB(cfg)
	defer db.Close()
	logger.SystemLogger.Info("Database Connected")

	if err := repository.Migrate(ctx, db); err != nil {
		logger.ErrorLogger.Fatal("Migration failed", zap.Error(err))
	}

	redisClient := database.ConnectRedis(ctx, cfg)
	defer redisClient.Close()

	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	hub := myws.NewHub()
	go hub.Run(ctx)

	opts := []service.Option{
		service.WithCache(cache.NewSummaryCache(redisClient, cfg.SummaryTTL)),
		service.WithNotifier(hub),
		service.WithLocation(cfg.Location()),
	}
	if cfg.NoteKey != "" {
		cipher, err := crypto.NewCipher(cfg.NoteKey)
		if err != nil {
			logger.ErrorLogger.Fatal("Invalid note encryption key", zap.Error(err))
		}
		opts = append(opts, service.WithNoteCipher(cipher))
	}
	svc := service.New(repository.NewPostgres(db), tokens, opts...)

	deps := config.NewDependencies(svc, tokens, hub)
	deps.DB = db
	deps.RedisClient = redisClient

	app := fiber.New(fiber.Config{ErrorHandler: middleware.FiberErrorHandler})

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: 1 * time.Minute,
	}))

	// Daftarkan route API v1
	v1.RegisterRoutes(app, deps)

	go func() {
		<-ctx.Done()
		logger.SystemLogger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.ErrorLogger.Error("Shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.AppPort)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
