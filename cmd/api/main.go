package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/config"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/db"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/handlers"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/logger"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/services/preview"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/services/submission"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/storage"
	"github.com/Windi-Fikriyansyah/storefront_be/internal/utils"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store storage.Store
	switch cfg.StorageBackend {
	case config.BackendMemory:
		zl.Warn("using in-memory storage, data is lost on restart")
		store = storage.NewMemoryStore(zl)
	default:
		gdb, err := db.Connect(cfg.DBDSN, zl)
		if err != nil {
			zl.Fatal("database connect failed", zap.Error(err))
		}
		if err := db.Migrate(gdb); err != nil {
			zl.Fatal("migrate failed", zap.Error(err))
		}
		store = storage.NewGormStore(gdb, zl)
	}

	rdb := realtime.NewRedis(realtime.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, zl)
	if err := rdb.Ping(ctx).Err(); err != nil {
		zl.Fatal("redis not reachable", zap.Error(err))
	}
	defer rdb.Close()

	hub := realtime.NewHub(zl)
	go hub.Run(ctx)
	go func() {
		if err := realtime.Bridge(ctx, rdb, hub, zl); err != nil {
			zl.Error("notification bridge stopped", zap.Error(err))
		}
	}()

	ids, err := utils.NewIDCodec(cfg.IDEncryptKey)
	if err != nil {
		zl.Fatal("id codec", zap.Error(err))
	}

	pub := realtime.NewRedisPublisher(rdb)
	fin := submission.NewFinalizer(store, pub, zl)
	productH := handlers.NewProductHandler(store.Products(), fin, ids, zl)

	router := &handlers.Router{
		JWTSecret: cfg.JWTSecret,
		Auth: &handlers.AuthHandler{
			Users:        store.Users(),
			JWTSecret:    cfg.JWTSecret,
			Expires:      cfg.JWTExpiresMin,
			CookieSecure: cfg.CookieSecure,
			Log:          zl,
		},
		Google: &handlers.GoogleOAuthHandler{
			Users:           store.Users(),
			JWTSecret:       cfg.JWTSecret,
			Expires:         cfg.JWTExpiresMin,
			CookieSecure:    cfg.CookieSecure,
			GoogleClientID:  cfg.GoogleClientID,
			GoogleSecret:    cfg.GoogleSecret,
			GoogleRedirect:  cfg.GoogleRedirect,
			FrontendBaseURL: cfg.FrontendBaseURL,
			Log:             zl,
		},
		Categories: handlers.NewCategoryHandler(store.Products()),
		Products:   productH,
		Wizard: &handlers.WizardHandler{
			Store:     store,
			Finalizer: fin,
			Renderer:  preview.NewRenderer(store.Drafts(), zl),
			Pub:       pub,
			Products:  productH,
			Log:       zl,
		},
		Notifications: &handlers.NotificationHandler{Hub: hub},
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(zl),
	})
	app.Use(middleware.RequestID(), middleware.Logger(zl), middleware.Recovery(zl))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders:    "Content-Length, X-Request-ID",
		AllowCredentials: true,
	}))

	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	router.Mount(app)

	go func() {
		<-ctx.Done()
		zl.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zl.Error("shutdown", zap.Error(err))
		}
	}()

	zl.Info("listening", zap.String("port", cfg.AppPort), zap.String("storage", cfg.StorageBackend))
	if err := app.Listen(":" + cfg.AppPort); err != nil && !errors.Is(err, context.Canceled) {
		zl.Fatal("listen", zap.Error(err))
	}
}
