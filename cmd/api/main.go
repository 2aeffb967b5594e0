package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"filehub/docs"
	"filehub/internal/config"
	"filehub/internal/database"
	"filehub/internal/database/migration"
	handlers "filehub/internal/http/handler"
	"filehub/internal/http/middleware"
	"filehub/internal/otel"
	"filehub/internal/repository/postgres"
	"filehub/internal/service"
	"filehub/internal/storage"
)

// @title Filehub API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC

	ctx := context.Background()

	// Tracing: OTLP exporter, degrades to noop when the collector is absent
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// PostgreSQL connection (otelsql-wrapped pgx, pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Repositories, event publishing and services
	fileRepo := postgres.NewFilePostgres(db)
	events := service.NewLogEventPublisher()
	policy := service.NewOwnerOrPublicPolicy()
	uploadSvc := service.NewUploadService(objStore, fileRepo, events, cfg.Quota, cfg.MinIO.Bucket)
	fileSvc := service.NewFileService(objStore, fileRepo, policy, events,
		time.Duration(cfg.Quota.PresignExpirySec)*time.Second)

	// Stale upload sweep
	janitor := service.NewUploadJanitor(objStore, fileRepo, events,
		time.Duration(cfg.Quota.JanitorIntervalSec)*time.Second,
		time.Duration(cfg.Quota.UploadExpiryMin)*time.Minute)
	janitor.Start()
	defer janitor.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// Actor middleware exposes the gateway-supplied user identity
	app.Use(middleware.Actor())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	// Prometheus request counting plus a /metrics scrape endpoint
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	promMW, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to register prometheus metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, uploadSvc, fileSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	// Shut down cleanly on SIGINT/SIGTERM so the janitor and in-flight
	// requests finish.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
