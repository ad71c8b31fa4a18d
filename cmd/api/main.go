package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"pdfviewer/docs"
	"pdfviewer/internal/config"
	"pdfviewer/internal/database"
	"pdfviewer/internal/database/migration"
	"pdfviewer/internal/events"
	"pdfviewer/internal/handle"
	handlers "pdfviewer/internal/http/handler"
	"pdfviewer/internal/http/middleware"
	"pdfviewer/internal/logging"
	"pdfviewer/internal/otel"
	"pdfviewer/internal/render"
	"pdfviewer/internal/repository/postgres"
	"pdfviewer/internal/service"
	"pdfviewer/internal/source"
	"pdfviewer/internal/storage"
	"pdfviewer/internal/viewer"
)

// @title PDF Viewer API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.Stdout(cfg.Location(), "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, cfg.Tracing, logger.With("otel"))
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger.With("migration"), cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handles, err := handle.NewRegistry(reg)
	if err != nil {
		log.Fatalf("failed to register handle metrics: %v", err)
	}
	viewerMetrics, err := viewer.NewMetrics(reg)
	if err != nil {
		log.Fatalf("failed to register viewer metrics: %v", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}

	pages, err := newSource(cfg, objStore)
	if err != nil {
		log.Fatalf("failed to initialize page source: %v", err)
	}

	publisher, closeEvents, err := newPublisher(cfg.NATS)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	defer closeEvents()

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	docSvc := service.NewDocumentService(objStore, docRepo, render.NewFitz(), service.RenderOptions{
		DPI:            cfg.Render.DPI,
		ThumbnailWidth: cfg.Render.ThumbnailWidth,
	})

	sessions, err := viewer.NewManager(docSvc, viewer.ManagerOptions{
		Source:       source.NewShared(pages, cfg.Viewer.FetchTimeout()),
		Handles:      handles,
		Publisher:    publisher,
		Metrics:      viewerMetrics,
		Log:          logger.With("viewer"),
		FetchTimeout: cfg.Viewer.FetchTimeout(),
		IdleTTL:      time.Duration(cfg.Viewer.SessionIdleTTLSec) * time.Second,
	})
	if err != nil {
		log.Fatalf("failed to initialize viewer: %v", err)
	}
	go sessions.Run(ctx, time.Duration(cfg.Viewer.ReapIntervalSec)*time.Second)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger.With("http")))
	app.Use(promMiddleware.Handler())

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:        db,
		Documents: docSvc,
		Sessions:  sessions,
		Handles:   handles,
		Gatherer:  reg,
	})

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

	go func() {
		<-ctx.Done()
		logger.Info("shutdown_started", nil)
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sessions.Shutdown(sctx); err != nil {
			logger.Error("session_shutdown_failed", err, nil)
		}
		_ = app.ShutdownWithContext(sctx)
	}()

	addr := ":" + cfg.Port
	logger.Info("server_starting", logging.Fields{"addr": addr, "source_backend": cfg.Source.Backend})

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// newSource selects the page source backing viewer sessions.
func newSource(cfg *config.AppConfig, store storage.Storage) (source.Source, error) {
	switch cfg.Source.Backend {
	case "storage", "":
		return source.NewStorage(store, time.Duration(cfg.Source.ThumbnailURLExpirySec)*time.Second), nil
	case "http":
		return source.NewHTTP(source.HTTPOptions{
			BaseURL: cfg.Source.HTTPBaseURL,
			Rate:    cfg.Source.HTTPRate,
			Burst:   cfg.Source.HTTPBurst,
		})
	case "placeholder":
		return source.NewPlaceholder(300 * time.Millisecond), nil
	default:
		return nil, fmt.Errorf("unknown source backend %q", cfg.Source.Backend)
	}
}

// newPublisher connects to NATS when configured and falls back to a no-op publisher.
func newPublisher(cfg config.NATSConfig) (events.Publisher, func(), error) {
	if cfg.URL == "" {
		return events.Noop{}, func() {}, nil
	}
	nc, err := nats.Connect(cfg.URL, nats.Name("pdfviewer"))
	if err != nil {
		return nil, nil, err
	}
	return events.NewNATS(nc, cfg.SubjectPrefix), func() { _ = nc.Drain() }, nil
}
