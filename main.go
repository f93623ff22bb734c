package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrops-br/catalog-api/internal/app/service"
	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/mrops-br/catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/catalog-api/internal/infrastructure/repository/gormstore"
	"github.com/mrops-br/catalog-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/catalog-api/internal/infrastructure/repository/mongostore"
	"github.com/mrops-br/catalog-api/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var telem *telemetry.Telemetry
	if cfg.OTLP.Enabled {
		telem, err = telemetry.NewTelemetry(&cfg.OTLP)
	} else {
		telem, err = telemetry.NewNoOpTelemetry(&cfg.OTLP)
	}
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	runErr := run(cfg, telem)
	if runErr != nil {
		telem.Logger.Error("Catalog API failed", slog.String("error", runErr.Error()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := telem.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down telemetry: %v", err)
	}

	if runErr != nil {
		shutdownCancel()
		os.Exit(1)
	}
}

// run serves until a signal arrives or the server fails. The store is
// closed before it returns.
func run(cfg *config.Config, telem *telemetry.Telemetry) error {
	tracer := telem.TracerProvider.Tracer("catalog-api")
	meter := telem.MeterProvider.Meter("catalog-api")
	logger := telem.Logger

	logger.Info("Starting Catalog API", slog.String("store.driver", cfg.Store.Driver))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, err := openRepositories(ctx, &cfg.Store, tracer, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := repos.close(closeCtx); err != nil {
			logger.Error("Failed to close store", slog.String("error", err.Error()))
		}
	}()

	categoryService := service.NewCategoryService(repos.categories, tracer, meter, logger)
	productService := service.NewProductService(repos.products, tracer, meter, logger)

	server := http.NewServer(
		&cfg.Server,
		handler.NewCategoryHandler(categoryService, logger),
		handler.NewProductHandler(productService, logger),
		telem.MeterProvider,
		logger,
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

// repositories bundles the store chosen by STORE_DRIVER with its cleanup.
type repositories struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository
	close      func(context.Context) error
}

func openRepositories(ctx context.Context, cfg *config.StoreConfig, tracer trace.Tracer, logger *slog.Logger) (*repositories, error) {
	switch cfg.Driver {
	case "memory":
		store := memory.NewStore()
		return &repositories{
			categories: memory.NewCategoryRepository(store, tracer, logger),
			products:   memory.NewProductRepository(store, tracer, logger),
			close:      func(context.Context) error { return nil },
		}, nil

	case gormstore.DriverSQLite, gormstore.DriverPostgres:
		db, err := gormstore.Open(cfg.Driver, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql handle: %w", err)
		}
		return &repositories{
			categories: gormstore.NewCategoryRepository(db, tracer, logger),
			products:   gormstore.NewProductRepository(db, tracer, logger),
			close:      func(context.Context) error { return sqlDB.Close() },
		}, nil

	case "mongo":
		connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
		defer connectCancel()
		store, err := mongostore.Open(connectCtx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, err
		}
		return &repositories{
			categories: mongostore.NewCategoryRepository(store, tracer, logger),
			products:   mongostore.NewProductRepository(store, tracer, logger),
			close:      store.Close,
		}, nil
	}

	return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
}
