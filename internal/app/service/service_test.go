package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/mrops-br/catalog-api/internal/infrastructure/repository/memory"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func newTestServices(t *testing.T) (*CategoryService, *ProductService) {
	t.Helper()
	store := memory.NewStore()
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	meter := metricnoop.NewMeterProvider().Meter("test")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	categories := NewCategoryService(memory.NewCategoryRepository(store, tracer, logger), tracer, meter, logger)
	products := NewProductService(memory.NewProductRepository(store, tracer, logger), tracer, meter, logger)
	return categories, products
}
