package mongostore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/mrops-br/catalog-api/internal/infrastructure/repository/repotest"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// TestRepositoryContract needs a replica set, e.g.
// MONGO_TEST_URI=mongodb://localhost:27017/?replicaSet=rs0
func TestRepositoryContract(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")

	n := 0
	repotest.Run(t, func(t *testing.T) (domain.CategoryRepository, domain.ProductRepository) {
		n++
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		database := fmt.Sprintf("catalog_test_%d_%d", time.Now().UnixNano(), n)
		store, err := Open(ctx, uri, database, logger)
		require.NoError(t, err)
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = store.client.Database(database).Drop(ctx)
			_ = store.Close(ctx)
		})

		return NewCategoryRepository(store, tracer, logger), NewProductRepository(store, tracer, logger)
	})
}
