package memory

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProductRepository is an in-memory implementation of domain.ProductRepository
type ProductRepository struct {
	store  *Store
	tracer trace.Tracer
	logger *slog.Logger
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(store *Store, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		store:  store,
		tracer: tracer,
		logger: logger,
	}
}

// Create stores a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.id", product.ID),
		attribute.String("product.name", product.Name),
		attribute.String("product.category_id", product.CategoryID),
	)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	category, exists := r.store.categories[product.CategoryID]
	if !exists {
		span.RecordError(domain.ErrUnknownCategory)
		span.SetStatus(codes.Error, "Unknown category")
		return domain.ErrUnknownCategory
	}

	stored := *product
	stored.Category = nil
	r.store.products[product.ID] = &stored

	cc := *category
	product.Category = &cc

	r.logger.InfoContext(ctx, "Product created in repository",
		slog.String("product_id", product.ID),
		slog.String("product_name", product.Name),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return nil
}

// Find retrieves the products matching filter ordered by creation time
func (r *ProductRepository) Find(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Find")
	defer span.End()

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	products := make([]*domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		if filter.Matches(p) {
			products = append(products, r.store.expand(p))
		}
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].ID < products[j].ID
		}
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.DebugContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	product, exists := r.store.products[id]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		r.logger.WarnContext(ctx, "Product not found",
			slog.String("product_id", id),
		)
		return nil, domain.ErrProductNotFound
	}

	span.SetStatus(codes.Ok, "Product found")
	return r.store.expand(product), nil
}

// Update applies mutate to the stored product
func (r *ProductRepository) Update(ctx context.Context, id string, mutate func(*domain.Product) error) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, exists := r.store.products[id]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		return nil, domain.ErrProductNotFound
	}

	next := r.store.expand(current)
	if err := mutate(next); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Product mutation rejected")
		return nil, err
	}

	stored := *next
	stored.Category = nil
	r.store.products[id] = &stored

	r.logger.InfoContext(ctx, "Product updated in repository",
		slog.String("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return r.store.expand(&stored), nil
}

// Delete removes a product by ID
func (r *ProductRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, exists := r.store.products[id]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		return nil, domain.ErrProductNotFound
	}
	out := r.store.expand(product)
	delete(r.store.products, id)

	r.logger.InfoContext(ctx, "Product deleted from repository",
		slog.String("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return out, nil
}
