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

// CategoryRepository is an in-memory implementation of domain.CategoryRepository
type CategoryRepository struct {
	store  *Store
	tracer trace.Tracer
	logger *slog.Logger
}

// NewCategoryRepository creates a new in-memory category repository
func NewCategoryRepository(store *Store, tracer trace.Tracer, logger *slog.Logger) *CategoryRepository {
	return &CategoryRepository{
		store:  store,
		tracer: tracer,
		logger: logger,
	}
}

// Create stores a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("category.id", category.ID),
		attribute.String("category.name", category.Name),
	)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.categoryNameTaken(category.Name, "") {
		err := domain.CategoryExistsError(category.Name)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Duplicate category name")
		return err
	}

	stored := *category
	r.store.categories[category.ID] = &stored

	r.logger.InfoContext(ctx, "Category created in repository",
		slog.String("category_id", category.ID),
		slog.String("category_name", category.Name),
	)

	span.SetStatus(codes.Ok, "Category created successfully")
	return nil
}

// FindAll retrieves all categories ordered by creation time
func (r *CategoryRepository) FindAll(ctx context.Context) ([]*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.FindAll")
	defer span.End()

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	categories := make([]*domain.Category, 0, len(r.store.categories))
	for _, c := range r.store.categories {
		cc := *c
		categories = append(categories, &cc)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].CreatedAt.Equal(categories[j].CreatedAt) {
			return categories[i].ID < categories[j].ID
		}
		return categories[i].CreatedAt.Before(categories[j].CreatedAt)
	})

	span.SetAttributes(attribute.Int("category.count", len(categories)))
	r.logger.DebugContext(ctx, "Categories retrieved from repository",
		slog.Int("count", len(categories)),
	)

	span.SetStatus(codes.Ok, "Categories retrieved successfully")
	return categories, nil
}

// FindByID retrieves a category by ID
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	_, span := r.tracer.Start(ctx, "CategoryRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", id))

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	category, exists := r.store.categories[id]
	if !exists {
		span.RecordError(domain.ErrCategoryNotFound)
		span.SetStatus(codes.Error, "Category not found")
		return nil, domain.ErrCategoryNotFound
	}

	out := *category
	span.SetStatus(codes.Ok, "Category found")
	return &out, nil
}

// Update applies mutate to the stored category
func (r *CategoryRepository) Update(ctx context.Context, id string, mutate func(*domain.Category) error) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", id))

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, exists := r.store.categories[id]
	if !exists {
		span.RecordError(domain.ErrCategoryNotFound)
		span.SetStatus(codes.Error, "Category not found")
		return nil, domain.ErrCategoryNotFound
	}

	next := *current
	if err := mutate(&next); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Category mutation rejected")
		return nil, err
	}
	if r.store.categoryNameTaken(next.Name, id) {
		err := domain.CategoryExistsError(next.Name)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Duplicate category name")
		return nil, err
	}

	r.store.categories[id] = &next

	r.logger.InfoContext(ctx, "Category updated in repository",
		slog.String("category_id", id),
	)

	out := next
	span.SetStatus(codes.Ok, "Category updated successfully")
	return &out, nil
}

// Delete removes a category that no product references
func (r *CategoryRepository) Delete(ctx context.Context, id string) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", id))

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.categoryReferenced(id) {
		span.RecordError(domain.ErrCategoryInUse)
		span.SetStatus(codes.Error, "Category in use")
		return nil, domain.ErrCategoryInUse
	}

	category, exists := r.store.categories[id]
	if !exists {
		span.RecordError(domain.ErrCategoryNotFound)
		span.SetStatus(codes.Error, "Category not found")
		return nil, domain.ErrCategoryNotFound
	}
	delete(r.store.categories, id)

	r.logger.InfoContext(ctx, "Category deleted from repository",
		slog.String("category_id", id),
	)

	span.SetStatus(codes.Ok, "Category deleted successfully")
	return category, nil
}
