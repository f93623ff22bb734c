package service

import (
	"context"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CategoryService handles category use cases
type CategoryService struct {
	repo       domain.CategoryRepository
	tracer     trace.Tracer
	logger     *slog.Logger
	operations operations
}

// NewCategoryService creates a new category service
func NewCategoryService(
	repo domain.CategoryRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		repo:       repo,
		tracer:     tracer,
		logger:     logger,
		operations: newOperations(meter, "category"),
	}
}

// CreateCategory creates a new category. A nil request means the caller
// sent no body at all.
func (s *CategoryService) CreateCategory(ctx context.Context, req *dto.CategoryRequest) (resp *dto.CategoryResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "CategoryService.CreateCategory")
	defer span.End()
	defer func() { s.operations.record(ctx, "create", err) }()

	if req == nil {
		return nil, fail(span, domain.ErrCategoryDetailsRequired, "Validation failed")
	}

	span.SetAttributes(attribute.String("category.name", req.Name))

	category, err := domain.NewCategory(req.Name)
	if err != nil {
		return nil, fail(span, err, "Validation failed")
	}

	if err := s.repo.Create(ctx, category); err != nil {
		s.logger.WarnContext(ctx, "Failed to store category",
			slog.String("name", req.Name),
			slog.String("error", err.Error()),
		)
		return nil, fail(span, err, "Failed to store category")
	}

	s.logger.InfoContext(ctx, "Category created successfully",
		slog.String("category_id", category.ID),
	)

	span.SetStatus(codes.Ok, "Category created successfully")
	return dto.ToCategoryResponse(category), nil
}

// ListCategories retrieves all categories
func (s *CategoryService) ListCategories(ctx context.Context) (resp []*dto.CategoryResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "CategoryService.ListCategories")
	defer span.End()
	defer func() { s.operations.record(ctx, "list", err) }()

	categories, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list categories",
			slog.String("error", err.Error()),
		)
		return nil, fail(span, err, "Failed to retrieve categories")
	}

	span.SetAttributes(attribute.Int("category.count", len(categories)))
	span.SetStatus(codes.Ok, "Categories listed successfully")
	return dto.ToCategoryResponseList(categories), nil
}

// UpdateCategory renames the category identified by id
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, req *dto.CategoryRequest) (resp *dto.CategoryResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "CategoryService.UpdateCategory")
	defer span.End()
	defer func() { s.operations.record(ctx, "update", err) }()

	span.SetAttributes(attribute.String("category.id", id))

	if !domain.IsValidID(id) {
		return nil, fail(span, domain.ErrInvalidCategoryID, "Validation failed")
	}
	if req == nil || req.Name == "" {
		return nil, fail(span, domain.ErrCategoryNameRequired, "Validation failed")
	}

	category, err := s.repo.Update(ctx, id, func(c *domain.Category) error {
		return c.Rename(req.Name)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to update category",
			slog.String("category_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fail(span, err, "Failed to update category")
	}

	s.logger.InfoContext(ctx, "Category updated successfully",
		slog.String("category_id", id),
	)

	span.SetStatus(codes.Ok, "Category updated successfully")
	return dto.ToCategoryResponse(category), nil
}

// DeleteCategory removes a category that no product references
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) (resp *dto.CategoryResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "CategoryService.DeleteCategory")
	defer span.End()
	defer func() { s.operations.record(ctx, "delete", err) }()

	span.SetAttributes(attribute.String("category.id", id))

	if !domain.IsValidID(id) {
		return nil, fail(span, domain.ErrInvalidCategoryID, "Validation failed")
	}

	category, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to delete category",
			slog.String("category_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fail(span, err, "Failed to delete category")
	}

	s.logger.InfoContext(ctx, "Category deleted successfully",
		slog.String("category_id", id),
	)

	span.SetStatus(codes.Ok, "Category deleted successfully")
	return dto.ToCategoryResponse(category), nil
}
