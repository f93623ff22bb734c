package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository stores categories in the categories table
type CategoryRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
	logger *slog.Logger
}

// NewCategoryRepository creates a new gorm category repository
func NewCategoryRepository(db *gorm.DB, tracer trace.Tracer, logger *slog.Logger) *CategoryRepository {
	return &CategoryRepository{db: db, tracer: tracer, logger: logger}
}

// Create inserts a category. Name uniqueness is enforced by a unique index.
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("category.id", category.ID),
		attribute.String("category.name", category.Name),
	)

	if err := r.db.WithContext(ctx).Create(newCategoryModel(category)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = domain.CategoryExistsError(category.Name)
		} else {
			err = fmt.Errorf("create category: %w", err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create category")
		return err
	}

	r.logger.InfoContext(ctx, "Category created in database",
		slog.String("category_id", category.ID),
	)
	span.SetStatus(codes.Ok, "Category created successfully")
	return nil
}

// FindAll lists every category ordered by creation time
func (r *CategoryRepository) FindAll(ctx context.Context) ([]*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.FindAll")
	defer span.End()

	var models []categoryModel
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&models).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list categories")
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories := make([]*domain.Category, len(models))
	for i := range models {
		categories[i] = models[i].toDomain()
	}

	span.SetAttributes(attribute.Int("category.count", len(categories)))
	span.SetStatus(codes.Ok, "Categories retrieved successfully")
	return categories, nil
}

// FindByID loads one category
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", id))

	m, err := findCategory(r.db.WithContext(ctx), id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to find category")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Category found")
	return m.toDomain(), nil
}

// Update applies mutate inside a transaction
func (r *CategoryRepository) Update(ctx context.Context, id string, mutate func(*domain.Category) error) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", id))

	var updated *domain.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findCategory(forUpdate(tx), id)
		if err != nil {
			return err
		}

		category := m.toDomain()
		if err := mutate(category); err != nil {
			return err
		}

		if err := tx.Save(newCategoryModel(category)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.CategoryExistsError(category.Name)
			}
			return fmt.Errorf("update category: %w", err)
		}
		updated = category
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update category")
		return nil, err
	}

	r.logger.InfoContext(ctx, "Category updated in database",
		slog.String("category_id", id),
	)
	span.SetStatus(codes.Ok, "Category updated successfully")
	return updated, nil
}

// Delete removes a category without products. The product count and the
// delete share a transaction and the products foreign key is RESTRICT, so
// a product inserted concurrently makes the delete fail instead of leaving
// a dangling reference.
func (r *CategoryRepository) Delete(ctx context.Context, id string) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", id))

	var deleted *domain.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&productModel{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("count category products: %w", err)
		}
		if count > 0 {
			return domain.ErrCategoryInUse
		}

		m, err := findCategory(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Delete(m).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return domain.ErrCategoryInUse
			}
			return fmt.Errorf("delete category: %w", err)
		}
		deleted = m.toDomain()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete category")
		return nil, err
	}

	r.logger.InfoContext(ctx, "Category deleted from database",
		slog.String("category_id", id),
	)
	span.SetStatus(codes.Ok, "Category deleted successfully")
	return deleted, nil
}

func findCategory(db *gorm.DB, id string) (*categoryModel, error) {
	var m categoryModel
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &m, nil
}

// forUpdate adds a row lock where the dialect has one. SQLite serialises
// writers on its own.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == DriverPostgres {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
