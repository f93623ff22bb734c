package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository stores products in the products table
type ProductRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
	logger *slog.Logger
}

// NewProductRepository creates a new gorm product repository
func NewProductRepository(db *gorm.DB, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{db: db, tracer: tracer, logger: logger}
}

// Create inserts a product after resolving its category in the same
// transaction. The foreign key catches a category removed in between.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.id", product.ID),
		attribute.String("product.category_id", product.CategoryID),
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := findCategory(tx, product.CategoryID)
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return domain.ErrUnknownCategory
		}
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(newProductModel(product)).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return domain.ErrUnknownCategory
			}
			return fmt.Errorf("create product: %w", err)
		}
		product.Category = category.toDomain()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create product")
		return err
	}

	r.logger.InfoContext(ctx, "Product created in database",
		slog.String("product_id", product.ID),
	)
	span.SetStatus(codes.Ok, "Product created successfully")
	return nil
}

// Find lists products matching filter with their category preloaded
func (r *ProductRepository) Find(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Find")
	defer span.End()

	query := r.db.WithContext(ctx).Preload("Category").Order("created_at, id")
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	// SQLite's LOWER folds ASCII only, so there the name is matched after
	// loading.
	matchNameInMemory := false
	if filter.Name != "" {
		if r.db.Dialector.Name() == DriverPostgres {
			query = query.Where(`name ILIKE ? ESCAPE '\'`, "%"+escapeLike(filter.Name)+"%")
		} else {
			matchNameInMemory = true
		}
	}

	var models []productModel
	if err := query.Find(&models).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list products")
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]*domain.Product, 0, len(models))
	for i := range models {
		p := models[i].toDomain()
		if matchNameInMemory && !filter.Matches(p) {
			continue
		}
		products = append(products, p)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// FindByID loads one product with its category
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	m, err := findProduct(r.db.WithContext(ctx), id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to find product")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Product found")
	return m.toDomain(), nil
}

// Update applies mutate inside a transaction and returns the reloaded row
func (r *ProductRepository) Update(ctx context.Context, id string, mutate func(*domain.Product) error) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	var updated *domain.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findProduct(forUpdate(tx), id)
		if err != nil {
			return err
		}

		product := m.toDomain()
		if err := mutate(product); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(newProductModel(product)).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return domain.ErrUnknownCategory
			}
			return fmt.Errorf("update product: %w", err)
		}

		reloaded, err := findProduct(tx, id)
		if err != nil {
			return err
		}
		updated = reloaded.toDomain()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update product")
		return nil, err
	}

	r.logger.InfoContext(ctx, "Product updated in database",
		slog.String("product_id", id),
	)
	span.SetStatus(codes.Ok, "Product updated successfully")
	return updated, nil
}

// Delete removes a product and returns it as it was
func (r *ProductRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	var deleted *domain.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findProduct(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&productModel{ID: m.ID}).Error; err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		deleted = m.toDomain()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete product")
		return nil, err
	}

	r.logger.InfoContext(ctx, "Product deleted from database",
		slog.String("product_id", id),
	)
	span.SetStatus(codes.Ok, "Product deleted successfully")
	return deleted, nil
}

func findProduct(db *gorm.DB, id string) (*productModel, error) {
	var m productModel
	if err := db.Preload("Category").Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &m, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using '\' as
// the escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
