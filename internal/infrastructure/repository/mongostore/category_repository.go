package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CategoryRepository stores categories in the categories collection
type CategoryRepository struct {
	store  *Store
	tracer trace.Tracer
	logger *slog.Logger
}

// NewCategoryRepository creates a new MongoDB category repository
func NewCategoryRepository(store *Store, tracer trace.Tracer, logger *slog.Logger) *CategoryRepository {
	return &CategoryRepository{store: store, tracer: tracer, logger: logger}
}

// Create inserts a category. The unique name index rejects duplicates.
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("category.id", category.ID),
		attribute.String("category.name", category.Name),
	)

	if _, err := r.store.categories.InsertOne(ctx, newCategoryDocument(category)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			err = domain.CategoryExistsError(category.Name)
		} else {
			err = fmt.Errorf("insert category: %w", err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create category")
		return err
	}

	r.logger.InfoContext(ctx, "Category document inserted",
		slog.String("category_id", category.ID),
	)
	span.SetStatus(codes.Ok, "Category created successfully")
	return nil
}

// FindAll lists every category ordered by creation time
func (r *CategoryRepository) FindAll(ctx context.Context) ([]*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.FindAll")
	defer span.End()

	cursor, err := r.store.categories.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list categories")
		return nil, fmt.Errorf("find categories: %w", err)
	}

	var docs []categoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to decode categories")
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	categories := make([]*domain.Category, len(docs))
	for i := range docs {
		categories[i] = docs[i].toDomain()
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

	doc, err := r.store.findCategory(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to find category")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Category found")
	return doc.toDomain(), nil
}

// Update applies mutate to the stored document inside a transaction
func (r *CategoryRepository) Update(ctx context.Context, id string, mutate func(*domain.Category) error) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", id))

	var updated *domain.Category
	err := r.store.withTransaction(ctx, func(ctx context.Context) error {
		doc, err := r.store.findCategory(ctx, id)
		if err != nil {
			return err
		}

		category := doc.toDomain()
		if err := mutate(category); err != nil {
			return err
		}

		if _, err := r.store.categories.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, newCategoryDocument(category)); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return domain.CategoryExistsError(category.Name)
			}
			return fmt.Errorf("replace category: %w", err)
		}
		updated = category
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update category")
		return nil, err
	}

	r.logger.InfoContext(ctx, "Category document updated",
		slog.String("category_id", id),
	)
	span.SetStatus(codes.Ok, "Category updated successfully")
	return updated, nil
}

// Delete removes a category without products. Product creation writes the
// category document in its own transaction, so the two conflict instead of
// interleaving.
func (r *CategoryRepository) Delete(ctx context.Context, id string) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", id))

	var deleted *domain.Category
	err := r.store.withTransaction(ctx, func(ctx context.Context) error {
		count, err := r.store.products.CountDocuments(ctx, bson.D{{Key: "category", Value: id}})
		if err != nil {
			return fmt.Errorf("count category products: %w", err)
		}
		if count > 0 {
			return domain.ErrCategoryInUse
		}

		var doc categoryDocument
		if err := r.store.categories.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return domain.ErrCategoryNotFound
			}
			return fmt.Errorf("delete category: %w", err)
		}
		deleted = doc.toDomain()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete category")
		return nil, err
	}

	r.logger.InfoContext(ctx, "Category document deleted",
		slog.String("category_id", id),
	)
	span.SetStatus(codes.Ok, "Category deleted successfully")
	return deleted, nil
}

func (s *Store) findCategory(ctx context.Context, id string) (*categoryDocument, error) {
	var doc categoryDocument
	if err := s.categories.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &doc, nil
}
