package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProductRepository stores products in the products collection
type ProductRepository struct {
	store  *Store
	tracer trace.Tracer
	logger *slog.Logger
}

// NewProductRepository creates a new MongoDB product repository
func NewProductRepository(store *Store, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{store: store, tracer: tracer, logger: logger}
}

// Create inserts a product. The category document is resolved and written
// in the same transaction.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.id", product.ID),
		attribute.String("product.category_id", product.CategoryID),
	)

	doc, err := newProductDocument(product)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to encode product")
		return err
	}

	var category categoryDocument
	err = r.store.withTransaction(ctx, func(ctx context.Context) error {
		// Bumping the revision makes a concurrent category delete
		// transaction hit a write conflict.
		err := r.store.categories.FindOneAndUpdate(ctx,
			bson.D{{Key: "_id", Value: product.CategoryID}},
			bson.D{{Key: "$inc", Value: bson.D{{Key: "revision", Value: 1}}}},
		).Decode(&category)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrUnknownCategory
		}
		if err != nil {
			return fmt.Errorf("lock category: %w", err)
		}

		if _, err := r.store.products.InsertOne(ctx, doc); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create product")
		return err
	}

	product.Category = category.toDomain()

	r.logger.InfoContext(ctx, "Product document inserted",
		slog.String("product_id", product.ID),
	)
	span.SetStatus(codes.Ok, "Product created successfully")
	return nil
}

// Find lists products matching filter with their categories expanded
func (r *ProductRepository) Find(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Find")
	defer span.End()

	query := bson.D{}
	if filter.CategoryID != "" {
		query = append(query, bson.E{Key: "category", Value: filter.CategoryID})
	}
	if filter.Active != nil {
		query = append(query, bson.E{Key: "active", Value: *filter.Active})
	}
	if filter.Name != "" {
		query = append(query, bson.E{Key: "name", Value: bson.Regex{Pattern: regexp.QuoteMeta(filter.Name), Options: "i"}})
	}

	cursor, err := r.store.products.Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list products")
		return nil, fmt.Errorf("find products: %w", err)
	}

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to decode products")
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toDomain()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to decode products")
			return nil, err
		}
		products = append(products, p)
	}

	if err := r.store.expand(ctx, products...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to expand categories")
		return nil, err
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

	product, err := r.store.findProduct(ctx, id)
	if err == nil {
		err = r.store.expand(ctx, product)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to find product")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Product found")
	return product, nil
}

// Update applies mutate to the stored document inside a transaction
func (r *ProductRepository) Update(ctx context.Context, id string, mutate func(*domain.Product) error) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	var updated *domain.Product
	err := r.store.withTransaction(ctx, func(ctx context.Context) error {
		product, err := r.store.findProduct(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(product); err != nil {
			return err
		}

		doc, err := newProductDocument(product)
		if err != nil {
			return err
		}
		if _, err := r.store.products.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc); err != nil {
			return fmt.Errorf("replace product: %w", err)
		}
		updated = product
		return nil
	})
	if err == nil {
		err = r.store.expand(ctx, updated)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update product")
		return nil, err
	}

	r.logger.InfoContext(ctx, "Product document updated",
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

	product, err := r.deleteProduct(ctx, id)
	if err == nil {
		err = r.store.expand(ctx, product)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete product")
		return nil, err
	}

	r.logger.InfoContext(ctx, "Product document deleted",
		slog.String("product_id", id),
	)
	span.SetStatus(codes.Ok, "Product deleted successfully")
	return product, nil
}

func (r *ProductRepository) deleteProduct(ctx context.Context, id string) (*domain.Product, error) {
	var doc productDocument
	if err := r.store.products.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}
	return doc.toDomain()
}

func (s *Store) findProduct(ctx context.Context, id string) (*domain.Product, error) {
	var doc productDocument
	if err := s.products.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain()
}

// expand resolves the category reference of every product with one query.
func (s *Store) expand(ctx context.Context, products ...*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, 0, len(products))
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if !seen[p.CategoryID] {
			seen[p.CategoryID] = true
			ids = append(ids, p.CategoryID)
		}
	}

	cursor, err := s.categories.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return fmt.Errorf("find product categories: %w", err)
	}
	var docs []categoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return fmt.Errorf("decode product categories: %w", err)
	}

	byID := make(map[string]*categoryDocument, len(docs))
	for i := range docs {
		byID[docs[i].ID] = &docs[i]
	}
	for _, p := range products {
		p.Category = nil
		if doc, ok := byID[p.CategoryID]; ok {
			p.Category = doc.toDomain()
		}
	}
	return nil
}
