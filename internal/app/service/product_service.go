package service

import (
	"context"
	"log/slog"
	"net/url"
	"slices"

	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductQueryOptions are the query keys accepted by ListProducts
var ProductQueryOptions = []string{"category", "active", "name"}

// ProductService handles product use cases
type ProductService struct {
	repo                  domain.ProductRepository
	tracer                trace.Tracer
	logger                *slog.Logger
	productCreatedCounter metric.Int64Counter
	operations            operations
}

// NewProductService creates a new product service
func NewProductService(
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	productCreatedCounter, _ := meter.Int64Counter(
		"products.created.total",
		metric.WithDescription("Total number of products created"),
	)

	return &ProductService{
		repo:                  repo,
		tracer:                tracer,
		logger:                logger,
		productCreatedCounter: productCreatedCounter,
		operations:            newOperations(meter, "product"),
	}
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (resp *dto.ProductResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()
	defer func() { s.operations.record(ctx, "create", err) }()

	if req == nil || req.Name == "" || isBlank(req.Price) || req.Category == "" {
		return nil, fail(span, domain.ErrProductFieldsRequired, "Validation failed")
	}

	price, ok := req.Price.(float64)
	if !ok || price <= 0 {
		return nil, fail(span, domain.ErrInvalidProductPrice, "Validation failed")
	}

	if !domain.IsValidID(req.Category) {
		return nil, fail(span, domain.ErrInvalidCategoryID, "Validation failed")
	}

	span.SetAttributes(
		attribute.String("product.name", req.Name),
		attribute.Float64("product.price", price),
		attribute.String("product.category_id", req.Category),
	)

	s.logger.InfoContext(ctx, "Creating product",
		slog.String("name", req.Name),
		slog.Float64("price", price),
	)

	product, err := domain.NewProduct(domain.ProductAttributes{
		Name:        req.Name,
		Description: req.Description,
		Price:       decimal.NewFromFloat(price),
		Quantity:    req.Quantity,
		Active:      req.Active,
		CategoryID:  req.Category,
	})
	if err != nil {
		return nil, fail(span, err, "Validation failed")
	}

	span.SetAttributes(attribute.String("product.id", product.ID))

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.WarnContext(ctx, "Failed to store product",
			slog.String("error", err.Error()),
		)
		return nil, fail(span, err, "Failed to store product")
	}

	s.productCreatedCounter.Add(ctx, 1)

	s.logger.InfoContext(ctx, "Product created successfully",
		slog.String("product_id", product.ID),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return dto.ToProductResponse(product), nil
}

// ListProducts retrieves the products matching query. Only the keys in
// ProductQueryOptions are accepted.
func (s *ProductService) ListProducts(ctx context.Context, query url.Values) (resp []*dto.ProductResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListProducts")
	defer span.End()
	defer func() { s.operations.record(ctx, "list", err) }()

	filter, err := ParseProductFilter(query)
	if err != nil {
		return nil, fail(span, err, "Validation failed")
	}

	span.SetAttributes(
		attribute.String("filter.category", filter.CategoryID),
		attribute.String("filter.name", filter.Name),
	)
	if filter.Active != nil {
		span.SetAttributes(attribute.Bool("filter.active", *filter.Active))
	}

	products, err := s.repo.Find(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list products",
			slog.String("error", err.Error()),
		)
		return nil, fail(span, err, "Failed to retrieve products")
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))

	s.logger.InfoContext(ctx, "Products listed successfully",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return dto.ToProductResponseList(products), nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id string) (resp *dto.ProductResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProduct")
	defer span.End()
	defer func() { s.operations.record(ctx, "read", err) }()

	span.SetAttributes(attribute.String("product.id", id))

	if !domain.IsValidID(id) {
		return nil, fail(span, domain.ErrInvalidProductID, "Validation failed")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "Product lookup failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fail(span, err, "Product lookup failed")
	}

	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return dto.ToProductResponse(product), nil
}

// UpdateProduct applies a partial update. The category reference is
// checked for shape only, not for existence.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *dto.UpdateProductRequest) (resp *dto.ProductResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.UpdateProduct")
	defer span.End()
	defer func() { s.operations.record(ctx, "update", err) }()

	span.SetAttributes(attribute.String("product.id", id))

	if !domain.IsValidID(id) {
		return nil, fail(span, domain.ErrInvalidProductID, "Validation failed")
	}

	patch := toProductPatch(req)
	product, err := s.repo.Update(ctx, id, func(p *domain.Product) error {
		return p.Apply(patch)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to update product",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fail(span, err, "Failed to update product")
	}

	s.logger.InfoContext(ctx, "Product updated successfully",
		slog.String("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return dto.ToProductResponse(product), nil
}

// DeleteProduct removes a product by ID
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (resp *dto.ProductResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.DeleteProduct")
	defer span.End()
	defer func() { s.operations.record(ctx, "delete", err) }()

	span.SetAttributes(attribute.String("product.id", id))

	if !domain.IsValidID(id) {
		return nil, fail(span, domain.ErrInvalidProductID, "Validation failed")
	}

	product, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to delete product",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fail(span, err, "Failed to delete product")
	}

	s.logger.InfoContext(ctx, "Product deleted successfully",
		slog.String("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return dto.ToProductResponse(product), nil
}

// ParseProductFilter turns listing query parameters into a filter. A
// present active key means true only for the literal "true"; empty
// category and name values are ignored.
func ParseProductFilter(query url.Values) (domain.ProductFilter, error) {
	var filter domain.ProductFilter

	for key := range query {
		if !slices.Contains(ProductQueryOptions, key) {
			return filter, domain.InvalidQueryError(ProductQueryOptions)
		}
	}

	if _, ok := query["active"]; ok {
		active := query.Get("active") == "true"
		filter.Active = &active
	}

	if category := query.Get("category"); category != "" {
		if !domain.IsValidID(category) {
			return filter, domain.ErrInvalidCategoryID
		}
		filter.CategoryID = category
	}

	filter.Name = query.Get("name")

	return filter, nil
}

// isBlank reports whether a decoded JSON value counts as not provided:
// absent, null, empty string, false or zero.
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	default:
		return false
	}
}

func toProductPatch(req *dto.UpdateProductRequest) domain.ProductPatch {
	if req == nil {
		return domain.ProductPatch{}
	}
	patch := domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		Active:      req.Active,
		CategoryID:  req.Category,
	}
	if req.Price != nil {
		price := decimal.NewFromFloat(*req.Price)
		patch.Price = &price
	}
	return patch
}
