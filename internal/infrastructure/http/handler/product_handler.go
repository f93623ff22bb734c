package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/app/service"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/response"
	"github.com/mrops-br/catalog-api/internal/infrastructure/telemetry"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if _, err := decodeBody(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body")
		response.Error(w, err, "Error creating product")
		return
	}

	timing := telemetry.StartServerTiming(r.Context(), "product-create")
	product, err := h.service.CreateProduct(r.Context(), &req)
	timing.Stop()
	if err != nil {
		response.Error(w, err, "Error creating product")
		return
	}

	response.Success(w, http.StatusCreated, "Product created successfully", product)
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	timing := telemetry.StartServerTiming(r.Context(), "product-list")
	products, err := h.service.ListProducts(r.Context(), r.URL.Query())
	timing.Stop()
	if err != nil {
		response.Error(w, err, "Error retrieving products")
		return
	}

	response.Success(w, http.StatusOK, "Products retrieved successfully", products)
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	timing := telemetry.StartServerTiming(r.Context(), "product-get")
	product, err := h.service.GetProduct(r.Context(), id)
	timing.Stop()
	if err != nil {
		response.Error(w, err, "Error retrieving product")
		return
	}

	response.Success(w, http.StatusOK, "Product retrieved successfully", product)
}

// UpdateProduct handles PUT /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateProductRequest
	if _, err := decodeBody(r, &req); err != nil {
		response.Error(w, err, "Error updating product")
		return
	}

	timing := telemetry.StartServerTiming(r.Context(), "product-update")
	product, err := h.service.UpdateProduct(r.Context(), id, &req)
	timing.Stop()
	if err != nil {
		response.Error(w, err, "Error updating product")
		return
	}

	response.Success(w, http.StatusOK, "Product updated successfully", product)
}

// DeleteProduct handles DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	timing := telemetry.StartServerTiming(r.Context(), "product-delete")
	product, err := h.service.DeleteProduct(r.Context(), id)
	timing.Stop()
	if err != nil {
		response.Error(w, err, "Error deleting product")
		return
	}

	response.Success(w, http.StatusOK, "Product deleted successfully", product)
}
