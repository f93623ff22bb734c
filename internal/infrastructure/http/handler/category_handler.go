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

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	service *service.CategoryService
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(service *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger,
	}
}

// CreateCategory handles POST /categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	present, err := decodeBody(r, &req)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body")
		response.Error(w, err, "Error creating category")
		return
	}

	body := &req
	if !present {
		body = nil
	}

	timing := telemetry.StartServerTiming(r.Context(), "category-create")
	category, err := h.service.CreateCategory(r.Context(), body)
	timing.Stop()
	if err != nil {
		response.Error(w, err, "Error creating category")
		return
	}

	response.Success(w, http.StatusCreated, "Category created successfully", category)
}

// ListCategories handles GET /categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	timing := telemetry.StartServerTiming(r.Context(), "category-list")
	categories, err := h.service.ListCategories(r.Context())
	timing.Stop()
	if err != nil {
		response.Error(w, err, "Error retrieving categories")
		return
	}

	response.Success(w, http.StatusOK, "Categories retrieved successfully", categories)
}

// UpdateCategory handles PUT /categories/{id}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.CategoryRequest
	if _, err := decodeBody(r, &req); err != nil {
		response.Error(w, err, "Error updating category")
		return
	}

	timing := telemetry.StartServerTiming(r.Context(), "category-update")
	category, err := h.service.UpdateCategory(r.Context(), id, &req)
	timing.Stop()
	if err != nil {
		response.Error(w, err, "Error updating category")
		return
	}

	response.Success(w, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory handles DELETE /categories/{id}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	timing := telemetry.StartServerTiming(r.Context(), "category-delete")
	category, err := h.service.DeleteCategory(r.Context(), id)
	timing.Stop()
	if err != nil {
		response.Error(w, err, "Error deleting category")
		return
	}

	response.Success(w, http.StatusOK, "Category deleted successfully", category)
}
