package dto

import "github.com/mrops-br/catalog-api/internal/domain"

// CategoryRequest is the body of category create and update requests
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse represents the category response
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *domain.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:   c.ID,
		Name: c.Name,
	}
}

// ToCategoryResponseList converts a list of domain Categories
func ToCategoryResponseList(categories []*domain.Category) []*CategoryResponse {
	responses := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		responses[i] = ToCategoryResponse(c)
	}
	return responses
}
