package dto

import (
	"time"

	"github.com/mrops-br/catalog-api/internal/domain"
)

// CreateProductRequest represents the request to create a product. Price
// is left untyped so a non-numeric value reaches validation instead of
// failing the decode.
type CreateProductRequest struct {
	Name        string `json:"name"`
	Price       any    `json:"price"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Quantity    *int   `json:"quantity"`
	Active      *bool  `json:"active"`
}

// UpdateProductRequest is a partial product update; absent fields are nil
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Quantity    *int     `json:"quantity"`
	Active      *bool    `json:"active"`
}

// CategoryRef is the expanded category of a product
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Price       float64     `json:"price"`
	Quantity    int         `json:"quantity"`
	Active      bool        `json:"active"`
	Category    CategoryRef `json:"category"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	resp := &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Quantity:    p.Quantity,
		Active:      p.Active,
		Category:    CategoryRef{ID: p.CategoryID},
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		resp.Category.Name = p.Category.Name
	}
	return resp
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}
