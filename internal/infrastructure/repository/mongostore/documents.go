package mongostore

import (
	"fmt"
	"time"

	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type categoryDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type productDocument struct {
	ID          string          `bson:"_id"`
	Name        string          `bson:"name"`
	Description string          `bson:"description,omitempty"`
	Price       bson.Decimal128 `bson:"price"`
	Quantity    int             `bson:"quantity"`
	Active      bool            `bson:"active"`
	Category    string          `bson:"category"`
	CreatedAt   time.Time       `bson:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt"`
}

func newCategoryDocument(c *domain.Category) *categoryDocument {
	return &categoryDocument{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (d *categoryDocument) toDomain() *domain.Category {
	return &domain.Category{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func newProductDocument(p *domain.Product) (*productDocument, error) {
	price, err := bson.ParseDecimal128(p.Price.String())
	if err != nil {
		return nil, fmt.Errorf("encode price %s: %w", p.Price, err)
	}
	return &productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Quantity:    p.Quantity,
		Active:      p.Active,
		Category:    p.CategoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (d *productDocument) toDomain() (*domain.Product, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("decode price of product %s: %w", d.ID, err)
	}
	return &domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Quantity:    d.Quantity,
		Active:      d.Active,
		CategoryID:  d.Category,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}
