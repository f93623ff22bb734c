package gormstore

import (
	"time"

	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/shopspring/decimal"
)

type categoryModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (categoryModel) TableName() string {
	return "categories"
}

type productModel struct {
	ID          string          `gorm:"type:varchar(36);primaryKey"`
	Name        string          `gorm:"not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:numeric;not null"`
	Quantity    int             `gorm:"not null"`
	Active      bool            `gorm:"not null;index"`
	CategoryID  string          `gorm:"type:varchar(36);not null;index"`
	Category    *categoryModel  `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (productModel) TableName() string {
	return "products"
}

func newCategoryModel(c *domain.Category) *categoryModel {
	return &categoryModel{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (m *categoryModel) toDomain() *domain.Category {
	return &domain.Category{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func newProductModel(p *domain.Product) *productModel {
	return &productModel{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Active:      p.Active,
		CategoryID:  p.CategoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (m *productModel) toDomain() *domain.Product {
	p := &domain.Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Quantity:    m.Quantity,
		Active:      m.Active,
		CategoryID:  m.CategoryID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Category != nil {
		p.Category = m.Category.toDomain()
	}
	return p
}
