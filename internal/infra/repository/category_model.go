package repository

import (
	"time"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

type CategoryModel struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;type:varchar(255);not null"`
	Kind      string    `gorm:"column:kind;type:varchar(16);not null;index:idx_categories_kind"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null"`
}

func (CategoryModel) TableName() string {
	return "categories"
}

func (m *CategoryModel) ToEntity() (*domain.Category, error) {
	id, err := domain.CategoryIDFromString(m.ID)
	if err != nil {
		return nil, err
	}

	kind, err := domain.NewCategoryKind(m.Kind)
	if err != nil {
		return nil, err
	}

	return domain.ReconstituteCategory(id, m.Name, kind), nil
}

func FromCategory(c *domain.Category) *CategoryModel {
	return &CategoryModel{
		ID:        c.ID().String(),
		Name:      c.Name(),
		Kind:      string(c.Kind()),
		CreatedAt: time.Now(),
	}
}
