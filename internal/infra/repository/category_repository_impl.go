package repository

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

type categoryRepositoryImpl struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) domain.CategoryRepository {
	return &categoryRepositoryImpl{
		db: db,
	}
}

func (r *categoryRepositoryImpl) Save(ctx context.Context, category *domain.Category) error {
	if err := r.db.WithContext(ctx).Create(FromCategory(category)).Error; err != nil {
		slog.ErrorContext(ctx, "failed to save category",
			"category_id", category.ID().String(),
			"error", err,
		)

		return err
	}

	return nil
}

func (r *categoryRepositoryImpl) Delete(ctx context.Context, id domain.CategoryID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&CategoryModel{})
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to delete category",
			"category_id", id.String(),
			"error", result.Error,
		)

		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrCategoryNotFound
	}

	return nil
}

func (r *categoryRepositoryImpl) List(ctx context.Context) ([]*domain.Category, error) {
	var models []CategoryModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		slog.ErrorContext(ctx, "failed to list categories",
			"error", err,
		)

		return nil, err
	}

	categories := make([]*domain.Category, 0, len(models))
	for _, m := range models {
		c, err := m.ToEntity()
		if err != nil {
			return nil, err
		}

		categories = append(categories, c)
	}

	return categories, nil
}
