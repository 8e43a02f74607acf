package repository

import (
	"context"
	"errors"
	"fmt"

	"hearwell/catalog-service/internal/app/catalog/entity"

	"gorm.io/gorm"
)

type featureRepository struct {
	db *gorm.DB
}

// NewFeatureRepository создает репозиторий справочника особенностей
func NewFeatureRepository(db *gorm.DB) FeatureRepository {
	return &featureRepository{db: db}
}

func (r *featureRepository) Create(ctx context.Context, feature *entity.Feature) error {
	if err := r.db.WithContext(ctx).Create(feature).Error; err != nil {
		return fmt.Errorf("failed to create feature: %w", err)
	}
	return nil
}

func (r *featureRepository) GetByID(ctx context.Context, id int64) (*entity.Feature, error) {
	var feature entity.Feature
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&feature).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeatureNotFound
		}
		return nil, fmt.Errorf("failed to get feature by id: %w", err)
	}
	return &feature, nil
}

// GetByIDs возвращает только найденные особенности, отсутствующие id пропускаются
func (r *featureRepository) GetByIDs(ctx context.Context, ids []int64) ([]entity.Feature, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var features []entity.Feature
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&features).Error; err != nil {
		return nil, fmt.Errorf("failed to get features: %w", err)
	}
	return features, nil
}

// GetAll возвращает справочник в порядке отображения
func (r *featureRepository) GetAll(ctx context.Context) ([]entity.Feature, error) {
	var features []entity.Feature
	if err := r.db.WithContext(ctx).Order("display_order ASC, id ASC").Find(&features).Error; err != nil {
		return nil, fmt.Errorf("failed to get features: %w", err)
	}
	return features, nil
}

func (r *featureRepository) Update(ctx context.Context, feature *entity.Feature) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Feature{}).
		Where("id = ?", feature.ID).
		Updates(map[string]interface{}{
			"name":          feature.Name,
			"icon":          feature.Icon,
			"display_order": feature.DisplayOrder,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update feature: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFeatureNotFound
	}
	return nil
}

// Delete каскадно удаляет связи product_features и саму особенность.
// Оба удаления в одной транзакции: при ошибке не удаляется ничего.
func (r *featureRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var removed int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var feature entity.Feature
		if err := tx.Where("id = ?", id).Take(&feature).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFeatureNotFound
			}
			return fmt.Errorf("failed to get feature: %w", err)
		}

		links := tx.Where("feature_id = ?", id).Delete(&entity.ProductFeature{})
		if links.Error != nil {
			return fmt.Errorf("failed to delete feature associations: %w", links.Error)
		}

		if err := tx.Where("id = ?", id).Delete(&entity.Feature{}).Error; err != nil {
			return fmt.Errorf("failed to delete feature: %w", err)
		}

		removed = links.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}
