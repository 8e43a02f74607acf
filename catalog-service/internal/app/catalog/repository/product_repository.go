package repository

import (
	"context"
	"errors"
	"fmt"

	"hearwell/catalog-service/internal/app/catalog/entity"

	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create вставляет товар, главное изображение, дополнительные изображения
// и связи с особенностями одной транзакцией.
func (r *productRepository) Create(ctx context.Context, product *entity.Product, changes entity.ProductChanges) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		if changes.MainImage != nil {
			primary := entity.ProductImage{
				ProductID: product.ID,
				Path:      *changes.MainImage,
				IsPrimary: true,
			}
			if err := tx.Create(&primary).Error; err != nil {
				return fmt.Errorf("failed to create primary image: %w", err)
			}
		}

		if changes.AdditionalImages != nil {
			if err := insertSecondaryImages(tx, product.ID, *changes.AdditionalImages); err != nil {
				return err
			}
		}

		if changes.FeatureIDs != nil {
			if err := insertFeatureLinks(tx, product.ID, *changes.FeatureIDs); err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	var product entity.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}
	return &product, nil
}

// GetAll возвращает товары, новые первыми
func (r *productRepository) GetAll(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	query := r.db.WithContext(ctx).Model(&entity.Product{})
	if filter.Segment != nil {
		query = query.Where("segment = ?", *filter.Segment)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var products []entity.Product
	if err := query.Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// GetImages возвращает изображения товаров: главное первым, затем дополнительные по display_order
func (r *productRepository) GetImages(ctx context.Context, productIDs []int64) ([]entity.ProductImage, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	var images []entity.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("product_id ASC, is_primary DESC, display_order ASC, id ASC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get product images: %w", err)
	}
	return images, nil
}

// GetFeatureLinks возвращает связи товаров с особенностями по display_order
func (r *productRepository) GetFeatureLinks(ctx context.Context, productIDs []int64) ([]entity.ProductFeature, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	var links []entity.ProductFeature
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("product_id ASC, display_order ASC, id ASC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get product features: %w", err)
	}
	return links, nil
}

// Update переписывает поля товара и переданные коллекции одной транзакцией.
// Коллекции с nil не трогаются, непустые и пустые заменяются целиком.
func (r *productRepository) Update(ctx context.Context, product *entity.Product, changes entity.ProductChanges) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Product{}).
			Where("id = ?", product.ID).
			Updates(map[string]interface{}{
				"title":             product.Title,
				"short_description": product.ShortDescription,
				"long_description":  product.LongDescription,
				"category_id":       product.CategoryID,
				"segment":           product.Segment,
				"main_image":        product.MainImage,
				"updated_at":        product.UpdatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		if changes.MainImage != nil {
			if err := replacePrimaryImage(tx, product.ID, *changes.MainImage); err != nil {
				return err
			}
		}

		if changes.AdditionalImages != nil {
			err := tx.Where("product_id = ? AND is_primary = ?", product.ID, false).
				Delete(&entity.ProductImage{}).Error
			if err != nil {
				return fmt.Errorf("failed to delete secondary images: %w", err)
			}
			if err := insertSecondaryImages(tx, product.ID, *changes.AdditionalImages); err != nil {
				return err
			}
		}

		if changes.FeatureIDs != nil {
			if err := tx.Where("product_id = ?", product.ID).Delete(&entity.ProductFeature{}).Error; err != nil {
				return fmt.Errorf("failed to delete feature associations: %w", err)
			}
			if err := insertFeatureLinks(tx, product.ID, *changes.FeatureIDs); err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete удаляет изображения, связи с особенностями и сам товар одной транзакцией
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&entity.ProductImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete product images: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&entity.ProductFeature{}).Error; err != nil {
			return fmt.Errorf("failed to delete product features: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&entity.Product{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
}

// replacePrimaryImage обновляет путь существующего главного изображения,
// новая строка создается только если главного изображения еще нет.
func replacePrimaryImage(tx *gorm.DB, productID int64, path string) error {
	var primary entity.ProductImage
	err := tx.Where("product_id = ? AND is_primary = ?", productID, true).Take(&primary).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		primary = entity.ProductImage{ProductID: productID, Path: path, IsPrimary: true}
		if err := tx.Create(&primary).Error; err != nil {
			return fmt.Errorf("failed to create primary image: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to get primary image: %w", err)
	}

	if err := tx.Model(&entity.ProductImage{}).Where("id = ?", primary.ID).Update("path", path).Error; err != nil {
		return fmt.Errorf("failed to update primary image: %w", err)
	}
	return nil
}

func insertSecondaryImages(tx *gorm.DB, productID int64, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	images := make([]entity.ProductImage, 0, len(paths))
	for i, path := range paths {
		images = append(images, entity.ProductImage{
			ProductID:    productID,
			Path:         path,
			DisplayOrder: i + 1,
		})
	}

	if err := tx.Create(&images).Error; err != nil {
		return fmt.Errorf("failed to create secondary images: %w", err)
	}
	return nil
}

func insertFeatureLinks(tx *gorm.DB, productID int64, featureIDs []int64) error {
	if len(featureIDs) == 0 {
		return nil
	}

	links := make([]entity.ProductFeature, 0, len(featureIDs))
	for i := range featureIDs {
		featureID := featureIDs[i]
		links = append(links, entity.ProductFeature{
			ProductID:    productID,
			FeatureID:    &featureID,
			DisplayOrder: i + 1,
		})
	}

	if err := tx.Create(&links).Error; err != nil {
		// особенность удалена между проверкой в сервисе и вставкой
		if isPgError(err, pgForeignKeyViolation) {
			return ErrFeatureNotFound
		}
		return fmt.Errorf("failed to create feature associations: %w", err)
	}
	return nil
}
