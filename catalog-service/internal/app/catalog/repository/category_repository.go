package repository

import (
	"context"
	"errors"
	"fmt"

	"hearwell/catalog-service/internal/app/catalog/entity"

	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create сохраняет категорию. Если родитель удален после проверки в сервисе,
// срабатывает внешний ключ parent_id.
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return ErrParentCategoryNotFound
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by id: %w", err)
	}
	return &category, nil
}

// GetAll возвращает категории отсортированные по имени
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Category{}).Where("parent_id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count subcategories: %w", err)
	}
	return count > 0, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":      category.Name,
			"parent_id": category.ParentID,
		})
	if result.Error != nil {
		if isPgError(result.Error, pgForeignKeyViolation) {
			return ErrParentCategoryNotFound
		}
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete удаляет категорию. Категории с подкатегориями или товарами не удаляются,
// проверки и удаление выполняются в одной транзакции.
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category entity.Category
		if err := tx.Where("id = ?", id).Take(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to get category: %w", err)
		}

		var children int64
		if err := tx.Model(&entity.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return fmt.Errorf("failed to count subcategories: %w", err)
		}
		if children > 0 {
			return ErrCategoryHasChildren
		}

		var products int64
		if err := tx.Model(&entity.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
			return fmt.Errorf("failed to count products in category: %w", err)
		}
		if products > 0 {
			return ErrCategoryHasProducts
		}

		if err := tx.Where("id = ?", id).Delete(&entity.Category{}).Error; err != nil {
			// подкатегория создана параллельно, после подсчета
			if isPgError(err, pgForeignKeyViolation) {
				return ErrCategoryHasChildren
			}
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return nil
	})
}
