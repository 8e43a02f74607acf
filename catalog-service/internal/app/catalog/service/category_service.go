package service

import (
	"context"
	"errors"
	"strings"

	"hearwell/catalog-service/internal/app/catalog/entity"
	"hearwell/catalog-service/internal/app/catalog/repository"
	"hearwell/pkg/metrics"
)

// ListCategories возвращает категории по имени, с кешированием
func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := cachedList(ctx, s, categoriesCacheKey, s.categoryRepo.GetAll)
	if err != nil {
		return nil, storageError("list categories", err)
	}
	return categories, nil
}

// CategoryTree группирует категории в корни с дочерними.
// Дочерняя категория с отсутствующим родителем показывается как корневая.
func (s *CatalogService) CategoryTree(ctx context.Context) ([]entity.CategoryNode, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[int64]struct{}, len(categories))
	for _, c := range categories {
		known[c.ID] = struct{}{}
	}

	children := make(map[int64][]entity.Category)
	roots := make([]entity.Category, 0, len(categories))
	for _, c := range categories {
		if c.ParentID != nil {
			if _, ok := known[*c.ParentID]; ok {
				children[*c.ParentID] = append(children[*c.ParentID], c)
				continue
			}
		}
		roots = append(roots, c)
	}

	tree := make([]entity.CategoryNode, 0, len(roots))
	for _, root := range roots {
		node := entity.CategoryNode{Category: root, Children: children[root.ID]}
		if node.Children == nil {
			node.Children = []entity.Category{}
		}
		tree = append(tree, node)
	}
	return tree, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, notFoundError("category %d not found", id)
		}
		return nil, storageError("get category", err)
	}
	return category, nil
}

// CreateCategory создает категорию и инвалидирует кеш
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CategoryRequest) (*entity.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("category name is required")
	}

	parentID := normalizeParent(req.ParentID)
	if err := s.checkParent(ctx, entity.UncategorizedID, parentID); err != nil {
		return nil, err
	}

	category := &entity.Category{
		Name:      name,
		ParentID:  parentID,
		CreatedAt: s.now(),
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrParentCategoryNotFound) {
			return nil, validationError("parent category %d does not exist", *parentID)
		}
		return nil, storageError("create category", err)
	}

	s.invalidate(ctx, categoriesCacheKey)
	metrics.RecordCatalogMutation("category", "create")
	return category, nil
}

// UpdateCategory переписывает имя и родителя категории
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, req *entity.CategoryRequest) (*entity.Category, error) {
	if id == entity.UncategorizedID {
		return nil, validationError("the uncategorized category cannot be modified")
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("category name is required")
	}

	parentID := normalizeParent(req.ParentID)
	if err := s.checkParent(ctx, id, parentID); err != nil {
		return nil, err
	}

	category.Name = name
	category.ParentID = parentID
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, notFoundError("category %d not found", id)
		case errors.Is(err, repository.ErrParentCategoryNotFound):
			return nil, validationError("parent category %d does not exist", *parentID)
		}
		return nil, storageError("update category", err)
	}

	s.invalidate(ctx, categoriesCacheKey)
	metrics.RecordCatalogMutation("category", "update")
	return category, nil
}

// DeleteCategory удаляет категорию без подкатегорий и товаров
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if id == entity.UncategorizedID {
		return validationError("the uncategorized category cannot be deleted")
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return notFoundError("category %d not found", id)
		case errors.Is(err, repository.ErrCategoryHasChildren):
			return conflictError("category %d has subcategories", id)
		case errors.Is(err, repository.ErrCategoryHasProducts):
			return conflictError("category %d is used by products", id)
		}
		return storageError("delete category", err)
	}

	s.invalidate(ctx, categoriesCacheKey)
	metrics.RecordCatalogMutation("category", "delete")
	s.publish(ctx, entity.CatalogEvent{EventType: entity.EventCategoryDeleted, EntityID: id})
	return nil
}

// normalizeParent: parent_id 0 означает корневую категорию
func normalizeParent(parentID *int64) *int64 {
	if parentID == nil || *parentID == entity.UncategorizedID {
		return nil
	}
	id := *parentID
	return &id
}

// checkParent проверяет родителя категории selfID (0 для новой).
// Вложенность ограничена одним уровнем, поэтому циклы невозможны.
func (s *CatalogService) checkParent(ctx context.Context, selfID int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if selfID != entity.UncategorizedID && *parentID == selfID {
		return validationError("category cannot be its own parent")
	}

	parent, err := s.categoryRepo.GetByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return validationError("parent category %d does not exist", *parentID)
		}
		return storageError("get parent category", err)
	}
	if parent.ParentID != nil {
		return validationError("parent category %d is itself a subcategory", *parentID)
	}

	if selfID != entity.UncategorizedID {
		hasChildren, err := s.categoryRepo.HasChildren(ctx, selfID)
		if err != nil {
			return storageError("check subcategories", err)
		}
		if hasChildren {
			return validationError("category %d has subcategories and cannot be nested", selfID)
		}
	}
	return nil
}
