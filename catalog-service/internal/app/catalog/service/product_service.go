package service

import (
	"context"
	"errors"
	"strings"

	"hearwell/catalog-service/internal/app/catalog/entity"
	"hearwell/catalog-service/internal/app/catalog/repository"
	"hearwell/pkg/metrics"
)

// ListProducts возвращает собранные товары с фильтром по сегменту и категории
func (s *CatalogService) ListProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.ProductDetail, error) {
	products, err := s.productRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, storageError("list products", err)
	}
	return s.loadDetails(ctx, products)
}

// GetProduct возвращает собранный товар вместе с категорией
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*entity.ProductDetail, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, notFoundError("product %d not found", id)
		}
		return nil, storageError("get product", err)
	}

	details, err := s.loadDetails(ctx, []entity.Product{*product})
	if err != nil {
		return nil, err
	}
	detail := details[0]

	if product.CategoryID != entity.UncategorizedID {
		category, err := s.categoryRepo.GetByID(ctx, product.CategoryID)
		switch {
		case err == nil:
			detail.Category = category
		case !errors.Is(err, repository.ErrCategoryNotFound):
			return nil, storageError("get product category", err)
		}
	}

	return &detail, nil
}

// CreateProduct создает товар со всеми коллекциями одной транзакцией
func (s *CatalogService) CreateProduct(ctx context.Context, input *entity.ProductInput) (*entity.ProductDetail, error) {
	title := strings.TrimSpace(deref(input.Title))
	if title == "" {
		return nil, validationError("product title is required")
	}

	segment := entity.SegmentMid
	if raw := strings.TrimSpace(deref(input.Segment)); raw != "" {
		parsed, ok := entity.ParseSegment(raw)
		if !ok {
			return nil, validationError("unknown segment %q", raw)
		}
		segment = parsed
	}

	categoryID := entity.UncategorizedID
	if input.CategoryID != nil {
		categoryID = *input.CategoryID
		if err := s.ensureCategory(ctx, categoryID); err != nil {
			return nil, err
		}
	}

	var changes entity.ProductChanges
	mainImage := cleanPath(input.MainImage)
	if mainImage != nil {
		changes.MainImage = mainImage
	}
	if images := cleanPaths(input.AdditionalImages); len(images) > 0 {
		changes.AdditionalImages = &images
	}
	if input.FeatureIDs != nil {
		featureIDs := dedupeIDs(input.FeatureIDs)
		if err := s.ensureFeatures(ctx, featureIDs); err != nil {
			return nil, err
		}
		changes.FeatureIDs = &featureIDs
	}

	now := s.now()
	product := &entity.Product{
		Title:            title,
		ShortDescription: strings.TrimSpace(deref(input.ShortDescription)),
		LongDescription:  strings.TrimSpace(deref(input.LongDescription)),
		CategoryID:       categoryID,
		Segment:          segment,
		MainImage:        mainImage,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.productRepo.Create(ctx, product, changes); err != nil {
		if errors.Is(err, repository.ErrFeatureNotFound) {
			return nil, validationError("one of the features no longer exists")
		}
		return nil, storageError("create product", err)
	}

	metrics.RecordCatalogMutation("product", "create")
	s.publish(ctx, entity.CatalogEvent{
		EventType: entity.EventProductCreated,
		EntityID:  product.ID,
		Title:     product.Title,
		Segment:   product.Segment,
	})

	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct применяет частичное обновление.
// Скалярные поля без значения не меняются. Коллекции заменяются целиком,
// если переданы: пустой список очищает коллекцию, отсутствие ключа ничего не меняет.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, input *entity.ProductInput) (*entity.ProductDetail, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, notFoundError("product %d not found", id)
		}
		return nil, storageError("get product", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, validationError("product title is required")
		}
		product.Title = title
	}
	if input.ShortDescription != nil {
		product.ShortDescription = strings.TrimSpace(*input.ShortDescription)
	}
	if input.LongDescription != nil {
		product.LongDescription = strings.TrimSpace(*input.LongDescription)
	}
	if raw := strings.TrimSpace(deref(input.Segment)); raw != "" {
		segment, ok := entity.ParseSegment(raw)
		if !ok {
			return nil, validationError("unknown segment %q", raw)
		}
		product.Segment = segment
	}
	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *input.CategoryID
	}

	var changes entity.ProductChanges
	if mainImage := cleanPath(input.MainImage); mainImage != nil {
		changes.MainImage = mainImage
		product.MainImage = mainImage
	}
	if input.AdditionalImages != nil {
		images := cleanPaths(input.AdditionalImages)
		changes.AdditionalImages = &images
	}
	if input.FeatureIDs != nil {
		featureIDs := dedupeIDs(input.FeatureIDs)
		if err := s.ensureFeatures(ctx, featureIDs); err != nil {
			return nil, err
		}
		changes.FeatureIDs = &featureIDs
	}

	product.UpdatedAt = s.now()
	if err := s.productRepo.Update(ctx, product, changes); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, notFoundError("product %d not found", id)
		case errors.Is(err, repository.ErrFeatureNotFound):
			return nil, validationError("one of the features no longer exists")
		}
		return nil, storageError("update product", err)
	}

	metrics.RecordCatalogMutation("product", "update")
	s.publish(ctx, entity.CatalogEvent{
		EventType: entity.EventProductUpdated,
		EntityID:  product.ID,
		Title:     product.Title,
		Segment:   product.Segment,
	})

	return s.GetProduct(ctx, id)
}

// DeleteProduct удаляет товар с изображениями и связями
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return notFoundError("product %d not found", id)
		}
		return storageError("delete product", err)
	}

	metrics.RecordCatalogMutation("product", "delete")
	s.publish(ctx, entity.CatalogEvent{EventType: entity.EventProductDeleted, EntityID: id})
	return nil
}

// loadDetails догружает изображения и особенности для списка товаров
func (s *CatalogService) loadDetails(ctx context.Context, products []entity.Product) ([]entity.ProductDetail, error) {
	if len(products) == 0 {
		return []entity.ProductDetail{}, nil
	}

	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	images, err := s.productRepo.GetImages(ctx, ids)
	if err != nil {
		return nil, storageError("load product images", err)
	}
	links, err := s.productRepo.GetFeatureLinks(ctx, ids)
	if err != nil {
		return nil, storageError("load product features", err)
	}

	features := make(map[int64]entity.Feature)
	if featureIDs := linkedFeatureIDs(links); len(featureIDs) > 0 {
		found, err := s.featureRepo.GetByIDs(ctx, featureIDs)
		if err != nil {
			return nil, storageError("load features", err)
		}
		for _, f := range found {
			features[f.ID] = f
		}
	}

	return assembleProducts(products, images, links, features), nil
}

// ensureCategory проверяет, что ненулевая категория существует
func (s *CatalogService) ensureCategory(ctx context.Context, id int64) error {
	if id == entity.UncategorizedID {
		return nil
	}
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return validationError("category %d does not exist", id)
		}
		return storageError("get category", err)
	}
	return nil
}

// ensureFeatures проверяет, что все id есть в справочнике. Особенность,
// удаленная после проверки, ловится внешним ключом при записи связей.
func (s *CatalogService) ensureFeatures(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	found, err := s.featureRepo.GetByIDs(ctx, ids)
	if err != nil {
		return storageError("get features", err)
	}

	known := make(map[int64]struct{}, len(found))
	for _, f := range found {
		known[f.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return validationError("feature %d does not exist", id)
		}
	}
	return nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func cleanPath(path *string) *string {
	if path == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*path)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// cleanPaths убирает пустые пути. Для непустого входа результат не nil.
func cleanPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
