package service

import (
	"context"
	"errors"
	"strings"

	"hearwell/catalog-service/internal/app/catalog/entity"
	"hearwell/catalog-service/internal/app/catalog/repository"
	"hearwell/pkg/metrics"
)

// ListFeatures возвращает справочник особенностей в порядке отображения
func (s *CatalogService) ListFeatures(ctx context.Context) ([]entity.Feature, error) {
	features, err := cachedList(ctx, s, featuresCacheKey, s.featureRepo.GetAll)
	if err != nil {
		return nil, storageError("list features", err)
	}
	return features, nil
}

func (s *CatalogService) GetFeature(ctx context.Context, id int64) (*entity.Feature, error) {
	feature, err := s.featureRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrFeatureNotFound) {
			return nil, notFoundError("feature %d not found", id)
		}
		return nil, storageError("get feature", err)
	}
	return feature, nil
}

// CreateFeature создает особенность. Неизвестная иконка заменяется на IconFallback.
func (s *CatalogService) CreateFeature(ctx context.Context, req *entity.CreateFeatureRequest) (*entity.Feature, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("feature name is required")
	}

	feature := &entity.Feature{
		Name:         name,
		Icon:         entity.NormalizeIcon(req.Icon),
		DisplayOrder: req.DisplayOrder,
		CreatedAt:    s.now(),
	}
	if err := s.featureRepo.Create(ctx, feature); err != nil {
		return nil, storageError("create feature", err)
	}

	s.invalidate(ctx, featuresCacheKey)
	metrics.RecordCatalogMutation("feature", "create")
	return feature, nil
}

// UpdateFeature применяет частичное обновление
func (s *CatalogService) UpdateFeature(ctx context.Context, id int64, req *entity.UpdateFeatureRequest) (*entity.Feature, error) {
	feature, err := s.GetFeature(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("feature name is required")
		}
		feature.Name = name
	}
	if req.Icon != nil {
		feature.Icon = entity.NormalizeIcon(*req.Icon)
	}
	if req.DisplayOrder != nil {
		feature.DisplayOrder = *req.DisplayOrder
	}

	if err := s.featureRepo.Update(ctx, feature); err != nil {
		if errors.Is(err, repository.ErrFeatureNotFound) {
			return nil, notFoundError("feature %d not found", id)
		}
		return nil, storageError("update feature", err)
	}

	s.invalidate(ctx, featuresCacheKey)
	metrics.RecordCatalogMutation("feature", "update")
	return feature, nil
}

// DeleteFeature удаляет особенность вместе со связями и возвращает число удаленных связей
func (s *CatalogService) DeleteFeature(ctx context.Context, id int64) (int64, error) {
	removed, err := s.featureRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrFeatureNotFound) {
			return 0, notFoundError("feature %d not found", id)
		}
		return 0, storageError("delete feature", err)
	}

	s.invalidate(ctx, featuresCacheKey)
	metrics.RecordCatalogMutation("feature", "delete")
	s.publish(ctx, entity.CatalogEvent{
		EventType: entity.EventFeatureDeleted,
		EntityID:  id,
		Affected:  removed,
	})
	return removed, nil
}
