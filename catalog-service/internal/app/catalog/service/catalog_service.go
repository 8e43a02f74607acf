package service

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"hearwell/catalog-service/internal/app/catalog/entity"
	"hearwell/catalog-service/internal/app/catalog/repository"
	"hearwell/catalog-service/internal/app/catalog/util"
	"hearwell/pkg/logger"
)

const (
	categoriesCacheKey = "categories:all"
	featuresCacheKey   = "features:all"

	// другие экземпляры сервиса не видят generation, устаревший список
	// у них живет не дольше TTL
	listCacheTTL = 5 * time.Minute
)

// CatalogService обрабатывает бизнес-логику каталога слуховых аппаратов
// Координирует работу репозиториев, кеша списков и публикацию событий
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	featureRepo  repository.FeatureRepository
	productRepo  repository.ProductRepository
	cache        util.Cache
	publisher    util.MessagePublisher
	now          func() time.Time

	// generation растет при каждой инвалидации кеша списков
	generation atomic.Uint64
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	featureRepo repository.FeatureRepository,
	productRepo repository.ProductRepository,
	cache util.Cache,
	publisher util.MessagePublisher,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		featureRepo:  featureRepo,
		productRepo:  productRepo,
		cache:        cache,
		publisher:    publisher,
		now:          time.Now,
	}
}

// cachedList читает список из кеша, при промахе загружает из БД и кладет в кеш.
// Если во время загрузки прошла инвалидация, записанный список может быть
// старым и сразу удаляется.
// Ошибки кеша не критичны: данные всегда можно взять из БД.
func cachedList[T any](ctx context.Context, s *CatalogService, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	var items []T
	hit, err := s.cache.Get(ctx, key, &items)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to read cache")
	}
	if hit {
		return items, nil
	}

	generation := s.generation.Load()
	items, err = load(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}

	if err := s.cache.Set(ctx, key, items, listCacheTTL); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to write cache")
		return items, nil
	}
	if s.generation.Load() != generation {
		logger.Debug().Str("key", key).Msg("Cache invalidated during load, dropping written list")
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Failed to invalidate cache")
		}
	}
	return items, nil
}

// invalidate вызывается после фиксации изменения. generation увеличивается
// до удаления, чтобы параллельный cachedList либо увидел новое значение,
// либо его запись была удалена здесь.
func (s *CatalogService) invalidate(ctx context.Context, keys ...string) {
	s.generation.Add(1)
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn().Err(err).Strs("keys", keys).Msg("Failed to invalidate cache")
	}
}

// publish отправляет событие каталога. Изменение уже зафиксировано в БД,
// поэтому ошибка отправки только логируется.
func (s *CatalogService) publish(ctx context.Context, event entity.CatalogEvent) {
	event.Timestamp = s.now()

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", event.EventType).Msg("Failed to marshal catalog event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, strconv.FormatInt(event.EntityID, 10), data); err != nil {
		logger.Error().Err(err).
			Str("event_type", event.EventType).
			Int64("entity_id", event.EntityID).
			Msg("Failed to publish catalog event")
	}
}
