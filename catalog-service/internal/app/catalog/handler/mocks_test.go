package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"hearwell/catalog-service/internal/app/catalog/entity"
	"hearwell/catalog-service/internal/app/catalog/service"

	"github.com/stretchr/testify/mock"
)

// MockCatalogService - мок сервиса для тестов разбора запросов
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCatalogService) CategoryTree(ctx context.Context) ([]entity.CategoryNode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CategoryNode), args.Error(1)
}

func (m *MockCatalogService) GetCategory(ctx context.Context, id int64) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, req *entity.CategoryRequest) (*entity.Category, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCatalogService) UpdateCategory(ctx context.Context, id int64, req *entity.CategoryRequest) (*entity.Category, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogService) ListFeatures(ctx context.Context) ([]entity.Feature, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Feature), args.Error(1)
}

func (m *MockCatalogService) GetFeature(ctx context.Context, id int64) (*entity.Feature, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Feature), args.Error(1)
}

func (m *MockCatalogService) CreateFeature(ctx context.Context, req *entity.CreateFeatureRequest) (*entity.Feature, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Feature), args.Error(1)
}

func (m *MockCatalogService) UpdateFeature(ctx context.Context, id int64, req *entity.UpdateFeatureRequest) (*entity.Feature, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Feature), args.Error(1)
}

func (m *MockCatalogService) DeleteFeature(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogService) ListProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.ProductDetail, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProductDetail), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id int64) (*entity.ProductDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductDetail), args.Error(1)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, input *entity.ProductInput) (*entity.ProductDetail, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductDetail), args.Error(1)
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, id int64, input *entity.ProductInput) (*entity.ProductDetail, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductDetail), args.Error(1)
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogService) RecommendProducts(ctx context.Context, answers *entity.QuizAnswers) (*entity.QuizResult, error) {
	args := m.Called(ctx, answers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizResult), args.Error(1)
}

var _ service.CatalogServiceInterface = (*MockCatalogService)(nil)

// fakeFileSaver запоминает сохраненные файлы и отдает предсказуемые пути
type fakeFileSaver struct {
	mu    sync.Mutex
	files map[string][]byte
	order []string
	err   error
}

func newFakeFileSaver() *fakeFileSaver {
	return &fakeFileSaver{files: make(map[string][]byte)}
}

func (f *fakeFileSaver) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	path := fmt.Sprintf("/uploads/%d-%s", len(f.order)+1, filename)
	f.files[path] = buf.Bytes()
	f.order = append(f.order, path)
	return path, nil
}

var errSaverDown = errors.New("disk full")
