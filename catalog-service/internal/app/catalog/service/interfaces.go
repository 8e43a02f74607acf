package service

import (
	"context"

	"hearwell/catalog-service/internal/app/catalog/entity"
)

type CatalogServiceInterface interface {
	ListCategories(ctx context.Context) ([]entity.Category, error)
	CategoryTree(ctx context.Context) ([]entity.CategoryNode, error)
	GetCategory(ctx context.Context, id int64) (*entity.Category, error)
	CreateCategory(ctx context.Context, req *entity.CategoryRequest) (*entity.Category, error)
	UpdateCategory(ctx context.Context, id int64, req *entity.CategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListFeatures(ctx context.Context) ([]entity.Feature, error)
	GetFeature(ctx context.Context, id int64) (*entity.Feature, error)
	CreateFeature(ctx context.Context, req *entity.CreateFeatureRequest) (*entity.Feature, error)
	UpdateFeature(ctx context.Context, id int64, req *entity.UpdateFeatureRequest) (*entity.Feature, error)
	DeleteFeature(ctx context.Context, id int64) (int64, error)

	ListProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.ProductDetail, error)
	GetProduct(ctx context.Context, id int64) (*entity.ProductDetail, error)
	CreateProduct(ctx context.Context, input *entity.ProductInput) (*entity.ProductDetail, error)
	UpdateProduct(ctx context.Context, id int64, input *entity.ProductInput) (*entity.ProductDetail, error)
	DeleteProduct(ctx context.Context, id int64) error

	RecommendProducts(ctx context.Context, answers *entity.QuizAnswers) (*entity.QuizResult, error)
}

type AuthServiceInterface interface {
	Authenticate(ctx context.Context, username, password string) (*Session, error)
	ValidateSession(token string) (string, error)
}
