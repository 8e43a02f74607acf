package repository

import (
	"context"
	"errors"

	"hearwell/catalog-service/internal/app/catalog/entity"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrCategoryNotFound       = errors.New("category not found")
	ErrParentCategoryNotFound = errors.New("parent category not found")
	ErrCategoryHasChildren    = errors.New("category has subcategories")
	ErrCategoryHasProducts    = errors.New("category has products")
	ErrFeatureNotFound        = errors.New("feature not found")
	ErrProductNotFound        = errors.New("product not found")
)

// pgForeignKeyViolation - код ошибки PostgreSQL foreign_key_violation
const pgForeignKeyViolation = "23503"

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	HasChildren(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id int64) error
}

type FeatureRepository interface {
	Create(ctx context.Context, feature *entity.Feature) error
	GetByID(ctx context.Context, id int64) (*entity.Feature, error)
	GetByIDs(ctx context.Context, ids []int64) ([]entity.Feature, error)
	GetAll(ctx context.Context) ([]entity.Feature, error)
	Update(ctx context.Context, feature *entity.Feature) error
	// Delete удаляет особенность вместе со всеми связями с товарами
	// и возвращает количество удаленных связей
	Delete(ctx context.Context, id int64) (int64, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product, changes entity.ProductChanges) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetAll(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error)
	GetImages(ctx context.Context, productIDs []int64) ([]entity.ProductImage, error)
	GetFeatureLinks(ctx context.Context, productIDs []int64) ([]entity.ProductFeature, error)
	Update(ctx context.Context, product *entity.Product, changes entity.ProductChanges) error
	Delete(ctx context.Context, id int64) error
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
