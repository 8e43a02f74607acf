package service

import (
	"context"
	"errors"
	"testing"

	"hearwell/catalog-service/internal/app/catalog/entity"
	"hearwell/catalog-service/internal/app/catalog/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func catalogFeatures() []entity.Feature {
	return []entity.Feature{
		{ID: 1, Name: "Bluetooth", Icon: entity.IconBluetooth},
		{ID: 2, Name: "Şarj Edilebilir", Icon: entity.IconBattery},
		{ID: 3, Name: "Su Geçirmez", Icon: entity.IconWater},
	}
}

func featureLinks(productID int64, ids ...int64) []entity.ProductFeature {
	links := make([]entity.ProductFeature, 0, len(ids))
	for i, id := range ids {
		links = append(links, entity.ProductFeature{ProductID: productID, FeatureID: int64Ptr(id), DisplayOrder: i + 1})
	}
	return links
}

// expectReload настраивает чтение товара после записи
func expectReload(d *testDeps, product *entity.Product, images []entity.ProductImage, links []entity.ProductFeature, features []entity.Feature) {
	ctx := context.Background()
	d.productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	d.productRepo.On("GetImages", ctx, []int64{product.ID}).Return(images, nil)
	d.productRepo.On("GetFeatureLinks", ctx, []int64{product.ID}).Return(links, nil)
	if ids := linkedFeatureIDs(links); len(ids) > 0 {
		d.featureRepo.On("GetByIDs", ctx, ids).Return(features, nil)
	}
}

func TestCatalogService_CreateProduct_WithImagesAndFeatures(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestService()

	var created entity.Product
	var changes entity.ProductChanges
	deps.featureRepo.On("GetByIDs", ctx, []int64{1, 2}).Return(catalogFeatures()[:2], nil)
	deps.productRepo.On("Create", ctx, mock.AnythingOfType("*entity.Product"), mock.AnythingOfType("entity.ProductChanges")).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(*entity.Product)
			p.ID = 42
			created = *p
			changes = args.Get(2).(entity.ProductChanges)
		}).
		Return(nil)

	stored := &entity.Product{ID: 42, Title: "Vista V30", Segment: entity.SegmentPremium, MainImage: strPtr("/img/a.jpg")}
	expectReload(deps, stored,
		[]entity.ProductImage{
			{ProductID: 42, Path: "/img/a.jpg", IsPrimary: true},
			{ProductID: 42, Path: "/img/b.jpg", DisplayOrder: 1},
			{ProductID: 42, Path: "/img/c.jpg", DisplayOrder: 2},
		},
		featureLinks(42, 1, 2),
		catalogFeatures()[:2],
	)

	product, err := svc.CreateProduct(ctx, &entity.ProductInput{
		Title:            strPtr("Vista V30"),
		Segment:          strPtr("premium"),
		MainImage:        strPtr("/img/a.jpg"),
		AdditionalImages: []string{"/img/b.jpg", "/img/c.jpg"},
		FeatureIDs:       []int64{1, 2},
	})

	require.NoError(t, err)

	// что записано
	assert.Equal(t, entity.SegmentPremium, created.Segment)
	assert.Equal(t, entity.UncategorizedID, created.CategoryID)
	assert.Equal(t, "/img/a.jpg", *created.MainImage)
	assert.Equal(t, "/img/a.jpg", *changes.MainImage)
	assert.Equal(t, []string{"/img/b.jpg", "/img/c.jpg"}, *changes.AdditionalImages)
	assert.Equal(t, []int64{1, 2}, *changes.FeatureIDs)

	// что прочитано
	assert.Equal(t, int64(42), product.ID)
	require.NotNil(t, product.MainImage)
	assert.Equal(t, "/img/a.jpg", *product.MainImage)
	assert.Equal(t, []string{"/img/b.jpg", "/img/c.jpg"}, product.AdditionalImages)
	require.Len(t, product.Features, 2)
	assert.Equal(t, "Bluetooth", product.Features[0].Name)
	assert.Equal(t, int64(1), *product.Features[0].ID)
	assert.Equal(t, "Şarj Edilebilir", product.Features[1].Name)
	assert.Nil(t, product.Category)

	events := publishedEvents(t, deps.publisher)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventProductCreated, events[0].EventType)
	assert.Equal(t, int64(42), events[0].EntityID)
}

func TestCatalogService_CreateProduct_FeatureDedup(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestService()

	var changes entity.ProductChanges
	deps.featureRepo.On("GetByIDs", ctx, []int64{3, 1, 2}).Return(catalogFeatures(), nil)
	deps.productRepo.On("Create", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Product).ID = 7
			changes = args.Get(2).(entity.ProductChanges)
		}).
		Return(nil)
	expectReload(deps, &entity.Product{ID: 7, Title: "Nova"}, nil, featureLinks(7, 3, 1, 2), catalogFeatures())

	product, err := svc.CreateProduct(ctx, &entity.ProductInput{
		Title:      strPtr("Nova"),
		FeatureIDs: []int64{3, 1, 3, 2},
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, *changes.FeatureIDs)
	require.Len(t, product.Features, 3)
	assert.Equal(t, "Su Geçirmez", product.Features[0].Name)
	assert.Equal(t, "Bluetooth", product.Features[1].Name)
	assert.Equal(t, "Şarj Edilebilir", product.Features[2].Name)
}

func TestCatalogService_CreateProduct_Defaults(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestService()

	var created entity.Product
	var changes entity.ProductChanges
	deps.productRepo.On("Create", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(*entity.Product)
			p.ID = 8
			created = *p
			changes = args.Get(2).(entity.ProductChanges)
		}).
		Return(nil)
	expectReload(deps, &entity.Product{ID: 8, Title: "Basic"}, nil, nil, nil)

	product, err := svc.CreateProduct(ctx, &entity.ProductInput{
		Title:     strPtr("  Basic "),
		MainImage: strPtr("  "),
	})

	require.NoError(t, err)
	assert.Equal(t, "Basic", created.Title)
	assert.Equal(t, entity.SegmentMid, created.Segment)
	assert.Nil(t, created.MainImage)
	assert.Nil(t, changes.MainImage)
	assert.Nil(t, changes.AdditionalImages)
	assert.Nil(t, changes.FeatureIDs)
	assert.Equal(t, fixedNow, created.CreatedAt)

	assert.Nil(t, product.MainImage)
	assert.NotNil(t, product.AdditionalImages)
	assert.Empty(t, product.AdditionalImages)
	assert.NotNil(t, product.Features)
}

func TestCatalogService_CreateProduct_SegmentAlias(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestService()

	var created entity.Product
	deps.productRepo.On("Create", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(*entity.Product)
			p.ID = 9
			created = *p
		}).
		Return(nil)
	expectReload(deps, &entity.Product{ID: 9, Title: "Giriş", Segment: entity.SegmentEntry}, nil, nil, nil)

	_, err := svc.CreateProduct(ctx, &entity.ProductInput{Title: strPtr("Giriş"), Segment: strPtr("Giriş")})

	require.NoError(t, err)
	assert.Equal(t, entity.SegmentEntry, created.Segment)
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		input entity.ProductInput
		setup func(d *testDeps)
	}{
		{name: "missing title", input: entity.ProductInput{}},
		{name: "blank title", input: entity.ProductInput{Title: strPtr(" \t ")}},
		{name: "unknown segment", input: entity.ProductInput{Title: strPtr("X"), Segment: strPtr("gold")}},
		{
			name:  "unknown category",
			input: entity.ProductInput{Title: strPtr("X"), CategoryID: int64Ptr(77)},
			setup: func(d *testDeps) {
				d.categoryRepo.On("GetByID", ctx, int64(77)).Return(nil, repository.ErrCategoryNotFound)
			},
		},
		{
			name:  "unknown feature",
			input: entity.ProductInput{Title: strPtr("X"), FeatureIDs: []int64{1, 99}},
			setup: func(d *testDeps) {
				d.featureRepo.On("GetByIDs", ctx, []int64{1, 99}).Return(catalogFeatures()[:1], nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := newTestService()
			if tt.setup != nil {
				tt.setup(deps)
			}

			product, err := svc.CreateProduct(ctx, &tt.input)

			assert.Nil(t, product)
			assert.ErrorIs(t, err, ErrValidation)
			deps.productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCatalogService_CreateProduct_StorageError(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestService()

	deps.productRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(errors.New("deadlock detected"))

	product, err := svc.CreateProduct(ctx, &entity.ProductInput{Title: strPtr("X")})

	assert.Nil(t, product)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, "internal server error", Message(err))
	assert.Empty(t, publishedEvents(t, deps.publisher))
}

func TestCatalogService_CreateProduct_FeatureDeletedConcurrently(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestService()

	deps.featureRepo.On("GetByIDs", ctx, []int64{1}).Return(catalogFeatures()[:1], nil)
	deps.productRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(repository.ErrFeatureNotFound)

	product, err := svc.CreateProduct(ctx, &entity.ProductInput{Title: strPtr("X"), FeatureIDs: []int64{1}})

	assert.Nil(t, product)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, publishedEvents(t, deps.publisher))
}

func TestCatalogService_CreateProduct_PublishErrorIgnored(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestService()
	deps.publisher.ExpectedCalls = nil
	deps.publisher.On("PublishMessage", ctx, "5", mock.Anything).Return(errors.New("kafka unavailable"))

	deps.productRepo.On("Create", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.Product).ID = 5 }).
		Return(nil)
	expectReload(deps, &entity.Product{ID: 5, Title: "X"}, nil, nil, nil)

	product, err := svc.CreateProduct(ctx, &entity.ProductInput{Title: strPtr("X")})

	require.NoError(t, err)
	assert.Equal(t, int64(5), product.ID)
	deps.publisher.AssertExpectations(t)
}

func TestCatalogService_UpdateProduct_ReplacesCollections(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestService()

	existing := &entity.Product{ID: 11, Title: "Nova", Segment: entity.SegmentMid}
	var recorded []entity.ProductChanges
	deps.productRepo.On("Update", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { recorded = append(recorded, args.Get(2).(entity.ProductChanges)) }).
		Return(nil)
	expectReload(deps, existing, nil, nil, nil)

	// features: [] очищает связи
	product, err := svc.UpdateProduct(ctx, 11, &entity.ProductInput{FeatureIDs: []int64{}})
	require.NoError(t, err)
	assert.Empty(t, product.Features)

	// пустой запрос ничего не трогает
	_, err = svc.UpdateProduct(ctx, 11, &entity.ProductInput{})
	require.NoError(t, err)

	require.Len(t, recorded, 2)
	require.NotNil(t, recorded[0].FeatureIDs)
	assert.Empty(t, *recorded[0].FeatureIDs)
	assert.Nil(t, recorded[0].AdditionalImages)
	assert.Nil(t, recorded[0].MainImage)

	assert.Nil(t, recorded[1].FeatureIDs)
	assert.Nil(t, recorded[1].AdditionalImages)
	assert.Nil(t, recorded[1].MainImage)
	deps.featureRepo.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
}

func TestCatalogService_UpdateProduct_MergesFields(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestService()

	existing := &entity.Product{
		ID:               12,
		Title:            "Nova",
		ShortDescription: "kısa",
		LongDescription:  "uzun",
		CategoryID:       3,
		Segment:          entity.SegmentMid,
		MainImage:        strPtr("/old.jpg"),
	}

	var updated entity.Product
	var changes entity.ProductChanges
	deps.productRepo.On("GetByID", ctx, int64(12)).Return(existing, nil)
	deps.categoryRepo.On("GetByID", ctx, int64(5)).Return(&entity.Category{ID: 5, Name: "Kulak Arkası"}, nil)
	deps.productRepo.On("Update", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			updated = *args.Get(1).(*entity.Product)
			changes = args.Get(2).(entity.ProductChanges)
		}).
		Return(nil)
	deps.productRepo.On("GetImages", ctx, []int64{12}).Return([]entity.ProductImage{
		{ProductID: 12, Path: "/new.jpg", IsPrimary: true},
		{ProductID: 12, Path: "/d1.jpg", DisplayOrder: 1},
	}, nil)
	deps.productRepo.On("GetFeatureLinks", ctx, []int64{12}).Return(nil, nil)

	product, err := svc.UpdateProduct(ctx, 12, &entity.ProductInput{
		Segment:          strPtr("orta"),
		CategoryID:       int64Ptr(5),
		MainImage:        strPtr("/new.jpg"),
		AdditionalImages: []string{"/d1.jpg", " "},
	})

	require.NoError(t, err)
	assert.Equal(t, "Nova", updated.Title)
	assert.Equal(t, "kısa", updated.ShortDescription)
	assert.Equal(t, "uzun", updated.LongDescription)
	assert.Equal(t, int64(5), updated.CategoryID)
	assert.Equal(t, entity.SegmentMid, updated.Segment)
	assert.Equal(t, "/new.jpg", *updated.MainImage)
	assert.Equal(t, fixedNow, updated.UpdatedAt)
	assert.Equal(t, "/new.jpg", *changes.MainImage)
	assert.Equal(t, []string{"/d1.jpg"}, *changes.AdditionalImages)

	assert.Equal(t, "/new.jpg", *product.MainImage)
	assert.Equal(t, []string{"/d1.jpg"}, product.AdditionalImages)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Kulak Arkası", product.Category.Name)
}

func TestCatalogService_UpdateProduct_ClearsCategory(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestService()

	existing := &entity.Product{ID: 13, Title: "Nova", CategoryID: 3}
	var updated entity.Product
	deps.productRepo.On("Update", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { updated = *args.Get(1).(*entity.Product) }).
		Return(nil)
	expectReload(deps, existing, nil, nil, nil)
	deps.categoryRepo.On("GetByID", ctx, int64(3)).Return(nil, repository.ErrCategoryNotFound).Maybe()

	_, err := svc.UpdateProduct(ctx, 13, &entity.ProductInput{CategoryID: int64Ptr(0)})

	require.NoError(t, err)
	assert.Equal(t, entity.UncategorizedID, updated.CategoryID)
}

func TestCatalogService_UpdateProduct_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		svc, deps := newTestService()
		deps.productRepo.On("GetByID", ctx, int64(404)).Return(nil, repository.ErrProductNotFound)

		_, err := svc.UpdateProduct(ctx, 404, &entity.ProductInput{Title: strPtr("X")})

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleted concurrently", func(t *testing.T) {
		svc, deps := newTestService()
		deps.productRepo.On("GetByID", ctx, int64(14)).Return(&entity.Product{ID: 14, Title: "X"}, nil)
		deps.productRepo.On("Update", ctx, mock.Anything, mock.Anything).Return(repository.ErrProductNotFound)

		_, err := svc.UpdateProduct(ctx, 14, &entity.ProductInput{Title: strPtr("Y")})

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("feature deleted concurrently", func(t *testing.T) {
		svc, deps := newTestService()
		deps.productRepo.On("GetByID", ctx, int64(14)).Return(&entity.Product{ID: 14, Title: "X"}, nil)
		deps.featureRepo.On("GetByIDs", ctx, []int64{2}).Return(catalogFeatures()[1:2], nil)
		deps.productRepo.On("Update", ctx, mock.Anything, mock.Anything).Return(repository.ErrFeatureNotFound)

		_, err := svc.UpdateProduct(ctx, 14, &entity.ProductInput{FeatureIDs: []int64{2}})

		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, publishedEvents(t, deps.publisher))
	})

	t.Run("blank title", func(t *testing.T) {
		svc, deps := newTestService()
		deps.productRepo.On("GetByID", ctx, int64(14)).Return(&entity.Product{ID: 14, Title: "X"}, nil)

		_, err := svc.UpdateProduct(ctx, 14, &entity.ProductInput{Title: strPtr("  ")})

		assert.ErrorIs(t, err, ErrValidation)
		deps.productRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown segment", func(t *testing.T) {
		svc, deps := newTestService()
		deps.productRepo.On("GetByID", ctx, int64(14)).Return(&entity.Product{ID: 14, Title: "X"}, nil)

		_, err := svc.UpdateProduct(ctx, 14, &entity.ProductInput{Segment: strPtr("platinum")})

		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, deps := newTestService()
		deps.productRepo.On("Delete", ctx, int64(21)).Return(nil)

		require.NoError(t, svc.DeleteProduct(ctx, 21))

		events := publishedEvents(t, deps.publisher)
		require.Len(t, events, 1)
		assert.Equal(t, entity.EventProductDeleted, events[0].EventType)
	})

	t.Run("not found", func(t *testing.T) {
		svc, deps := newTestService()
		deps.productRepo.On("Delete", ctx, int64(404)).Return(repository.ErrProductNotFound)

		assert.ErrorIs(t, svc.DeleteProduct(ctx, 404), ErrNotFound)
	})
}

func TestCatalogService_ListProducts(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestService()

	segment := entity.SegmentPremium
	filter := entity.ProductFilter{Segment: &segment}
	deps.productRepo.On("GetAll", ctx, filter).Return([]entity.Product{
		{ID: 2, Title: "Vista V30", Segment: entity.SegmentPremium},
		{ID: 1, Title: "Legacy", Segment: entity.SegmentPremium},
	}, nil)
	deps.productRepo.On("GetImages", ctx, []int64{2, 1}).Return([]entity.ProductImage{
		{ProductID: 1, Path: "/x.jpg", IsPrimary: true},
		{ProductID: 1, Path: "/y.jpg", DisplayOrder: 1},
		{ProductID: 2, Path: "/a.jpg", IsPrimary: true},
	}, nil)
	deps.productRepo.On("GetFeatureLinks", ctx, []int64{2, 1}).Return([]entity.ProductFeature{
		{ProductID: 1, Label: "Bluetooth", DisplayOrder: 1},
		{ProductID: 2, FeatureID: int64Ptr(3), DisplayOrder: 1},
	}, nil)
	deps.featureRepo.On("GetByIDs", ctx, []int64{3}).Return(catalogFeatures()[2:], nil)

	products, err := svc.ListProducts(ctx, filter)

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "/a.jpg", *products[0].MainImage)
	assert.Equal(t, "Su Geçirmez", products[0].Features[0].Name)
	assert.Equal(t, "/x.jpg", *products[1].MainImage)
	assert.Equal(t, []string{"/y.jpg"}, products[1].AdditionalImages)
	assert.Equal(t, []entity.FeatureRef{{Name: "Bluetooth"}}, products[1].Features)
}

func TestCatalogService_ListProducts_Empty(t *testing.T) {
	ctx := context.Background()
	svc, deps := newTestService()

	deps.productRepo.On("GetAll", ctx, entity.ProductFilter{}).Return(nil, nil)

	products, err := svc.ListProducts(ctx, entity.ProductFilter{})

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	deps.productRepo.AssertNotCalled(t, "GetImages", mock.Anything, mock.Anything)
}
