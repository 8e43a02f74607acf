package handler

import (
	"net/http"
	"strconv"
	"strings"

	"hearwell/catalog-service/internal/app/catalog/entity"
	"hearwell/catalog-service/internal/app/catalog/service"
	"hearwell/catalog-service/internal/app/catalog/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CatalogHandler обрабатывает HTTP запросы админки и публичного API каталога
type CatalogHandler struct {
	catalogService service.CatalogServiceInterface
	fileSaver      util.FileSaver
	validator      *validator.Validate
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService service.CatalogServiceInterface, fileSaver util.FileSaver) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		fileSaver:      fileSaver,
		validator:      validator.New(),
	}
}

// === CATEGORIES HANDLERS ===

// GetAllCategories обрабатывает GET /categories (с кешированием)
func (h *CatalogHandler) GetAllCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		handleServiceError(c, "list categories", err)
		return
	}

	c.JSON(http.StatusOK, entity.CategoryListResponse{
		Categories: categories,
		Total:      len(categories),
	})
}

// GetCategory обрабатывает GET /categories/:id
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "category")
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, "get category", err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// CreateCategory обрабатывает POST /categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req entity.CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, "create category", err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory обрабатывает PUT /categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "category")
	if !ok {
		return
	}

	var req entity.CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, "update category", err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory обрабатывает DELETE /categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "category")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		handleServiceError(c, "delete category", err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Category deleted successfully"})
}

// === FEATURES HANDLERS ===

// GetAllFeatures обрабатывает GET /features
func (h *CatalogHandler) GetAllFeatures(c *gin.Context) {
	features, err := h.catalogService.ListFeatures(c.Request.Context())
	if err != nil {
		handleServiceError(c, "list features", err)
		return
	}

	c.JSON(http.StatusOK, entity.FeatureListResponse{
		Features: features,
		Total:    len(features),
	})
}

// GetFeature обрабатывает GET /features/:id
func (h *CatalogHandler) GetFeature(c *gin.Context) {
	id, ok := parseID(c, "feature")
	if !ok {
		return
	}

	feature, err := h.catalogService.GetFeature(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, "get feature", err)
		return
	}

	c.JSON(http.StatusOK, feature)
}

// CreateFeature обрабатывает POST /features
func (h *CatalogHandler) CreateFeature(c *gin.Context) {
	var req entity.CreateFeatureRequest
	if !h.bindJSON(c, &req) {
		return
	}

	feature, err := h.catalogService.CreateFeature(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, "create feature", err)
		return
	}

	c.JSON(http.StatusCreated, feature)
}

// UpdateFeature обрабатывает PUT /features/:id
func (h *CatalogHandler) UpdateFeature(c *gin.Context) {
	id, ok := parseID(c, "feature")
	if !ok {
		return
	}

	var req entity.UpdateFeatureRequest
	if !h.bindJSON(c, &req) {
		return
	}

	feature, err := h.catalogService.UpdateFeature(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, "update feature", err)
		return
	}

	c.JSON(http.StatusOK, feature)
}

// DeleteFeature обрабатывает DELETE /features/:id и сообщает число удаленных связей
func (h *CatalogHandler) DeleteFeature(c *gin.Context) {
	id, ok := parseID(c, "feature")
	if !ok {
		return
	}

	removed, err := h.catalogService.DeleteFeature(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, "delete feature", err)
		return
	}

	c.JSON(http.StatusOK, entity.FeatureDeleteResponse{
		Message:             "Feature deleted successfully",
		RemovedAssociations: removed,
	})
}

// === PRODUCTS HANDLERS ===

// GetAllProducts обрабатывает GET /products и GET /public/products
// Необязательные фильтры: ?segment=&category_id=
func (h *CatalogHandler) GetAllProducts(c *gin.Context) {
	var filter entity.ProductFilter

	if raw := strings.TrimSpace(c.Query("segment")); raw != "" {
		segment, ok := entity.ParseSegment(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "Invalid segment")
			return
		}
		filter.Segment = &segment
	}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || categoryID < 0 {
			respondError(c, http.StatusBadRequest, "Invalid category ID")
			return
		}
		filter.CategoryID = &categoryID
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, "list products", err)
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Products: products,
		Total:    len(products),
	})
}

// GetProduct обрабатывает GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, "get product", err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct обрабатывает POST /products (multipart/form-data или JSON)
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	input, ok := h.bindProduct(c)
	if !ok {
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		handleServiceError(c, "create product", err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct обрабатывает PUT /products/:id
// Отсутствующие поля не меняются, переданные коллекции заменяются целиком
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}

	input, ok := h.bindProduct(c)
	if !ok {
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		handleServiceError(c, "update product", err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct обрабатывает DELETE /products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		handleServiceError(c, "delete product", err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Product deleted successfully"})
}

// === PUBLIC HANDLERS ===

// GetCategoryTree обрабатывает GET /public/categories
func (h *CatalogHandler) GetCategoryTree(c *gin.Context) {
	tree, err := h.catalogService.CategoryTree(c.Request.Context())
	if err != nil {
		handleServiceError(c, "category tree", err)
		return
	}

	c.JSON(http.StatusOK, entity.CategoryTreeResponse{Categories: tree})
}

// RecommendProducts обрабатывает POST /public/quiz
func (h *CatalogHandler) RecommendProducts(c *gin.Context) {
	var answers entity.QuizAnswers
	if !h.bindJSON(c, &answers) {
		return
	}

	result, err := h.catalogService.RecommendProducts(c.Request.Context(), &answers)
	if err != nil {
		handleServiceError(c, "quiz recommendation", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// === HELPER FUNCTIONS ===

// bindJSON декодирует и валидирует тело запроса, при ошибке сам отвечает 400
func (h *CatalogHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := decodeJSON(c.Request.Body, dst); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return false
	}
	return true
}

func (h *CatalogHandler) bindProduct(c *gin.Context) (*entity.ProductInput, bool) {
	input, err := bindProductInput(c, h.fileSaver)
	if err != nil {
		handleServiceError(c, "read product form", err)
		return nil, false
	}
	if err := h.validator.Struct(input); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return nil, false
	}
	return input, true
}
