package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"hearwell/catalog-service/internal/app/catalog/entity"
	"hearwell/catalog-service/internal/app/catalog/service"
	"hearwell/catalog-service/internal/app/catalog/util"

	"github.com/gin-gonic/gin"
)

const maxMultipartMemory = 32 << 20

// Поля формы товара
const (
	fieldTitle            = "title"
	fieldShortDescription = "short_description"
	fieldLongDescription  = "long_description"
	fieldCategoryID       = "category_id"
	fieldSegment          = "segment"
	fieldFeatures         = "features"
	fieldMainImagePath    = "main_image_path"
	fieldAdditionalPaths  = "additional_image_paths"

	fileMainImage        = "main_image"
	fileAdditionalImages = "additional_images"
)

var productTextFields = map[string]struct{}{
	fieldTitle: {}, fieldShortDescription: {}, fieldLongDescription: {}, fieldCategoryID: {},
	fieldSegment: {}, fieldFeatures: {}, fieldMainImagePath: {}, fieldAdditionalPaths: {},
}

var productFileFields = map[string]struct{}{
	fileMainImage: {}, fileAdditionalImages: {},
}

// formError - ошибка разбора формы, отдается клиенту как 400
func formError(format string, args ...interface{}) error {
	return &service.Error{Kind: service.ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// bindProductInput разбирает multipart/form-data или JSON в ProductInput.
// Неизвестные и неверно типизированные поля отклоняются.
// Загруженные файлы сохраняются через FileSaver, в каталог попадают только пути.
func bindProductInput(c *gin.Context, saver util.FileSaver) (*entity.ProductInput, error) {
	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		return bindProductForm(c, saver)
	case gin.MIMEJSON, "":
		var input entity.ProductInput
		if err := decodeJSON(c.Request.Body, &input); err != nil {
			return nil, formError("%s", err.Error())
		}
		return &input, nil
	default:
		return nil, formError("unsupported content type %q", c.ContentType())
	}
}

func bindProductForm(c *gin.Context, saver util.FileSaver) (*entity.ProductInput, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, formError("invalid multipart form: %s", err.Error())
	}
	form := c.Request.MultipartForm

	for key := range form.Value {
		if _, ok := productTextFields[key]; !ok {
			return nil, formError("unknown field %q", key)
		}
	}
	for key := range form.File {
		if _, ok := productFileFields[key]; !ok {
			return nil, formError("unknown file field %q", key)
		}
	}

	var input entity.ProductInput
	var err error

	if input.Title, err = singleValue(form, fieldTitle); err != nil {
		return nil, err
	}
	if input.ShortDescription, err = singleValue(form, fieldShortDescription); err != nil {
		return nil, err
	}
	if input.LongDescription, err = singleValue(form, fieldLongDescription); err != nil {
		return nil, err
	}
	if input.Segment, err = singleValue(form, fieldSegment); err != nil {
		return nil, err
	}
	if input.MainImage, err = singleValue(form, fieldMainImagePath); err != nil {
		return nil, err
	}

	categoryID, err := singleValue(form, fieldCategoryID)
	if err != nil {
		return nil, err
	}
	if categoryID != nil && strings.TrimSpace(*categoryID) != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(*categoryID), 10, 64)
		if err != nil {
			return nil, formError("category_id must be an integer")
		}
		input.CategoryID = &id
	}

	features, err := singleValue(form, fieldFeatures)
	if err != nil {
		return nil, err
	}
	if features != nil {
		input.FeatureIDs = []int64{}
		if raw := strings.TrimSpace(*features); raw != "" {
			if err := json.Unmarshal([]byte(raw), &input.FeatureIDs); err != nil {
				return nil, formError("features must be a JSON array of ids")
			}
			if input.FeatureIDs == nil {
				input.FeatureIDs = []int64{}
			}
		}
	}

	paths, err := singleValue(form, fieldAdditionalPaths)
	if err != nil {
		return nil, err
	}
	if paths != nil {
		input.AdditionalImages = []string{}
		if raw := strings.TrimSpace(*paths); raw != "" {
			if err := json.Unmarshal([]byte(raw), &input.AdditionalImages); err != nil {
				return nil, formError("additional_image_paths must be a JSON array of paths")
			}
			if input.AdditionalImages == nil {
				input.AdditionalImages = []string{}
			}
		}
	}

	ctx := c.Request.Context()

	if files := form.File[fileMainImage]; len(files) > 0 {
		if len(files) > 1 {
			return nil, formError("only one main_image file is allowed")
		}
		path, err := saveUpload(ctx, saver, files[0])
		if err != nil {
			return nil, err
		}
		input.MainImage = &path
	}

	// новые файлы дописываются после переданных путей
	if files := form.File[fileAdditionalImages]; len(files) > 0 {
		if input.AdditionalImages == nil {
			input.AdditionalImages = make([]string, 0, len(files))
		}
		for _, file := range files {
			path, err := saveUpload(ctx, saver, file)
			if err != nil {
				return nil, err
			}
			input.AdditionalImages = append(input.AdditionalImages, path)
		}
	}

	return &input, nil
}

// singleValue возвращает значение поля формы или nil, если поля нет
func singleValue(form *multipart.Form, key string) (*string, error) {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil, nil
	}
	if len(values) > 1 {
		return nil, formError("field %q must be sent once", key)
	}
	value := values[0]
	return &value, nil
}

func saveUpload(ctx context.Context, saver util.FileSaver, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", formError("failed to read upload %q", header.Filename)
	}
	defer file.Close()

	path, err := saver.Save(ctx, header.Filename, file)
	if err != nil {
		return "", fmt.Errorf("failed to save upload %q: %w", header.Filename, err)
	}
	return path, nil
}
