package migration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

// Legacy колонки товара: до нормализации изображения и особенности
// хранились JSON массивами прямо в строке products.
const (
	legacyImagesColumn   = "additional_images"
	legacyFeaturesColumn = "features"
)

// legacyShape - какие legacy колонки найдены в таблице products
type legacyShape struct {
	AdditionalImages bool
	Features         bool
}

func (s legacyShape) detected() bool {
	return s.AdditionalImages || s.Features
}

// legacyProductRow - строка товара в старой схеме. Читается только этим пакетом.
type legacyProductRow struct {
	ID               int64
	MainImage        *string
	AdditionalImages datatypes.JSON
	Features         datatypes.JSON
}

// parseLegacyList разбирает legacy JSON список строк.
// Значение может быть массивом или строкой, внутри которой закодирован массив.
// Нестроковые элементы пропускаются.
func parseLegacyList(raw datatypes.JSON) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var value interface{}
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return nil, fmt.Errorf("invalid legacy json: %w", err)
	}

	if encoded, ok := value.(string); ok {
		encoded = strings.TrimSpace(encoded)
		if encoded == "" {
			return nil, nil
		}
		if err := json.Unmarshal([]byte(encoded), &value); err != nil {
			return nil, fmt.Errorf("invalid legacy json string: %w", err)
		}
	}

	switch v := value.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("legacy value is %T, expected array", value)
	}
}

// nonEmpty убирает пустые строки с сохранением порядка
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
