package entity

import (
	"strings"
	"time"
)

// UncategorizedID - служебная категория "Без категории".
// Никогда не хранится в таблице categories и не редактируется.
const UncategorizedID int64 = 0

// Segment - ценовой сегмент слухового аппарата
type Segment string

const (
	SegmentEntry   Segment = "entry"
	SegmentMid     Segment = "mid"
	SegmentPremium Segment = "premium"
)

// segmentAliases - значения, которые встречаются в старых формах админки
var segmentAliases = map[string]Segment{
	"entry":   SegmentEntry,
	"giris":   SegmentEntry,
	"giriş":   SegmentEntry,
	"mid":     SegmentMid,
	"orta":    SegmentMid,
	"premium": SegmentPremium,
}

// ParseSegment приводит строку к сегменту. ok=false для неизвестных значений.
func ParseSegment(value string) (Segment, bool) {
	s, ok := segmentAliases[strings.ToLower(strings.TrimSpace(value))]
	return s, ok
}

// FeatureIcon - символическое имя иконки особенности.
// Отрисовка иконок - забота фронтенда, здесь только закрытый список имен.
type FeatureIcon string

const (
	IconBluetooth FeatureIcon = "bluetooth"
	IconBattery   FeatureIcon = "battery"
	IconWater     FeatureIcon = "water"
	IconVolume    FeatureIcon = "volume"
	IconWifi      FeatureIcon = "wifi"
	IconEar       FeatureIcon = "ear"
	IconShield    FeatureIcon = "shield"
	IconStar      FeatureIcon = "star"
	IconZap       FeatureIcon = "zap"
	IconPhone     FeatureIcon = "phone"
	IconSettings  FeatureIcon = "settings"
	IconCheck     FeatureIcon = "check"

	// IconFallback используется для пустых и неизвестных значений
	IconFallback = IconCheck
)

var knownIcons = map[FeatureIcon]struct{}{
	IconBluetooth: {}, IconBattery: {}, IconWater: {}, IconVolume: {},
	IconWifi: {}, IconEar: {}, IconShield: {}, IconStar: {},
	IconZap: {}, IconPhone: {}, IconSettings: {}, IconCheck: {},
}

// NormalizeIcon возвращает иконку из списка или IconFallback
func NormalizeIcon(value string) FeatureIcon {
	icon := FeatureIcon(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := knownIcons[icon]; ok {
		return icon
	}
	return IconFallback
}

// Category - категория товаров, допускается один уровень вложенности
type Category struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	ParentID  *int64    `json:"parent_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`

	// Parent нужен только для внешнего ключа parent_id -> categories.id
	Parent *Category `json:"-" gorm:"foreignKey:ParentID"`
}

// Feature - особенность из общего справочника (Bluetooth, Su Geçirmez, ...)
type Feature struct {
	ID           int64       `json:"id" gorm:"primaryKey"`
	Name         string      `json:"name" gorm:"not null"`
	Icon         FeatureIcon `json:"icon" gorm:"type:varchar(32);not null;default:check"`
	DisplayOrder int         `json:"display_order" gorm:"not null;default:0"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Product - строка товара. MainImage - денормализованная копия главного
// изображения из product_images, пишется только вместе с ним.
type Product struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	Title            string    `json:"title" gorm:"not null"`
	ShortDescription string    `json:"short_description"`
	LongDescription  string    `json:"long_description"`
	CategoryID       int64     `json:"category_id" gorm:"not null;default:0;index"`
	Segment          Segment   `json:"segment" gorm:"type:varchar(16);not null;default:mid"`
	MainImage        *string   `json:"main_image"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProductImage - изображение товара. Не больше одной строки с IsPrimary на товар,
// дополнительные изображения нумеруются с 1.
type ProductImage struct {
	ID           int64  `json:"id" gorm:"primaryKey"`
	ProductID    int64  `json:"product_id" gorm:"not null;index"`
	Path         string `json:"path" gorm:"not null"`
	IsPrimary    bool   `json:"is_primary" gorm:"not null;default:false"`
	DisplayOrder int    `json:"display_order" gorm:"not null;default:0"`
}

// ProductFeature - связь товара с особенностью.
// FeatureID ссылается на справочник, Label хранит свободный текст из legacy схемы.
type ProductFeature struct {
	ID           int64  `json:"id" gorm:"primaryKey"`
	ProductID    int64  `json:"product_id" gorm:"not null;index"`
	FeatureID    *int64 `json:"feature_id" gorm:"index"`
	Label        string `json:"label"`
	DisplayOrder int    `json:"display_order" gorm:"not null;default:0"`

	Feature *Feature `json:"-" gorm:"foreignKey:FeatureID"`
}

// FeatureRef - особенность в составе собранного товара
type FeatureRef struct {
	ID   *int64      `json:"id,omitempty"`
	Name string      `json:"name"`
	Icon FeatureIcon `json:"icon,omitempty"`
}

// ProductDetail - товар, собранный вместе с изображениями и особенностями
type ProductDetail struct {
	Product
	AdditionalImages []string     `json:"additional_images"`
	Features         []FeatureRef `json:"features"`
	Category         *Category    `json:"category,omitempty"`
}

// CategoryNode - корневая категория с дочерними, для публичного сайта
type CategoryNode struct {
	Category
	Children []Category `json:"children"`
}

// CatalogEvent - событие изменения каталога для Kafka
type CatalogEvent struct {
	EventType string    `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED, FEATURE_DELETED, ...
	EntityID  int64     `json:"entity_id"`
	Title     string    `json:"title,omitempty"`
	Segment   Segment   `json:"segment,omitempty"`
	Affected  int64     `json:"affected,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventProductCreated  = "PRODUCT_CREATED"
	EventProductUpdated  = "PRODUCT_UPDATED"
	EventProductDeleted  = "PRODUCT_DELETED"
	EventFeatureDeleted  = "FEATURE_DELETED"
	EventCategoryDeleted = "CATEGORY_DELETED"
)
