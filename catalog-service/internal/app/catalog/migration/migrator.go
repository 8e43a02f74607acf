package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hearwell/catalog-service/internal/app/catalog/entity"
	"hearwell/pkg/logger"
	"hearwell/pkg/metrics"

	"gorm.io/gorm"
)

// Report - итог запуска переноса legacy данных
type Report struct {
	Detected bool // найдены legacy колонки
	Migrated int  // товары, для которых записана хотя бы одна строка
	Skipped  int  // товары без данных или уже перенесенные
	Failed   int  // товары, пропущенные из-за ошибки
}

// Migrator приводит схему к нормализованному виду и переносит данные
// из legacy JSON колонок в product_images и product_features.
type Migrator struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Migrator {
	return &Migrator{db: db, now: time.Now}
}

// legacy_migrations хранит товары, legacy данные которых уже перенесены.
// Такие товары больше не читаются: коллекции, очищенные через API после
// переноса, не восстанавливаются из legacy колонок.
const (
	createMarkersTableSQL = `CREATE TABLE IF NOT EXISTS legacy_migrations (product_id BIGINT PRIMARY KEY, migrated_at TIMESTAMPTZ NOT NULL)`
	insertMarkerSQL       = `INSERT INTO legacy_migrations (product_id, migrated_at) VALUES (?, ?) ON CONFLICT (product_id) DO NOTHING`
)

// EnsureSchema создает и дополняет нормализованные таблицы.
// Legacy колонки не удаляются.
func (m *Migrator) EnsureSchema(ctx context.Context) error {
	if err := m.repairReferences(ctx); err != nil {
		return err
	}

	err := m.db.WithContext(ctx).AutoMigrate(
		&entity.Category{},
		&entity.Feature{},
		&entity.Product{},
		&entity.ProductImage{},
		&entity.ProductFeature{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// repairReferences чинит ссылки, которые не дадут создать внешние ключи
// в старой базе: подкатегории удаленных родителей становятся корневыми,
// связи с удаленными особенностями удаляются.
func (m *Migrator) repairReferences(ctx context.Context) error {
	db := m.db.WithContext(ctx)

	if db.Migrator().HasTable(&entity.Category{}) {
		result := db.Exec(orphanCategoriesSQL)
		if result.Error != nil {
			return fmt.Errorf("failed to repair category parents: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			logger.Warn().Int64("categories", result.RowsAffected).Msg("Categories with missing parent moved to root")
		}
	}

	if db.Migrator().HasTable(&entity.ProductFeature{}) && db.Migrator().HasTable(&entity.Feature{}) {
		result := db.Exec(orphanFeatureLinksSQL)
		if result.Error != nil {
			return fmt.Errorf("failed to repair feature associations: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			logger.Warn().Int64("links", result.RowsAffected).Msg("Associations with missing features removed")
		}
	}
	return nil
}

const (
	orphanCategoriesSQL   = `UPDATE categories SET parent_id = NULL WHERE parent_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM categories AS p WHERE p.id = categories.parent_id)`
	orphanFeatureLinksSQL = `DELETE FROM product_features WHERE feature_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM features WHERE features.id = product_features.feature_id)`
)

// Run переносит legacy данные. Безопасен для повторного запуска:
// перенесенный товар отмечается в legacy_migrations и больше не читается,
// а коллекции, которые уже есть в нормализованных таблицах, не дублируются.
// Ошибка по одному товару логируется, перенос продолжается.
func (m *Migrator) Run(ctx context.Context) (*Report, error) {
	shape, err := m.detect(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Detected: shape.detected()}
	if !report.Detected {
		logger.Info().Msg("Legacy product columns not found, migration skipped")
		return report, nil
	}

	if err := m.db.WithContext(ctx).Exec(createMarkersTableSQL).Error; err != nil {
		return nil, fmt.Errorf("failed to create legacy_migrations: %w", err)
	}

	rows, err := m.loadRows(ctx, shape)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Bool("additional_images", shape.AdditionalImages).
		Bool("features", shape.Features).
		Int("products", len(rows)).
		Msg("Legacy product columns detected, migrating")

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		written, err := m.migrateProduct(ctx, row)
		switch {
		case err != nil:
			report.Failed++
			metrics.MigrationProducts.WithLabelValues("failed").Inc()
			logger.Warn().Err(err).Int64("product_id", row.ID).Msg("Failed to migrate legacy product, skipping")
		case written == 0:
			report.Skipped++
			metrics.MigrationProducts.WithLabelValues("skipped").Inc()
		default:
			report.Migrated++
			metrics.MigrationProducts.WithLabelValues("migrated").Inc()
		}
	}

	logger.Info().
		Int("migrated", report.Migrated).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("Legacy product migration finished")

	return report, nil
}

func (m *Migrator) detect(ctx context.Context) (legacyShape, error) {
	var columns []string
	err := m.db.WithContext(ctx).Raw(
		`SELECT column_name FROM information_schema.columns WHERE table_schema = CURRENT_SCHEMA() AND table_name = ? AND column_name IN ?`,
		"products", []string{legacyImagesColumn, legacyFeaturesColumn},
	).Scan(&columns).Error
	if err != nil {
		return legacyShape{}, fmt.Errorf("failed to inspect products columns: %w", err)
	}

	var shape legacyShape
	for _, column := range columns {
		switch column {
		case legacyImagesColumn:
			shape.AdditionalImages = true
		case legacyFeaturesColumn:
			shape.Features = true
		}
	}
	return shape, nil
}

func (m *Migrator) loadRows(ctx context.Context, shape legacyShape) ([]legacyProductRow, error) {
	query := fmt.Sprintf(
		`SELECT id, main_image, %s AS additional_images, %s AS features FROM products `+
			`WHERE NOT EXISTS (SELECT 1 FROM legacy_migrations WHERE legacy_migrations.product_id = products.id) ORDER BY id`,
		legacyColumnExpr(legacyImagesColumn, shape.AdditionalImages),
		legacyColumnExpr(legacyFeaturesColumn, shape.Features),
	)

	var rows []legacyProductRow
	if err := m.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load legacy products: %w", err)
	}
	return rows, nil
}

// legacyColumnExpr читает колонку как текст независимо от типа (text/json/jsonb)
func legacyColumnExpr(column string, present bool) string {
	if !present {
		return "'null'"
	}
	return fmt.Sprintf("COALESCE(%s::text, 'null')", column)
}

// migrateProduct переносит один товар в своей транзакции и возвращает
// количество записанных строк. Отметка о переносе пишется в той же транзакции,
// даже если все коллекции уже были на месте.
func (m *Migrator) migrateProduct(ctx context.Context, row legacyProductRow) (int, error) {
	images, err := parseLegacyList(row.AdditionalImages)
	if err != nil {
		return 0, fmt.Errorf("additional_images: %w", err)
	}
	labels, err := parseLegacyList(row.Features)
	if err != nil {
		return 0, fmt.Errorf("features: %w", err)
	}
	images = nonEmpty(images)
	labels = nonEmpty(labels)

	var mainImage string
	if row.MainImage != nil {
		mainImage = strings.TrimSpace(*row.MainImage)
	}

	if mainImage == "" && len(images) == 0 && len(labels) == 0 {
		return 0, nil
	}

	written := 0
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if mainImage != "" {
			n, err := backfillPrimaryImage(tx, row.ID, mainImage)
			if err != nil {
				return err
			}
			written += n
		}
		if len(images) > 0 {
			n, err := backfillSecondaryImages(tx, row.ID, images)
			if err != nil {
				return err
			}
			written += n
		}
		if len(labels) > 0 {
			n, err := backfillFeatureLabels(tx, row.ID, labels)
			if err != nil {
				return err
			}
			written += n
		}
		if err := tx.Exec(insertMarkerSQL, row.ID, m.now()).Error; err != nil {
			return fmt.Errorf("failed to mark product as migrated: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return written, nil
}

func backfillPrimaryImage(tx *gorm.DB, productID int64, path string) (int, error) {
	var existing int64
	err := tx.Model(&entity.ProductImage{}).
		Where("product_id = ? AND is_primary = ?", productID, true).
		Count(&existing).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count primary images: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	image := entity.ProductImage{ProductID: productID, Path: path, IsPrimary: true}
	if err := tx.Create(&image).Error; err != nil {
		return 0, fmt.Errorf("failed to insert primary image: %w", err)
	}
	return 1, nil
}

func backfillSecondaryImages(tx *gorm.DB, productID int64, paths []string) (int, error) {
	var existing int64
	err := tx.Model(&entity.ProductImage{}).
		Where("product_id = ? AND is_primary = ?", productID, false).
		Count(&existing).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count secondary images: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	images := make([]entity.ProductImage, 0, len(paths))
	for i, path := range paths {
		images = append(images, entity.ProductImage{ProductID: productID, Path: path, DisplayOrder: i + 1})
	}
	if err := tx.Create(&images).Error; err != nil {
		return 0, fmt.Errorf("failed to insert secondary images: %w", err)
	}
	return len(images), nil
}

func backfillFeatureLabels(tx *gorm.DB, productID int64, labels []string) (int, error) {
	var existing int64
	err := tx.Model(&entity.ProductFeature{}).
		Where("product_id = ?", productID).
		Count(&existing).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count feature associations: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	links := make([]entity.ProductFeature, 0, len(labels))
	for i, label := range labels {
		links = append(links, entity.ProductFeature{ProductID: productID, Label: label, DisplayOrder: i + 1})
	}
	if err := tx.Create(&links).Error; err != nil {
		return 0, fmt.Errorf("failed to insert feature labels: %w", err)
	}
	return len(links), nil
}
