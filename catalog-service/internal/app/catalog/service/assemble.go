package service

import (
	"hearwell/catalog-service/internal/app/catalog/entity"
)

// assembleProducts собирает товары с изображениями и особенностями.
// images должны идти в порядке (is_primary desc, display_order asc), links - по display_order.
// Первое главное изображение становится main_image, остальные - additional_images.
// Связь со справочником разрешается по features, legacy связь отдает свой label.
func assembleProducts(
	products []entity.Product,
	images []entity.ProductImage,
	links []entity.ProductFeature,
	features map[int64]entity.Feature,
) []entity.ProductDetail {
	imagesByProduct := make(map[int64][]entity.ProductImage, len(products))
	for _, img := range images {
		imagesByProduct[img.ProductID] = append(imagesByProduct[img.ProductID], img)
	}
	linksByProduct := make(map[int64][]entity.ProductFeature, len(products))
	for _, link := range links {
		linksByProduct[link.ProductID] = append(linksByProduct[link.ProductID], link)
	}

	details := make([]entity.ProductDetail, 0, len(products))
	for _, p := range products {
		detail := entity.ProductDetail{
			Product:          p,
			AdditionalImages: []string{},
			Features:         []entity.FeatureRef{},
		}
		detail.MainImage = nil

		for _, img := range imagesByProduct[p.ID] {
			if img.IsPrimary && detail.MainImage == nil {
				path := img.Path
				detail.MainImage = &path
				continue
			}
			detail.AdditionalImages = append(detail.AdditionalImages, img.Path)
		}

		for _, link := range linksByProduct[p.ID] {
			if ref, ok := resolveFeature(link, features); ok {
				detail.Features = append(detail.Features, ref)
			}
		}

		details = append(details, detail)
	}
	return details
}

func resolveFeature(link entity.ProductFeature, features map[int64]entity.Feature) (entity.FeatureRef, bool) {
	if link.FeatureID != nil {
		feature, ok := features[*link.FeatureID]
		if !ok {
			return entity.FeatureRef{}, false
		}
		id := feature.ID
		return entity.FeatureRef{ID: &id, Name: feature.Name, Icon: feature.Icon}, true
	}
	if link.Label == "" {
		return entity.FeatureRef{}, false
	}
	return entity.FeatureRef{Name: link.Label}, true
}

// linkedFeatureIDs возвращает уникальные id справочника из связей
func linkedFeatureIDs(links []entity.ProductFeature) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		if link.FeatureID == nil {
			continue
		}
		if _, ok := seen[*link.FeatureID]; ok {
			continue
		}
		seen[*link.FeatureID] = struct{}{}
		ids = append(ids, *link.FeatureID)
	}
	return ids
}

// dedupeIDs убирает повторы, сохраняя порядок первого появления
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
