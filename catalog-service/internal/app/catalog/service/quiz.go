package service

import (
	"context"
	"strings"

	"hearwell/catalog-service/internal/app/catalog/entity"
	"hearwell/pkg/metrics"
)

// Баллы за ответы квиза подбора аппарата. Каждый вопрос дает от 1 до 3 баллов.
var quizScores = struct {
	hearingLoss  map[string]int
	environment  map[string]int
	connectivity map[string]int
	budget       map[string]int
}{
	hearingLoss:  map[string]int{"mild": 1, "moderate": 2, "severe": 3},
	environment:  map[string]int{"quiet": 1, "mixed": 2, "noisy": 3},
	connectivity: map[string]int{"none": 1, "phone": 2, "streaming": 3},
	budget:       map[string]int{"low": 1, "medium": 2, "high": 3},
}

// RecommendSegment считает баллы квиза: 4-6 entry, 7-9 mid, 10-12 premium
func RecommendSegment(answers *entity.QuizAnswers) (entity.Segment, int, error) {
	questions := []struct {
		name   string
		answer string
		scores map[string]int
	}{
		{"hearing_loss", answers.HearingLoss, quizScores.hearingLoss},
		{"environment", answers.Environment, quizScores.environment},
		{"connectivity", answers.Connectivity, quizScores.connectivity},
		{"budget", answers.Budget, quizScores.budget},
	}

	total := 0
	for _, q := range questions {
		points, ok := q.scores[strings.ToLower(strings.TrimSpace(q.answer))]
		if !ok {
			return "", 0, validationError("unknown answer %q for %s", q.answer, q.name)
		}
		total += points
	}

	switch {
	case total <= 6:
		return entity.SegmentEntry, total, nil
	case total <= 9:
		return entity.SegmentMid, total, nil
	default:
		return entity.SegmentPremium, total, nil
	}
}

// RecommendProducts возвращает рекомендованный сегмент и товары этого сегмента
func (s *CatalogService) RecommendProducts(ctx context.Context, answers *entity.QuizAnswers) (*entity.QuizResult, error) {
	segment, score, err := RecommendSegment(answers)
	if err != nil {
		return nil, err
	}

	products, err := s.ListProducts(ctx, entity.ProductFilter{Segment: &segment})
	if err != nil {
		return nil, err
	}

	metrics.QuizRecommendations.WithLabelValues(string(segment)).Inc()
	return &entity.QuizResult{Segment: segment, Score: score, Products: products}, nil
}
