package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Кеш
// =============================================================================

var CacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total number of cache hits",
	},
	[]string{"service", "key"},
)

var CacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total number of cache misses",
	},
	[]string{"service", "key"},
)

var CacheErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_errors_total",
		Help: "Total number of cache errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// =============================================================================
// Бизнес-метрики каталога
// =============================================================================

// CatalogMutations - изменения каталога
// Labels: entity (product, category, feature), operation (create, update, delete)
var CatalogMutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_mutations_total",
		Help: "Total number of catalog mutations",
	},
	[]string{"entity", "operation"},
)

// MigrationProducts - результат переноса legacy товаров
var MigrationProducts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_migration_products_total",
		Help: "Products processed by the legacy schema migration",
	},
	[]string{"result"}, // migrated, skipped, failed
)

// QuizRecommendations - рекомендации квиза по сегментам
var QuizRecommendations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_quiz_recommendations_total",
		Help: "Total number of quiz recommendations by segment",
	},
	[]string{"segment"},
)

// AuthLogins - попытки входа в админку
var AuthLogins = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Total number of login attempts",
	},
	[]string{"status"}, // success, failed
)
