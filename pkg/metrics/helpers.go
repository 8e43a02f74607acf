package metrics

import (
	"time"
)

func RecordCacheHit(service, key string) {
	CacheHits.WithLabelValues(service, key).Inc()
}

func RecordCacheMiss(service, key string) {
	CacheMisses.WithLabelValues(service, key).Inc()
}

func RecordCacheError(service, operation string) {
	CacheErrors.WithLabelValues(service, operation).Inc()
}

func RecordKafkaMessageProduced(service, topic string, duration time.Duration) {
	KafkaMessagesProduced.WithLabelValues(service, topic).Inc()
	KafkaProduceDuration.WithLabelValues(service, topic).Observe(duration.Seconds())
}

func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}

type KafkaProduceTimer struct {
	service string
	topic   string
	start   time.Time
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{
		service: service,
		topic:   topic,
		start:   time.Now(),
	}
}

func (kt *KafkaProduceTimer) Success() {
	RecordKafkaMessageProduced(kt.service, kt.topic, time.Since(kt.start))
}

func (kt *KafkaProduceTimer) Error() {
	RecordKafkaError(kt.service, kt.topic, "produce")
}

func RecordCatalogMutation(entity, operation string) {
	CatalogMutations.WithLabelValues(entity, operation).Inc()
}
