package util

import (
	"context"
	"io"
	"time"
)

// Cache интерфейс кеша списков каталога (Redis или память процесса)
// Значения хранятся в JSON
type Cache interface {
	// Get заполняет dest и возвращает true при попадании в кеш
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// FileSaver сохраняет загруженный файл и возвращает путь/URL,
// который записывается в каталог
type FileSaver interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}
