package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит все настройки Catalog Service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Log      LogConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host        string
	Port        string
	CORSOrigins []string // Адреса публичного сайта и админки
}

// DatabaseConfig - настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig - настройки Redis для кеширования справочников.
// Пустой Host означает in-memory кеш внутри процесса.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka для событий каталога.
// Пустой список брокеров отключает отправку событий.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// AuthConfig - единственная учетная запись администратора и параметры сессии
type AuthConfig struct {
	AdminUsername     string
	AdminPasswordHash string // bcrypt хеш, имеет приоритет над AdminPassword
	AdminPassword     string
	JWTSecret         string
	SessionTTL        time.Duration
}

// StorageConfig - куда сохранять загруженные изображения
type StorageConfig struct {
	Driver           string // local | cloudinary
	UploadDir        string
	PublicPrefix     string
	CloudinaryURL    string
	CloudinaryFolder string
}

type LogConfig struct {
	Level string
	File  string
}

// Load загружает конфигурацию из переменных окружения.
// Если рядом лежит .env файл, его значения подхватываются первыми.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL value: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        getEnv("SERVER_PORT", "8081"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "hearwell"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "catalog_events"),
		},
		Auth: AuthConfig{
			AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
			JWTSecret:         getEnv("JWT_SECRET", ""),
			SessionTTL:        sessionTTL,
		},
		Storage: StorageConfig{
			Driver:           getEnv("STORAGE_DRIVER", "local"),
			UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
			PublicPrefix:     getEnv("UPLOAD_PUBLIC_PREFIX", "/uploads"),
			CloudinaryURL:    getEnv("CLOUDINARY_URL", ""),
			CloudinaryFolder: getEnv("CLOUDINARY_FOLDER", "products"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.AdminPasswordHash == "" && c.Auth.AdminPassword == "" {
		return fmt.Errorf("either ADMIN_PASSWORD_HASH or ADMIN_PASSWORD must be set")
	}
	switch c.Storage.Driver {
	case "local":
	case "cloudinary":
		if c.Storage.CloudinaryURL == "" {
			return fmt.Errorf("CLOUDINARY_URL is required for cloudinary storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	return nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Enabled сообщает, настроен ли внешний Redis
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
