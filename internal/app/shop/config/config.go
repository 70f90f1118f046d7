package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит все настройки сервиса
// Включает конфигурацию для HTTP сервера, PostgreSQL, Redis, Kafka, JWT и загрузки файлов
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Upload   UploadConfig
	Admin    AdminConfig
	CORS     CORSConfig
	Logstash LogstashConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
}

type DatabaseConfig struct {
	Host     string // Хост PostgreSQL
	Port     string // Порт PostgreSQL
	User     string // Имя пользователя БД
	Password string // Пароль БД
	DBName   string // Имя базы данных
	SSLMode  string // Режим SSL (disable/require/verify-full)
}

// RedisConfig - настройки подключения к Redis для кеширования
type RedisConfig struct {
	Host     string // Хост Redis
	Port     string // Порт Redis
	Password string // Пароль Redis (опционально)
	DB       int    // Номер БД Redis (0-15)
}

type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик для доменных событий магазина
}

// JWTConfig - настройки для выдачи и проверки JWT токенов
type JWTConfig struct {
	Secret        string        // Секретный ключ для подписи токенов
	TokenDuration time.Duration // Время жизни access токена
}

// UploadConfig - настройки загрузки изображений товаров
type UploadConfig struct {
	Dir         string // Каталог для сохранения файлов
	MaxSizeMB   int64  // Максимальный размер файла в мегабайтах
	ServePrefix string // URL-префикс, по которому файлы раздаются
}

// AdminConfig - учетная запись администратора, создаваемая при старте
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

type CORSConfig struct {
	AllowedOrigins []string // Разрешенные origin для браузерных запросов
}

// LogstashConfig - отправка логов в Logstash (опционально)
type LogstashConfig struct {
	Enabled bool
	Address string // Адрес Logstash в формате host:port
}

func Load() (*Config, error) {
	tokenDuration, err := time.ParseDuration(getEnv("JWT_TOKEN_DURATION", "720h")) // 30 дней
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TOKEN_DURATION: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "cedarcart"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "shop_events"),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			TokenDuration: tokenDuration,
		},
		Upload: UploadConfig{
			Dir:         getEnv("UPLOAD_DIR", "uploads"),
			MaxSizeMB:   int64(getEnvInt("UPLOAD_MAX_SIZE_MB", 5)),
			ServePrefix: getEnv("UPLOAD_SERVE_PREFIX", "/uploads"),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		},
		Logstash: LogstashConfig{
			Enabled: getEnv("LOGSTASH_ENABLED", "false") == "true",
			Address: getEnv("LOGSTASH_ADDR", "localhost:5000"),
		},
	}, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port для подключения
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// MaxSizeBytes возвращает лимит размера файла в байтах
func (c *UploadConfig) MaxSizeBytes() int64 {
	return c.MaxSizeMB << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
