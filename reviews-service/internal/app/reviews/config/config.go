package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит все настройки Reviews Service
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	Scheduler SchedulerConfig
	Log       LogConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8083)
}

// DatabaseConfig - настройки подключения к PostgreSQL
// Таблицы reviews, products и users
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string // disable/require/verify-full
	LogSQL   bool   // Писать SQL запросы в лог на уровне debug
}

// RedisConfig - кеш списка активных отзывов
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int           // Номер БД Redis (0-15)
	CacheTTL time.Duration // Время жизни закешированного списка
}

// KafkaConfig - события REVIEW_CREATED и REVIEW_DELETED
type KafkaConfig struct {
	Brokers []string // Список брокеров через запятую (формат: host:port)
	Topic   string
}

// JWTConfig - проверка токенов, секрет должен совпадать с Auth Service
type JWTConfig struct {
	Secret string
}

// SchedulerConfig - фоновое обновление метрики активных отзывов
type SchedulerConfig struct {
	StatsSchedule string // Cron выражение, например "@every 1m"
}

type LogConfig struct {
	Level        string
	LogstashAddr string // Пусто - только stdout
}

// Load загружает конфигурацию из переменных окружения
// Если рядом лежит .env, его значения подхватываются, но не перекрывают уже заданные переменные
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cacheTTLSeconds, err := getEnvInt("REDIS_CACHE_TTL_SECONDS", 60)
	if err != nil {
		return nil, err
	}

	logSQL, err := strconv.ParseBool(getEnv("DB_LOG_SQL", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_LOG_SQL value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8083"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "shop"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			LogSQL:   logSQL,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			CacheTTL: time.Duration(cacheTTLSeconds) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "review_events"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		Scheduler: SchedulerConfig{
			StatsSchedule: getEnv("STATS_SCHEDULE", "@every 1m"),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
