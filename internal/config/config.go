package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Database DatabaseConfig
	Sheets   SheetsConfig
	Stripe   StripeConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers  []string
	GroupID  string
	Topics   TopicConfig
	MockMode bool
	Enabled  bool
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type TopicConfig struct {
	OrderCreated        string
	OrderStatusChanged  string
	OrderContentUpdated string
	OutletSubmitted     string
}

// SheetsConfig drives the public Google Sheets CSV export fetch.
type SheetsConfig struct {
	ExportURLTemplate string
	SheetGID          string
	FetchTimeout      time.Duration
}

type StripeConfig struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
}

func Load() *Config {
	kafkaEnabled := getEnvBool("KAFKA_ENABLED", true)
	mockMode := getEnvBool("KAFKA_MOCK_MODE", false)

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "market_user"),
			Password:     getEnv("DB_PASSWORD", "market_pass"),
			Database:     getEnv("DB_NAME", "link_market"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			GroupID:  getEnv("KAFKA_GROUP_ID", "link-market-group"),
			Enabled:  kafkaEnabled,
			MockMode: mockMode,
			Topics: TopicConfig{
				OrderCreated:        getEnv("KAFKA_TOPIC_ORDER_CREATED", "order-created"),
				OrderStatusChanged:  getEnv("KAFKA_TOPIC_ORDER_STATUS", "order-status-changed"),
				OrderContentUpdated: getEnv("KAFKA_TOPIC_ORDER_CONTENT", "order-content-updated"),
				OutletSubmitted:     getEnv("KAFKA_TOPIC_OUTLET_SUBMITTED", "outlet-submitted"),
			},
		},
		Sheets: SheetsConfig{
			ExportURLTemplate: getEnv("SHEETS_EXPORT_URL",
				"https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s"),
			SheetGID:     getEnv("SHEETS_GID", "0"),
			FetchTimeout: time.Duration(getEnvInt("SHEETS_FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Stripe: StripeConfig{
			SecretKey:  getEnv("STRIPE_SECRET_KEY", ""),
			SuccessURL: getEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/orders/success"),
			CancelURL:  getEnv("STRIPE_CANCEL_URL", "http://localhost:3000/orders/cancelled"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
