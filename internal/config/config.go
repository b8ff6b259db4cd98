package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Business BusinessConfig
}

type ServerConfig struct {
	Port         string
	PublicOrigin string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
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

type TopicConfig struct {
	GuestRegistered string
	GuestCheckedIn  string
	GuestDeleted    string
}

type AuthConfig struct {
	OIDCIssuer string
}

type BusinessConfig struct {
	// CutoffHour is the local hour before which "now" still belongs to
	// yesterday's event night.
	CutoffHour int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			PublicOrigin: getEnv("PUBLIC_ORIGIN", "http://localhost:3000"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "guestlist"),
			Password:     getEnv("DB_PASSWORD", "guestlist"),
			Database:     getEnv("DB_NAME", "guestlist"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			GroupID:  getEnv("KAFKA_GROUP_ID", "guestlist-group"),
			Enabled:  getEnvBool("KAFKA_ENABLED", true),
			MockMode: getEnvBool("KAFKA_MOCK_MODE", false),
			Topics: TopicConfig{
				GuestRegistered: getEnv("KAFKA_TOPIC_GUEST_REGISTERED", "guest-registered"),
				GuestCheckedIn:  getEnv("KAFKA_TOPIC_GUEST_CHECKED_IN", "guest-checked-in"),
				GuestDeleted:    getEnv("KAFKA_TOPIC_GUEST_DELETED", "guest-deleted"),
			},
		},
		Auth: AuthConfig{
			OIDCIssuer: getEnv("OIDC_ISSUER", ""),
		},
		Business: BusinessConfig{
			CutoffHour: getEnvInt("BUSINESS_CUTOFF_HOUR", 6),
		},
	}
}

// DSN builds the Postgres connection string for lib/pq.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
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
