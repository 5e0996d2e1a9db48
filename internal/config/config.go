package config

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"intellius-chat-be/pkg/database"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Chat     ChatConfig
	SMTP     SMTPConfig
	Secrets  SecretsConfig
}

type AppConfig struct {
	Name               string
	Version            string
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	StaticDir          string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Driver          string
	Connection      string // Full DSN, takes priority over the parts below
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type ChatConfig struct {
	MinReplyDelay time.Duration
	MaxReplyDelay time.Duration
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type SecretsConfig struct {
	Name     string
	Region   string
	CacheTTL time.Duration
}

const defaultCorsOrigins = "http://localhost:3000,http://localhost:8080,http://localhost:8000," +
	"https://localhost:3000,https://localhost:8080,https://localhost:8000"

// LoadEnvFile reads .env into the process environment without overriding what is
// already set.
func LoadEnvFile() {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}
}

func Load() *Config {
	LoadEnvFile()

	return &Config{
		App: AppConfig{
			Name:               getEnv("APP_NAME", "Intellius Chat API"),
			Version:            getEnv("APP_VERSION", "1.0.0"),
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", defaultCorsOrigins),
			StaticDir:          getEnv("STATIC_DIR", "static"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", database.DriverMySQL),
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			Host:            getEnv("DATABASE_HOST", "localhost"),
			Port:            getEnv("DATABASE_PORT", "3306"),
			User:            getEnv("DATABASE_USER", "root"),
			Password:        getEnv("DATABASE_PASSWORD", ""),
			Name:            getEnv("DATABASE_NAME", "intellius"),
			SSLMode:         getEnv("DATABASE_SSLMODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TTL", 7*24*time.Hour),
		},
		Chat: ChatConfig{
			MinReplyDelay: getEnvAsDuration("CHAT_REPLY_DELAY_MIN", time.Second),
			MaxReplyDelay: getEnvAsDuration("CHAT_REPLY_DELAY_MAX", 3*time.Second),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Intellius"),
		},
		Secrets: loadSecretsConfig(),
	}
}

func loadSecretsConfig() SecretsConfig {
	return SecretsConfig{
		Name:     getEnv("SECRET_NAME", ""),
		Region:   getEnv("AWS_REGION", "ap-northeast-2"),
		CacheTTL: getEnvAsDuration("SECRET_CACHE_TTL", 5*time.Minute),
	}
}

// LoadSecrets reads only the secret-store settings, which must be known before the
// rest of the configuration is resolved.
func LoadSecrets() SecretsConfig {
	LoadEnvFile()
	return loadSecretsConfig()
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

func (c *Config) CorsOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.App.CorsAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c DatabaseConfig) GormConfig() database.GormConfig {
	return database.GormConfig{
		Driver:          c.Driver,
		DSN:             c.Connection,
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		DBName:          c.Name,
		SSLMode:         c.SSLMode,
		MaxIdleConns:    c.MaxIdleConns,
		MaxOpenConns:    c.MaxOpenConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		LogLevel:        c.LogLevel,
	}
}

// SecretSeeder exports a named secret into the environment.
type SecretSeeder interface {
	SeedEnv(ctx context.Context, name string) ([]string, error)
}

// SeedFromSecrets pulls the configured secret into the environment before Load.
// Failures are reported and otherwise ignored; the service keeps whatever
// configuration it already has.
func SeedFromSecrets(ctx context.Context, seeder SecretSeeder, name string) []string {
	if name == "" {
		log.Println("Note: SECRET_NAME not set, skipping secret store")
		return nil
	}

	keys, err := seeder.SeedEnv(ctx, name)
	if err != nil {
		log.Printf("Warn: failed to load secret %q: %v. Continuing with existing configuration", name, err)
		return keys
	}

	log.Printf("Loaded %d keys from secret %q", len(keys), name)
	return keys
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(strValue, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
