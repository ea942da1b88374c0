package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Server struct {
		Port            string
		GinMode         string
		Environment     string
		ShutdownTimeout time.Duration
	}

	Log struct {
		Level string
	}

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}

	Auth struct {
		JWTSecret string
		Issuer    string
		TokenTTL  time.Duration
	}

	Realtime struct {
		SendBuffer     int
		QueueSize      int
		MaxMessageSize int64
		WriteWait      time.Duration
		PongWait       time.Duration
		PublishRate    float64
		PublishBurst   int
		AllowedOrigins string
	}

	BibleStudy struct {
		DefaultGroupSize int
		Strategy         string
	}

	Storage struct {
		Endpoint      string
		AccessKey     string
		SecretKey     string
		Bucket        string
		UseSSL        bool
		PublicURL     string
		MaxUploadSize int64
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "unionhub")
	config.DB.Password = getEnv("DB_PASSWORD", "unionhub_password")
	config.DB.Name = getEnv("DB_NAME", "unionhub_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")
	config.Server.Environment = getEnv("APP_ENV", "development")
	config.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	config.Log.Level = getEnv("LOG_LEVEL", "info")

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization")

	config.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	config.Auth.Issuer = getEnv("JWT_ISSUER", "unionhub")
	config.Auth.TokenTTL = getEnvAsDuration("JWT_TOKEN_TTL", 24*time.Hour)

	config.Realtime.SendBuffer = getEnvAsInt("REALTIME_SEND_BUFFER", 64)
	config.Realtime.QueueSize = getEnvAsInt("REALTIME_QUEUE_SIZE", 256)
	config.Realtime.MaxMessageSize = getEnvAsInt64("REALTIME_MAX_MESSAGE_SIZE", 64*1024)
	config.Realtime.WriteWait = getEnvAsDuration("REALTIME_WRITE_WAIT", 10*time.Second)
	config.Realtime.PongWait = getEnvAsDuration("REALTIME_PONG_WAIT", 60*time.Second)
	config.Realtime.PublishRate = getEnvAsFloat("REALTIME_PUBLISH_RATE", 5)
	config.Realtime.PublishBurst = getEnvAsInt("REALTIME_PUBLISH_BURST", 20)
	config.Realtime.AllowedOrigins = getEnv("REALTIME_ALLOWED_ORIGINS", "*")

	config.BibleStudy.DefaultGroupSize = getEnvAsInt("BIBLE_STUDY_GROUP_SIZE", 8)
	config.BibleStudy.Strategy = getEnv("BIBLE_STUDY_STRATEGY", "balanced")

	config.Storage.Endpoint = getEnv("MINIO_ENDPOINT", "")
	config.Storage.AccessKey = getEnv("MINIO_ACCESS_KEY", "")
	config.Storage.SecretKey = getEnv("MINIO_SECRET_KEY", "")
	config.Storage.Bucket = getEnv("MINIO_BUCKET", "gallery")
	config.Storage.UseSSL = getEnvAsBool("MINIO_USE_SSL", false)
	config.Storage.PublicURL = getEnv("MINIO_PUBLIC_URL", "")
	config.Storage.MaxUploadSize = getEnvAsInt64("MAX_FILE_SIZE", 10485760)

	return config
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// IsProduction reports whether the process runs with production settings
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// AuthEnabled reports whether bearer tokens are verified
func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}

// StorageEnabled reports whether the gallery object store is configured
func (c *Config) StorageEnabled() bool {
	return c.Storage.Endpoint != "" && c.Storage.AccessKey != "" && c.Storage.SecretKey != ""
}

// SplitList splits a comma separated setting, dropping blanks
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsInt64 gets an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings such as "15s" or "2m"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
