package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// QuotaConfig holds upload quota and multipart session settings.
type QuotaConfig struct {
	// MaxFileBytes is the hard ceiling for a single file. The storage
	// layer rejects parts that would push an upload past it.
	MaxFileBytes int64
	// MaxUserBytes caps a user's total non-terminal file bytes.
	MaxUserBytes int64
	// MaxActiveUploads caps a user's concurrent multipart sessions.
	MaxActiveUploads int
	// PresignExpirySec is the lifetime of presigned part and download URLs.
	PresignExpirySec int
	// UploadExpiryMin is how long an UPLOADING file may sit idle before the
	// janitor aborts it.
	UploadExpiryMin int
	// JanitorIntervalSec is the sweep interval for stale upload sessions.
	JanitorIntervalSec int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Quota    QuotaConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Quota: QuotaConfig{
			MaxFileBytes:       getEnvInt64("QUOTA_MAX_FILE_BYTES", 5<<30),  // 5 GiB
			MaxUserBytes:       getEnvInt64("QUOTA_MAX_USER_BYTES", 50<<30), // 50 GiB
			MaxActiveUploads:   getEnvInt("QUOTA_MAX_ACTIVE_UPLOADS", 5),
			PresignExpirySec:   getEnvInt("QUOTA_PRESIGN_EXPIRY_SEC", 900),
			UploadExpiryMin:    getEnvInt("QUOTA_UPLOAD_EXPIRY_MIN", 1440),
			JanitorIntervalSec: getEnvInt("QUOTA_JANITOR_INTERVAL_SEC", 300),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
