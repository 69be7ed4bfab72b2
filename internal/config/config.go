package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Supabase   SupabaseConfig
	Derivative DerivativeConfig
	Token      TokenConfig
	Image      ImageConfig
	Redis      RedisConfig
	RabbitMQ   RabbitMQConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// StorageConfig describes the origin (read-only) and destination buckets.
type StorageConfig struct {
	Driver       string
	Endpoint     string
	AccessKey    string
	AccessSecret string
	OriginBucket string
	OriginRegion string
	DestBucket   string
	DestRegion   string
}

type SupabaseConfig struct {
	URL    string
	KEY    string
	BUCKET string
}

type DerivativeConfig struct {
	Variant             string
	StorageURL          string
	DestCDNURL          string
	ResizeCacheCheck    bool
	BlurCacheCheck      bool
	BlurPersistMetadata bool
	BlurPreviewSize     int
}

type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

type ImageConfig struct {
	AllowedSizes []string
	MaxFileSize  int64
	MaxPixels    int64
	JPEGQuality  int
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	CacheDuration time.Duration
}

type RabbitMQConfig struct {
	URL   string
	Queue string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			ReadTimeout:    getDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Storage: StorageConfig{
			Driver:       getEnv("STORAGE_DRIVER", "s3"),
			Endpoint:     getEnv("S3_ENDPOINT", ""),
			AccessKey:    getEnv("AWS_ACCESS_KEY_ID", ""),
			AccessSecret: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			OriginBucket: getEnv("ORIGIN_BUCKET", ""),
			OriginRegion: getEnv("ORIGIN_REGION", "us-east-1"),
			DestBucket:   getEnv("DEST_BUCKET", ""),
			DestRegion:   getEnv("DEST_REGION", getEnv("ORIGIN_REGION", "us-east-1")),
		},
		Supabase: SupabaseConfig{
			URL:    getEnv("SUPABASE_URL", ""),
			KEY:    getEnv("SUPABASE_KEY", ""),
			BUCKET: getEnv("SUPABASE_BUCKET", ""),
		},
		Derivative: DerivativeConfig{
			Variant:             getEnv("DERIVATIVE_VARIANT", "resize"),
			StorageURL:          strings.TrimSuffix(getEnv("STORAGE_URL", ""), "/"),
			DestCDNURL:          strings.TrimSuffix(getEnv("DEST_CDN_URL", ""), "/"),
			ResizeCacheCheck:    getEnvAsBool("RESIZE_CACHE_CHECK", true),
			BlurCacheCheck:      getEnvAsBool("BLUR_CACHE_CHECK", true),
			BlurPersistMetadata: getEnvAsBool("BLUR_PERSIST_METADATA", false),
			BlurPreviewSize:     getEnvAsInt("BLUR_PREVIEW_SIZE", 32),
		},
		Token: TokenConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    getDuration("TOKEN_TTL", 2*time.Minute),
		},
		Image: ImageConfig{
			AllowedSizes: getEnvAsList("ALLOWED_SIZES", nil),
			MaxFileSize:  getEnvAsInt64("MAX_FILE_SIZE", 25*1024*1024), // 25MB
			MaxPixels:    getEnvAsInt64("MAX_PIXELS", 268402689),       // 16383x16383
			JPEGQuality:  getEnvAsInt("JPEG_QUALITY", 85),
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", ""),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvAsInt("REDIS_DB", 0),
			CacheDuration: getDuration("CACHE_DURATION", 24*time.Hour),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   getEnv("RABBITMQ_URL", ""),
			Queue: getEnv("RABBITMQ_QUEUE", "image_derivatives"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
