package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	LogLevel      string
	Port          int
	DatabaseURL   string
	Redis         RedisConfig
	JWTSecret     string
	AppURL        string
	WorkerCount   int
	CacheLocation *time.Location
	RateLimitRPS  float64
	Minio         MinioConfig
	RabbitMQ      RabbitMQConfig
	// 管理員變更類操作的每日上限與間隔
	AdminDailyLimit int
	AdminCooldown   time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinioConfig 未設定 Endpoint 時停用圖片上傳
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

func (m MinioConfig) Enabled() bool {
	return strings.TrimSpace(m.Endpoint) != ""
}

// RabbitMQConfig 未設定 URL 時事件只寫入日誌
type RabbitMQConfig struct {
	URL           string
	Queue         string
	QueueDurable  bool
	PrefetchCount int
}

func (r RabbitMQConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

// 測試替換點
var loadDotEnv = func() error { return godotenv.Load() }

// Load 讀取環境變數；ENV=dev 時先載入 .env
func Load() (Config, error) {
	env := getEnv("ENV", "prod")
	if env == "dev" {
		// .env 不存在時沿用現有環境變數
		_ = loadDotEnv()
	}

	cfg := Config{
		Env:         env,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AppURL:      getEnv("APP_URL", "http://localhost:3000"),
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Minio: MinioConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnv("MINIO_BUCKET", "product-images"),
			PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:          os.Getenv("RABBITMQ_URL"),
			Queue:        getEnv("RABBITMQ_QUEUE", "submission.reviewed"),
			QueueDurable: true,
		},
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("環境變數 DATABASE_URL 未設定")
	}
	if cfg.Redis.Addr == "" {
		return Config{}, fmt.Errorf("環境變數 REDIS_ADDR 未設定")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("環境變數 JWT_SECRET 未設定")
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil || cfg.Port <= 0 {
		return Config{}, fmt.Errorf("無效的 PORT: %v", os.Getenv("PORT"))
	}
	if cfg.Redis.DB, err = getEnvInt("REDIS_DB", 0); err != nil || cfg.Redis.DB < 0 {
		return Config{}, fmt.Errorf("無效的 REDIS_DB: %v", os.Getenv("REDIS_DB"))
	}
	if cfg.WorkerCount, err = getEnvInt("WORKER_COUNT", 2); err != nil || cfg.WorkerCount <= 0 {
		return Config{}, fmt.Errorf("無效的 WORKER_COUNT: %v", os.Getenv("WORKER_COUNT"))
	}
	if cfg.RabbitMQ.PrefetchCount, err = getEnvInt("RABBITMQ_PREFETCH", 10); err != nil {
		return Config{}, fmt.Errorf("無效的 RABBITMQ_PREFETCH: %v", os.Getenv("RABBITMQ_PREFETCH"))
	}

	rps := getEnv("RATE_LIMIT_RPS", "20")
	if cfg.RateLimitRPS, err = strconv.ParseFloat(rps, 64); err != nil || cfg.RateLimitRPS <= 0 {
		return Config{}, fmt.Errorf("無效的 RATE_LIMIT_RPS: %v", rps)
	}

	if cfg.AdminDailyLimit, err = getEnvInt("ADMIN_DAILY_LIMIT", 1); err != nil || cfg.AdminDailyLimit <= 0 {
		return Config{}, fmt.Errorf("無效的 ADMIN_DAILY_LIMIT: %v", os.Getenv("ADMIN_DAILY_LIMIT"))
	}
	cooldown := getEnv("ADMIN_COOLDOWN", "10m")
	if cfg.AdminCooldown, err = time.ParseDuration(cooldown); err != nil || cfg.AdminCooldown < 0 {
		return Config{}, fmt.Errorf("無效的 ADMIN_COOLDOWN: %v", cooldown)
	}

	if cfg.Minio.UseSSL, err = getEnvBool("MINIO_USE_SSL", false); err != nil {
		return Config{}, fmt.Errorf("無效的 MINIO_USE_SSL: %v", os.Getenv("MINIO_USE_SSL"))
	}

	tz := getEnv("CACHE_TIMEZONE", "America/Los_Angeles")
	if cfg.CacheLocation, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("無效的 CACHE_TIMEZONE %q: %w", tz, err)
	}

	return cfg, nil
}

// Addr 回傳 HTTP 監聽位址
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	return strconv.ParseBool(value)
}
