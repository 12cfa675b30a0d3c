package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AdminPort string
	ApplyPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// RabbitURL empty disables config.updated publishing and consuming.
	RabbitURL     string
	ConsumerQueue string

	// RedisAddr empty disables the snapshot cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// ContentStore is "github" or "memory".
	ContentStore      string
	GitHubAPIURL      string
	GitHubRepo        string
	GitHubToken       string
	GitHubBranch      string
	ConfigPath        string
	CommitMessage     string
	MemorySeedLiteral string

	AdminPassword string
	CORSOrigins   []string

	DeployHookURL   string
	DeployHookToken string

	Timezone     string
	SeedSnapshot string
}

// Load reads the environment, after applying a .env file when one exists.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("[Config] loaded .env")
	}

	return &Config{
		AdminPort: getEnv("ADMIN_PORT", "8081"),
		ApplyPort: getEnv("APPLY_PORT", "8082"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "booth_festa"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		DBMaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		RabbitURL:     getEnv("RABBITMQ_URL", ""),
		ConsumerQueue: getEnv("RABBITMQ_QUEUE", "apply-service.config"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		CacheTTL:      getDurationEnv("CACHE_TTL", 10*time.Minute),

		ContentStore:      getEnv("CONTENT_STORE", "github"),
		GitHubAPIURL:      getEnv("GITHUB_API_URL", ""),
		GitHubRepo:        getEnv("GITHUB_REPO", ""),
		GitHubToken:       getEnv("GITHUB_TOKEN", ""),
		GitHubBranch:      getEnv("GITHUB_BRANCH", ""),
		ConfigPath:        getEnv("CONFIG_PATH", "apply/config.js"),
		CommitMessage:     getEnv("COMMIT_MESSAGE", ""),
		MemorySeedLiteral: getEnv("MEMORY_SEED_LITERAL", ""),

		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		CORSOrigins:   getStringSliceEnv("CORS_ORIGINS", []string{"*"}),

		DeployHookURL:   getEnv("DEPLOY_HOOK_URL", ""),
		DeployHookToken: getEnv("DEPLOY_HOOK_TOKEN", ""),

		Timezone:     getEnv("TIMEZONE", "Asia/Tokyo"),
		SeedSnapshot: getEnv("SEED_SNAPSHOT", ""),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Location resolves Timezone. Deadlines in the configuration are wall-clock
// times in this zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getStringSliceEnv(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
