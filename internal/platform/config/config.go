package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	defaultJWTSecret = "defaultsecret"
)

// Config is read once at startup and passed down; nothing mutates it afterwards.
// Precedence: defaults, then the optional YAML file named by CONFIG_FILE, then
// environment variables (a .env file is loaded into the environment first).
type Config struct {
	APIPort string `yaml:"api_port"`
	Storage string `yaml:"storage"`

	JWTSecret   string `yaml:"jwt_secret"`
	JWTExpHours int    `yaml:"jwt_expiration_hours"`
	BcryptCost  int    `yaml:"bcrypt_cost"`

	DBHost        string `yaml:"db_host"`
	DBPort        string `yaml:"db_port"`
	DBUser        string `yaml:"db_user"`
	DBPassword    string `yaml:"db_password"`
	DBName        string `yaml:"db_name"`
	DBSslMode     string `yaml:"db_sslmode"`
	DBAutoMigrate bool   `yaml:"db_auto_migrate"`

	RedisAddr           string `yaml:"redis_addr"`
	RedisPassword       string `yaml:"redis_password"`
	RedisDB             int    `yaml:"redis_db"`
	PostCacheTTLSeconds int    `yaml:"post_cache_ttl_seconds"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	SeedAdminName     string `yaml:"seed_admin_name"`
	SeedAdminEmail    string `yaml:"seed_admin_email"`
	SeedAdminPassword string `yaml:"seed_admin_password"`
}

func defaults() Config {
	return Config{
		APIPort:             "8080",
		Storage:             StoragePostgres,
		JWTSecret:           defaultJWTSecret,
		JWTExpHours:         24,
		BcryptCost:          10,
		DBHost:              "localhost",
		DBPort:              "5432",
		DBUser:              "user",
		DBPassword:          "password",
		DBName:              "blog_db",
		DBSslMode:           "disable",
		DBAutoMigrate:       true,
		RedisDB:             0,
		PostCacheTTLSeconds: 60,
		LogLevel:            "info",
		LogFormat:           "json",
		SeedAdminName:       "admin",
	}
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.APIPort = getEnv("API_PORT", cfg.APIPort)
	cfg.Storage = strings.ToLower(getEnv("STORAGE", cfg.Storage))
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTExpHours = getEnvAsInt("JWT_EXPIRATION_HOURS", cfg.JWTExpHours)
	cfg.BcryptCost = getEnvAsInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBSslMode = getEnv("DB_SSLMODE", cfg.DBSslMode)
	cfg.DBAutoMigrate = getEnvAsBool("DB_AUTO_MIGRATE", cfg.DBAutoMigrate)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvAsInt("REDIS_DB", cfg.RedisDB)
	cfg.PostCacheTTLSeconds = getEnvAsInt("POST_CACHE_TTL_SECONDS", cfg.PostCacheTTLSeconds)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.SeedAdminName = getEnv("SEED_ADMIN_NAME", cfg.SeedAdminName)
	cfg.SeedAdminEmail = getEnv("SEED_ADMIN_EMAIL", cfg.SeedAdminEmail)
	cfg.SeedAdminPassword = getEnv("SEED_ADMIN_PASSWORD", cfg.SeedAdminPassword)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.Storage == StoragePostgres && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set when running against postgres")
	}
	if c.JWTExpHours <= 0 {
		return errors.New("JWT_EXPIRATION_HOURS must be positive")
	}
	// A zero TTL would make the cached list live forever.
	if c.RedisAddr != "" && c.PostCacheTTLSeconds <= 0 {
		return errors.New("POST_CACHE_TTL_SECONDS must be positive when REDIS_ADDR is set")
	}
	return nil
}

// UsesDefaultSecret reports whether tokens are signed with the built-in key.
// Only memory mode allows it.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

func (c *Config) JWTExp() time.Duration {
	return time.Duration(c.JWTExpHours) * time.Hour
}

func (c *Config) PostCacheTTL() time.Duration {
	return time.Duration(c.PostCacheTTLSeconds) * time.Second
}

func (c *Config) DBConnStr() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	switch strings.TrimSpace(strings.ToLower(getEnv(key, ""))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
