package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the environment variable pointing at an optional YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{"config.yaml", "/etc/foodgram/config.yaml"}

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string `koanf:"server_port"`
	ServerHost string `koanf:"server_host"`
	// BaseURL is the public origin used to build short links and redirects.
	BaseURL string `koanf:"base_url"`

	// Database configuration
	DBDriver   string `koanf:"db_driver"`
	DBHost     string `koanf:"db_host"`
	DBPort     string `koanf:"db_port"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`
	DBSSLMode  string `koanf:"db_ssl_mode"`
	SQLitePath string `koanf:"sqlite_path"`

	MigrationsDir string `koanf:"migrations_dir"`

	// Redis configuration. Redis is optional: with neither host nor URL set,
	// rate limiting, short-link caching and token revocation are disabled.
	RedisURL      string `koanf:"redis_url"`
	RedisHost     string `koanf:"redis_host"`
	RedisPort     string `koanf:"redis_port"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// JWT configuration
	JWTSecret string        `koanf:"jwt_secret"`
	JWTTTL    time.Duration `koanf:"jwt_ttl"`

	// Image storage
	StorageDriver string `koanf:"storage_driver"`
	S3Bucket      string `koanf:"s3_bucket"`
	AWSRegion     string `koanf:"aws_region"`
	MediaDir      string `koanf:"media_dir"`
	MediaURL      string `koanf:"media_url"`

	// API behaviour
	PageSize          int           `koanf:"page_size"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RecipeCreateLimit int           `koanf:"recipe_create_limit"`
	ShortLinkCacheTTL time.Duration `koanf:"short_link_cache_ttl"`

	// Logging
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

func defaultConfig() *Config {
	return &Config{
		ServerPort:        "8080",
		ServerHost:        "0.0.0.0",
		BaseURL:           "http://localhost:8080",
		DBDriver:          "postgres",
		DBHost:            "localhost",
		DBPort:            "5432",
		DBUser:            "postgres",
		DBName:            "foodgram",
		DBSSLMode:         "disable",
		SQLitePath:        "foodgram.db",
		MigrationsDir:     "internal/database/migrations",
		RedisPort:         "6379",
		JWTTTL:            24 * time.Hour,
		StorageDriver:     "local",
		MediaDir:          "media",
		MediaURL:          "/media",
		PageSize:          6,
		CORSOrigins:       []string{"http://localhost:3000"},
		RecipeCreateLimit: 30,
		ShortLinkCacheTTL: 24 * time.Hour,
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

// LoadConfig builds the configuration from layered sources, lowest priority first:
// struct defaults, an optional YAML file, Docker secrets and environment variables.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := loadSecrets(k, secretsDir()); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	// DB_HOST -> db_host; anything that is not a known key is ignored.
	envProvider := env.Provider("", ".", func(key string) string {
		key = strings.ToLower(key)
		if !k.Exists(key) {
			return ""
		}
		return key
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// RedisEnabled reports whether a Redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// DSN returns the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// findConfigFile returns the first config file found, or "" if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// loadSecrets overlays Docker secrets. A secret file is named after the key it sets.
func loadSecrets(k *koanf.Koanf, dir string) error {
	for _, key := range k.Keys() {
		value, ok := readSecret(dir, key)
		if !ok {
			continue
		}
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(dir, name string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}
