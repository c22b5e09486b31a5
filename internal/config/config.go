package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Catalog     CatalogConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Cart        CartConfig
	Events      EventsConfig
}

// CatalogConfig is used to call the backend catalog API (search, products, categories, brands, orders)
type CatalogConfig struct {
	BaseURL      string // e.g. https://api.example.com/api
	APIKey       string // optional bearer token
	ImageBaseURL string // prefix for relative image paths returned by the API
	Timeout      time.Duration
	CacheTTL     time.Duration // categories/brands cache
}

// StorageConfig selects where session state (cart, wishlist) is persisted
type StorageConfig struct {
	Driver string // memory, file or postgres
	Dir    string // root directory for the file driver
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// EventsConfig enables CartCheckedOut publishing; an empty URL disables it
type EventsConfig struct {
	RabbitMQURL string
}

type CartConfig struct {
	DeliveryFee     float64
	DefaultMaxStock int // ceiling used when a line item carries no stock information
}

func Load() (*Config, error) {
	if err := readConfigFile(); err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(getEnvOrViper("CATALOG_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_TIMEOUT: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnvOrViper("CATALOG_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_CACHE_TTL: %w", err)
	}
	deliveryFee, err := strconv.ParseFloat(getEnvOrViper("DELIVERY_FEE", "0"), 64)
	if err != nil || deliveryFee < 0 {
		return nil, fmt.Errorf("invalid DELIVERY_FEE %q", getEnvOrViper("DELIVERY_FEE", "0"))
	}
	maxStock, err := strconv.Atoi(getEnvOrViper("CART_DEFAULT_MAX_STOCK", "99"))
	if err != nil || maxStock < 1 {
		return nil, fmt.Errorf("invalid CART_DEFAULT_MAX_STOCK %q", getEnvOrViper("CART_DEFAULT_MAX_STOCK", "99"))
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Catalog: CatalogConfig{
			BaseURL:      strings.TrimSpace(getEnvOrViper("CATALOG_API_URL", "")),
			APIKey:       strings.TrimSpace(getEnvOrViper("CATALOG_API_KEY", "")),
			ImageBaseURL: strings.TrimSpace(getEnvOrViper("CATALOG_IMAGE_BASE_URL", "")),
			Timeout:      timeout,
			CacheTTL:     cacheTTL,
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnvOrViper("STORAGE_DRIVER", "file")),
			Dir:    getEnvOrViper("STORAGE_DIR", "./data"),
		},
		Database: databaseConfig(),
		Cart: CartConfig{
			DeliveryFee:     deliveryFee,
			DefaultMaxStock: maxStock,
		},
		Events: EventsConfig{
			RabbitMQURL: strings.TrimSpace(getEnvOrViper("RABBITMQ_URL", "")),
		},
	}

	// Validate required fields
	if cfg.Catalog.BaseURL == "" {
		return nil, fmt.Errorf("CATALOG_API_URL is required")
	}
	switch cfg.Storage.Driver {
	case "memory", "file", "postgres":
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

// LoadDatabase reads only the DB_* keys, for tools that do not talk to the catalog API
func LoadDatabase() (DatabaseConfig, error) {
	if err := readConfigFile(); err != nil {
		return DatabaseConfig{}, err
	}
	return databaseConfig(), nil
}

func readConfigFile() error {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORAGE_DRIVER", "file")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.AutomaticEnv()

	// .env is optional; env vars are enough
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func databaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnvOrViper("DB_HOST", "localhost"),
		Port:     getEnvOrViper("DB_PORT", "5432"),
		User:     getEnvOrViper("DB_USER", "postgres"),
		Password: getEnvOrViper("DB_PASSWORD", "postgres"),
		DBName:   getEnvOrViper("DB_NAME", "storefront"),
		SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
	}
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
