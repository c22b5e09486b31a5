package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CATALOG_API_URL", "http://catalog.local/api")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "development", cfg.Environment)
		assert.Equal(t, "http://catalog.local/api", cfg.Catalog.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.Catalog.Timeout)
		assert.Equal(t, 5*time.Minute, cfg.Catalog.CacheTTL)
		assert.Equal(t, "file", cfg.Storage.Driver)
		assert.Equal(t, 0.0, cfg.Cart.DeliveryFee)
		assert.Equal(t, 99, cfg.Cart.DefaultMaxStock)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("CATALOG_API_URL", "http://catalog.local/api")
		t.Setenv("DELIVERY_FEE", "120")
		t.Setenv("CART_DEFAULT_MAX_STOCK", "10")
		t.Setenv("STORAGE_DRIVER", "Memory")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 120.0, cfg.Cart.DeliveryFee)
		assert.Equal(t, 10, cfg.Cart.DefaultMaxStock)
		assert.Equal(t, "memory", cfg.Storage.Driver)
	})

	t.Run("missing catalog url", func(t *testing.T) {
		t.Setenv("CATALOG_API_URL", "")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("unknown storage driver", func(t *testing.T) {
		t.Setenv("CATALOG_API_URL", "http://catalog.local/api")
		t.Setenv("STORAGE_DRIVER", "redis")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("negative delivery fee", func(t *testing.T) {
		t.Setenv("CATALOG_API_URL", "http://catalog.local/api")
		t.Setenv("DELIVERY_FEE", "-5")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv("CATALOG_API_URL", "")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "shop")

	cfg, err := LoadDatabase()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "shop", cfg.DBName)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
}
