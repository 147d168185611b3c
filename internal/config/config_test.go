package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikolayk812/storefront-client/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:5000", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, config.BackendMemory, cfg.StoreBackend)
	assert.Equal(t, "storefront", cfg.StoreNamespace)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.CounterRefresh)
	assert.False(t, cfg.CircuitBreaker)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("STOREFRONT_API_BASE_URL", "https://shop.example.com")
	t.Setenv("STOREFRONT_REQUEST_TIMEOUT", "5s")
	t.Setenv("STOREFRONT_STORE_BACKEND", "redis")
	t.Setenv("STOREFRONT_REDIS_ADDR", "cache:6380")
	t.Setenv("STOREFRONT_CIRCUIT_BREAKER", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, config.BackendRedis, cfg.StoreBackend)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.True(t, cfg.CircuitBreaker)
}

func TestLoad_Dotenv(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("STOREFRONT_LOG_LEVEL=debug\nSTOREFRONT_STORE_NAMESPACE=from-file\n"), 0o600))

	// t.Setenv registers the restore of whatever the dotenv file sets
	t.Setenv("STOREFRONT_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("STOREFRONT_LOG_LEVEL"))
	t.Setenv("STOREFRONT_STORE_NAMESPACE", "from-env")

	cfg, err := config.Load(file, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "from-env", cfg.StoreNamespace)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown backend",
			env:  map[string]string{"STOREFRONT_STORE_BACKEND": "mongo"},
		},
		{
			name: "postgres without dsn",
			env:  map[string]string{"STOREFRONT_STORE_BACKEND": "postgres"},
		},
		{
			name: "zero timeout",
			env:  map[string]string{"STOREFRONT_REQUEST_TIMEOUT": "0s"},
		},
		{
			name: "malformed duration",
			env:  map[string]string{"STOREFRONT_COUNTER_REFRESH": "soon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			require.Error(t, err)
		})
	}
}
