package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("CONFIG", "")

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"endpoint_addr_http":      ":8081",
		"endpoint_addr_grpc":      "www.example:9000",
		"storage_backend":         "memory",
		"database_dsn":            "dsn",
		"mongo_uri":               "mongodb://x",
		"mongo_database":          "db",
		"secret_key":              "my_secret_key",
		"token_validity_duration": "90s",
		"cart_size":               12,
		"collapse_login_errors":   true,
		"redis_addr":              "redis:6379",
		"redis_password":          "pw",
		"redis_db":                2,
		"auth_rate_limit":         7,
		"auth_rate_window":        "30s",
		"s3_root_user":            "user",
		"s3_root_password":        "password",
		"s3_bucket":               "bucket",
		"s3_region":               "region",
		"s3_base_endpoint":        "base_endpoint",
		"public_base_url":         "https://shop",
		"environment":             "prod",
		"debug":                   true,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, ":8081", cfg.EndpointAddrHTTP)
		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, StorageMemory, cfg.StorageBackend)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 90*time.Second, cfg.TokenValidityDuration)
		assert.Equal(t, 12, cfg.CartSize)
		assert.True(t, cfg.CollapseLoginErrors)
		assert.Equal(t, "redis:6379", cfg.RedisAddr)
		assert.Equal(t, 2, cfg.RedisDB)
		assert.Equal(t, 7, cfg.AuthRateLimit)
		assert.Equal(t, 30*time.Second, cfg.AuthRateWindow)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "https://shop", cfg.PublicBaseURL)
		assert.Equal(t, "prod", cfg.Environment)
		assert.True(t, cfg.Debug)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"secret_key": "other"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "other", cfg.SecretKey)
		assert.Equal(t, ":4000", cfg.EndpointAddrHTTP)
		assert.Equal(t, 300, cfg.CartSize)
	})

	t.Run("env var names the file", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("CONFIG", full)

		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, ":8081", cfg.EndpointAddrHTTP)
	})

	t.Run("no file leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{EndpointAddrGRPC: "defaults:1234", SecretKey: "key"}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "absent.json")}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
