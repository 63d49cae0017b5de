package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "3306", cfg.DBPort)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "batches", cfg.BatchDropDir)
	require.Equal(t, 300, cfg.CacheTTLSeconds)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DB_NAME", "melodex_test")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("MINIO_USE_SSL", "false")

	cfg := Load()

	require.Equal(t, "melodex_test", cfg.DBName)
	require.Equal(t, ":9090", cfg.HTTPAddr)
	require.Equal(t, 60, cfg.CacheTTLSeconds)
	require.False(t, cfg.MinioUseSSL)
}
