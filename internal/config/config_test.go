package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_ConfigYAML(t *testing.T) {
	path := filepath.Join("..", "..", "config.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotEmpty(t, cfg.Database.Host)
	require.NotZero(t, cfg.RabbitMQ.Port)
	require.NotEmpty(t, cfg.Gateway.KeyID)
	require.NotEmpty(t, cfg.Gateway.Currency)
	require.NotEmpty(t, cfg.Identity.BaseURL)
}

func TestLoad_UnknownSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "bogus:\n  key: value\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "database:\n  port: not-a-number\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.Database = DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "canteen"}
	require.Equal(t, "postgres://u:p@db:5432/canteen?sslmode=disable", cfg.DatabaseURL())
}
