package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("ENV", "")
	t.Setenv("PORT", "")

	cfg := Load()

	req.Equal("development", cfg.Env)
	req.Equal("8000", cfg.Port)
	req.NotEmpty(cfg.DatabaseURL)
	req.NotEmpty(cfg.JWTSecret)
	req.False(cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9999")

	cfg := Load()
	req.Equal("9999", cfg.Port)
	req.True(cfg.IsProduction())
}
