package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hirusha02/mootcourt-system/models"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/moot_test?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "test-secret")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SERVER_PORT", "")
		t.Setenv("STAGE_ORDER", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.ServerPort)
		assert.Equal(t, models.DefaultStages, cfg.Stages)
	})

	t.Run("missing database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET_KEY", "test-secret")

		_, err := Load()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("custom stage order", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STAGE_ORDER", "Round One,Round Two,Grand Final")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, models.StageList{"Round One", "Round Two", "Grand Final"}, cfg.Stages)
	})

	t.Run("bad stage order rejected", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STAGE_ORDER", "Final")

		_, err := Load()
		assert.ErrorContains(t, err, "STAGE_ORDER")
	})

	t.Run("bad port rejected", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SERVER_PORT", "70000")

		_, err := Load()
		assert.ErrorContains(t, err, "SERVER_PORT")
	})
}
