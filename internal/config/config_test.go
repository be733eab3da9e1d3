package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	t.Helper()
	viper.Reset()
	AppFs = afero.NewMemMapFs()
	t.Cleanup(func() {
		viper.Reset()
		AppFs = afero.NewOsFs()
	})
}

func TestLoadDefaults(t *testing.T) {
	setup(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "schema.yaml", cfg.SchemaPath)
	assert.Equal(t, "postgres", cfg.Provider)
	assert.False(t, cfg.Debug)
}

func TestLoadEnvOverrides(t *testing.T) {
	setup(t)
	t.Setenv("UNDERTOW_PROVIDER", "mysql")
	t.Setenv("UNDERTOW_DEBUG", "true")
	t.Setenv("DATABASE_URL", "postgres://localhost/undertow_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Provider)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "postgres://localhost/undertow_test", cfg.DatabaseURL)
}
