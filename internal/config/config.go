// Package config loads CLI configuration from config files, environment
// variables, and dotenv files.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem used for config and schema IO. Tests swap in a
// memory-backed filesystem.
var AppFs = afero.NewOsFs()

// Config holds the resolved CLI configuration.
type Config struct {
	SchemaPath  string
	Provider    string
	DatabaseURL string
	Debug       bool
}

// Load resolves configuration in increasing priority: defaults, a
// .undertow.yaml config file (working directory, home, or
// ~/.config/undertow), UNDERTOW_-prefixed environment variables, then
// .env and .env.local dotenv files for DATABASE_URL.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	viper.SetConfigName(".undertow")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "undertow"))

	viper.SetEnvPrefix("UNDERTOW")
	viper.AutomaticEnv()

	viper.SetDefault("schema_path", "schema.yaml")
	viper.SetDefault("provider", "postgres")
	viper.SetDefault("debug", false)

	// A missing config file is fine; defaults and env still apply.
	_ = viper.ReadInConfig()

	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	return &Config{
		SchemaPath:  viper.GetString("schema_path"),
		Provider:    viper.GetString("provider"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Debug:       viper.GetBool("debug"),
	}, nil
}

// Save writes the configuration to ~/.config/undertow/.undertow.yaml.
func Save(cfg *Config) error {
	viper.Set("schema_path", cfg.SchemaPath)
	viper.Set("provider", cfg.Provider)
	viper.Set("debug", cfg.Debug)

	home, err := homedir.Dir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".config", "undertow")
	if err := AppFs.MkdirAll(configPath, 0755); err != nil {
		return err
	}

	return viper.WriteConfigAs(filepath.Join(configPath, ".undertow.yaml"))
}
