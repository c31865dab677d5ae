package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load builds the configuration in priority order:
// 1. Default values
// 2. Configuration file (ccond.toml), if path is non-empty or one exists in
//    the default location
// 3. Environment variables (CCOND_ prefix)
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := loadFile(v, path); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	v.SetEnvPrefix("CCOND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", BackendBBolt)
	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("store.cache_size", 256)
	v.SetDefault("store.compression_threshold", 4096)
}

func loadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}
	v.SetConfigName("ccond")
	v.SetConfigType("toml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".ccond"))
	}
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ccond-store.db"
	}
	return filepath.Join(home, ".ccond", "store.db")
}
