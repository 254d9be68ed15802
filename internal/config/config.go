package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. ROBODB_DATABASE_PATH.
const EnvPrefix = "ROBODB"

// FileName is the config file written by Save.
const FileName = "config.yaml"

// Config represents the robodb configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Export   ExportConfig   `mapstructure:"export" yaml:"export"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ExportConfig controls where exports land.
type ExportConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
}

// DefaultDir returns ~/.robodb.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".robodb"), nil
}

// Load reads config.{yaml,json} from dir (default ~/.robodb) and applies
// ROBODB_* environment overrides. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	setDefaults(v, dir)

	v.SetConfigName("config")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return decode(v)
}

// Defaults returns the configuration for dir before any config file or
// environment override is applied. This is what a fresh config.yaml holds.
func Defaults(dir string) (*Config, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	setDefaults(v, dir)
	return decode(v)
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("database.path", filepath.Join(dir, "robots.db"))
	v.SetDefault("export.dir", filepath.Join(dir, "exports"))
	v.SetDefault("log.level", "warn")
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Database.Path = expandHome(cfg.Database.Path)
	cfg.Export.Dir = expandHome(cfg.Export.Dir)

	return &cfg, nil
}

// Save writes config.yaml to dir
func Save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
