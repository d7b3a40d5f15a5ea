// Package config handles configuration file discovery and loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the configuration file searched for by FindRoot.
const FileName = ".modulemd.yaml"

// EnvPrefix prefixes environment overrides, e.g. MODULEMD_LOG_LEVEL.
const EnvPrefix = "MODULEMD"

// ErrNoConfigFile is returned by FindRoot when no directory up to the
// filesystem root holds FileName.
var ErrNoConfigFile = errors.New("config file not found")

// Config holds the modulemd tool configuration.
type Config struct {
	// Strict rejects documents with unknown keys.
	Strict bool `mapstructure:"strict"`

	Log   LogConfig   `mapstructure:"log"`
	Store StoreConfig `mapstructure:"store"`
	Watch WatchConfig `mapstructure:"watch"`

	// File is the configuration file used, if any.
	File string `mapstructure:"-"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig locates the catalog database.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// WatchConfig tunes the directory watcher.
type WatchConfig struct {
	Debounce    time.Duration `mapstructure:"debounce"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Strict: true,
		Log:    LogConfig{Level: "info", Format: "console"},
		Store:  StoreConfig{Path: "modulemd.db"},
		Watch:  WatchConfig{Debounce: 500 * time.Millisecond},
	}
}

// FindRoot searches upward from dir for a directory containing FileName.
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory: %w", err)
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, FileName)); err == nil && !info.IsDir() {
			return dir, nil
		}

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w: no %s above working directory", ErrNoConfigFile, FileName)
}

// Load reads configuration from path, or from the file found by FindRoot
// when path is empty, then applies MODULEMD_ environment overrides and any
// flags that were set explicitly. A missing discovered file is not an error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Lowest precedence: built-in defaults
	defaults := Default()
	v.SetDefault("strict", defaults.Strict)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("watch.metrics_addr", defaults.Watch.MetricsAddr)

	// MODULEMD_LOG_LEVEL overrides log.level
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	// An explicit --config must exist; a discovered one is optional
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		if root, err := FindRoot(wd); err == nil {
			path = filepath.Join(root, FileName)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return cfg, nil
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"store":        "store.path",
	"debounce":     "watch.debounce",
	"metrics-addr": "watch.metrics_addr",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	// --permissive inverts strict.
	if f := flags.Lookup("permissive"); f != nil && f.Changed {
		v.Set("strict", f.Value.String() != "true")
	}
	return nil
}
