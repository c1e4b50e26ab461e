// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the application settings. The settings are separate
// from the target registry, which lives in the store they point at.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the settings file layout.
type Config struct {
	Registry struct {
		Store string `mapstructure:"store" yaml:"store"`
		Path  string `mapstructure:"path" yaml:"path"`
		Dsn   string `mapstructure:"dsn" yaml:"dsn"`
	} `mapstructure:"registry" yaml:"registry"`
	Probe struct {
		Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	} `mapstructure:"probe" yaml:"probe"`
	Language string `mapstructure:"language" yaml:"language"`
	Log      struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"log" yaml:"log"`
}

// DefaultDir returns the per-user data directory, <user config dir>/sshhub.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, "sshhub"), nil
}

// Defaults returns the default value of every settings key.
func Defaults() map[string]any {
	d := map[string]any{
		"registry.store": "json",
		"registry.path":  "config.json",
		"registry.dsn":   "sshhub.db",
		"probe.timeout":  "600ms",
		"language":       "en",
		"log.level":      "info",
	}
	if dir, err := DefaultDir(); err == nil {
		d["registry.path"] = filepath.Join(dir, "config.json")
		d["registry.dsn"] = filepath.Join(dir, "sshhub.db")
	}
	return d
}

// AddFlags registers a flag for every setting that may be overridden on the
// command line. Flag names equal the settings keys so LoadConfig can bind
// them directly.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("language", "en", `interface language ("en", "de")`)
	fs.String("registry.store", "json", "registry store (json, sqlite, postgres, mysql)")
	fs.String("registry.path", "", "registry file for the json store")
	fs.String("registry.dsn", "", "connection string for sql stores")
	fs.Duration("probe.timeout", 600*time.Millisecond, "timeout of one reachability probe")
	fs.String("log.level", "info", "log level (debug, info, warn, error)")
}

// GetConfigPath returns the full path of the settings file.
func GetConfigPath(system bool) (string, error) {
	if system {
		switch runtime.GOOS {
		case "windows":
			return filepath.Join(os.Getenv("ProgramData"), "SSHHub", "sshhub.yaml"), nil
		default:
			return "/etc/sshhub/sshhub.yaml", nil
		}
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sshhub.yaml"), nil
}

// LoadConfig merges defaults, the settings file, SSHHUB_* environment
// variables and the flags of cmd, in increasing precedence. A missing
// settings file is reported as viper.ConfigFileNotFoundError alongside the
// otherwise complete result.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("sshhub")
	v.SetConfigType("yaml")
	if configFile != nil && *configFile != "" {
		v.SetConfigFile(*configFile)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &nf):
			notFound = err
		case errors.Is(err, os.ErrNotExist):
			notFound = viper.ConfigFileNotFoundError{}
		default:
			return c, err
		}
	}

	v.SetEnvPrefix("sshhub")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, notFound
}

// WriteConfigFile writes c as YAML to the settings file.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}
	return os.WriteFile(path, data, 0o600)
}
