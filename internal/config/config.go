// Package config loads runtime settings from file, environment and defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds everything the binaries need at startup.
type Config struct {
	// API is the management API the reference data comes from.
	API struct {
		BaseURL string `mapstructure:"base_url"`
		Token   string `mapstructure:"token"`
	} `mapstructure:"api"`

	// Server configures the HTTP front end.
	Server struct {
		Listen string `mapstructure:"listen"`
	} `mapstructure:"server"`

	// Report configures document output.
	Report struct {
		LetterheadPath string `mapstructure:"letterhead_path"`
		OutputDir      string `mapstructure:"output_dir"`
	} `mapstructure:"report"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from the given file (optional), the environment
// (REPORTGEN_ prefix) and built-in defaults, in that order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("report.output_dir", ".")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("REPORTGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// Level parses the configured log level, falling back to info.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
