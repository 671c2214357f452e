// Package config loads the scanner configuration from an optional YAML file
// with environment-variable overrides. Every key has a working default so a
// config file is never required; the one value that cannot be defaulted is
// the Gemini API key.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the scanner
type Config struct {
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Browser BrowserConfig `mapstructure:"browser"`
	Capture CaptureConfig `mapstructure:"capture"`
	Log     LogConfig     `mapstructure:"log"`
}

// GeminiConfig configures the external analysis endpoint
type GeminiConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
}

// BrowserConfig configures how the capture side reaches the browser
type BrowserConfig struct {
	DevToolsURL string `mapstructure:"devtools_url"`
}

// CaptureConfig configures frame encoding
type CaptureConfig struct {
	JPEGQuality int `mapstructure:"jpeg_quality"`
}

// LogConfig configures diagnostics logging
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from configPath (or the default search paths when
// empty) and applies DEEPSCAN_-prefixed environment overrides, e.g.
// DEEPSCAN_GEMINI_API_KEY for gemini.api_key. A missing config file is only
// an error when a path was given explicitly.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("deepscan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/deepscan")
		}
	}

	v.SetEnvPrefix("DEEPSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || configPath != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// GEMINI_API_KEY is the conventional name used by the provider's own
	// tooling; honor it as a fallback.
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if cfg.Capture.JPEGQuality < 1 || cfg.Capture.JPEGQuality > 100 {
		return nil, fmt.Errorf("capture.jpeg_quality must be in 1..100, got %d", cfg.Capture.JPEGQuality)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// An explicit empty default keeps the key known to viper so the
	// environment override is picked up during Unmarshal.
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.endpoint", "https://generativelanguage.googleapis.com")

	v.SetDefault("browser.devtools_url", "http://127.0.0.1:9222")

	// Quality 80 keeps the frame small enough for the inline request limit
	// while leaving compression artifacts below what the forensic metrics
	// look for.
	v.SetDefault("capture.jpeg_quality", 80)

	v.SetDefault("log.level", "info")
}
