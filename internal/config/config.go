package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sanjeevdwivedi/openai-stt-ha/internal/stt"
)

// EnvAPIURL, when set, overrides the configured ASR base URL.
const EnvAPIURL = "STT_API_URL"

// Config represents the complete service configuration
type Config struct {
	STT     STTConfig     `yaml:"stt"`
	HTTP    HTTPConfig    `yaml:"http"`
	Audio   AudioConfig   `yaml:"audio"`
	Logging LoggingConfig `yaml:"logging"`
}

// STTConfig contains ASR service configuration
type STTConfig struct {
	APIURL   string `yaml:"api_url"`
	Timeout  int    `yaml:"timeout"` // seconds
	Language string `yaml:"language"`
}

// HTTPConfig contains HTTP ingress configuration
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// AudioConfig contains the expected capture profile
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
	BitDepth   int `yaml:"bit_depth"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file, applies defaults and
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.applyDefaults()

	if url := os.Getenv(EnvAPIURL); url != "" {
		config.STT.APIURL = url
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// applyDefaults fills in defaults for fields the file may omit
func (c *Config) applyDefaults() {
	if c.STT.APIURL == "" {
		c.STT.APIURL = stt.DefaultAPIURL
	}

	if c.STT.Timeout == 0 {
		c.STT.Timeout = int(stt.DefaultTimeout / time.Second)
	}

	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = stt.SupportedSampleRate
	}

	if c.Audio.Channels == 0 {
		c.Audio.Channels = stt.SupportedChannels
	}

	if c.Audio.BitDepth == 0 {
		c.Audio.BitDepth = stt.SupportedBitDepth
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.STT.Validate(); err != nil {
		return fmt.Errorf("stt config: %w", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates ASR service configuration
func (s *STTConfig) Validate() error {
	if s.APIURL == "" {
		return fmt.Errorf("api_url cannot be empty")
	}

	if s.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", s.Timeout)
	}

	if s.Language != "" && !stt.SupportsLanguage(s.Language) {
		return fmt.Errorf("language %q is not supported by the ASR service", s.Language)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("http port must be between 1 and 65535, got %d", h.Port)
		}

		if h.Address == "" {
			return fmt.Errorf("http address cannot be empty when HTTP is enabled")
		}
	}

	return nil
}

// Validate validates the expected capture profile. The ASR service only
// accepts 16 kHz 16-bit mono input, so the profile is pinned to those values.
func (a *AudioConfig) Validate() error {
	if a.SampleRate != stt.SupportedSampleRate {
		return fmt.Errorf("sample_rate must be %d Hz, got %d", stt.SupportedSampleRate, a.SampleRate)
	}

	if a.Channels != stt.SupportedChannels {
		return fmt.Errorf("channels must be %d (mono), got %d", stt.SupportedChannels, a.Channels)
	}

	if a.BitDepth != stt.SupportedBitDepth {
		return fmt.Errorf("bit_depth must be %d, got %d", stt.SupportedBitDepth, a.BitDepth)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	// Output accepts stdout, stderr, or a file path; nothing to reject here.

	return nil
}

// GetTimeoutDuration returns the transcription timeout as a time.Duration
func (s *STTConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}
