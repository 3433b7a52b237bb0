package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/hsdfat8/diam2json/pkg/logger"
)

// Config holds the application configuration
type Config struct {
	Output     OutputConfig
	Dictionary DictionaryConfig
	Capture    CaptureConfig
	Logging    LoggingConfig
}

// OutputConfig controls the JSON rendering
type OutputConfig struct {
	IncludeHeader bool   `mapstructure:"include_header"`
	Indent        string `mapstructure:"indent"`
}

// DictionaryConfig selects the AVP dictionaries to load
type DictionaryConfig struct {
	Files    []string `mapstructure:"files"`     // .proto or .toml files, loaded in order
	SkipBase bool     `mapstructure:"skip_base"` // start from an empty dictionary
}

// CaptureConfig holds pcap reading configuration
type CaptureConfig struct {
	Ports []uint16 `mapstructure:"ports"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"` // "debug", "info", "warn", "error", "fatal"
}

// Load loads configuration from file and environment variables
// Priority order (highest to lowest):
// 1. Environment variables (prefixed with DIAM2JSON_, e.g. DIAM2JSON_OUTPUT_INDENT)
// 2. Config file specified by configPath
// 3. diam2json.yaml in ., ./config or /etc/diam2json
// 4. Hardcoded defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values (lowest priority)
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("diam2json")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/diam2json")
	}

	v.SetEnvPrefix("DIAM2JSON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Log.Debugw("No config file found, using defaults and environment variables")
	} else {
		logger.Log.Debugw("Using config file", "path", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("output.include_header", false)
	v.SetDefault("output.indent", "")

	v.SetDefault("dictionary.files", []string{})
	v.SetDefault("dictionary.skip_base", false)

	v.SetDefault("capture.ports", []uint16{3868})

	v.SetDefault("logging.level", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output config: %w", err)
	}
	if err := c.Dictionary.Validate(); err != nil {
		return fmt.Errorf("dictionary config: %w", err)
	}
	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates the OutputConfig
func (c *OutputConfig) Validate() error {
	if strings.Trim(c.Indent, " \t") != "" {
		return fmt.Errorf("indent may only contain spaces and tabs")
	}
	return nil
}

// Validate validates the DictionaryConfig
func (c *DictionaryConfig) Validate() error {
	if c.SkipBase && len(c.Files) == 0 {
		return fmt.Errorf("skip_base requires at least one dictionary file")
	}
	for i, f := range c.Files {
		if f == "" {
			return fmt.Errorf("files[%d] is empty", i)
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("files[%d]: %w", i, err)
		}
	}
	return nil
}

// Validate validates the CaptureConfig
func (c *CaptureConfig) Validate() error {
	if len(c.Ports) == 0 {
		return fmt.Errorf("at least one port is required")
	}
	for i, p := range c.Ports {
		if p == 0 {
			return fmt.Errorf("ports[%d] must be between 1 and 65535", i)
		}
	}
	return nil
}

// Validate validates the LoggingConfig
func (c *LoggingConfig) Validate() error {
	if !logger.ValidLevel(c.Level) {
		return fmt.Errorf("invalid level %q, must be one of %s", c.Level, strings.Join(logger.Levels, ", "))
	}
	return nil
}
