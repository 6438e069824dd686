// Package config provides configuration loading and validation for changanya.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/simhash"
)

// Sentinel validation errors.
var (
	ErrInvalidCapacity          = errors.New("bloom capacity must be positive")
	ErrInvalidFalsePositiveRate = errors.New("bloom false positive rate must be in (0, 1)")
	ErrInvalidBitWidth          = errors.New("simhash bit width must be in [1, 2048]")
	ErrInvalidMaxDistance       = errors.New("simhash max distance must not be negative")
	ErrInvalidBlockCount        = errors.New("simhash block count must exceed max distance and fit half the bit width")
	ErrInvalidPrecision         = errors.New("geohash precision must not be negative")
	ErrInvalidLogLevel          = errors.New("unknown log level")
	ErrInvalidLogFormat         = errors.New("unknown log format")
	ErrInvalidOutputFormat      = errors.New("unknown output format")
)

const envPrefix = "CHANGANYA"

// Config holds all configuration for changanya.
type Config struct {
	Bloom   BloomConfig   `mapstructure:"bloom"   yaml:"bloom"`
	Simhash SimhashConfig `mapstructure:"simhash" yaml:"simhash"`
	Geohash GeohashConfig `mapstructure:"geohash" yaml:"geohash"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Output  OutputConfig  `mapstructure:"output"  yaml:"output"`
}

// BloomConfig sizes Bloom filters built by the CLI and MCP tools.
type BloomConfig struct {
	Capacity          int     `mapstructure:"capacity"            yaml:"capacity"`
	FalsePositiveRate float64 `mapstructure:"false_positive_rate" yaml:"false_positive_rate"`
}

// SimhashConfig holds fingerprint width and index parameters.
type SimhashConfig struct {
	BitWidth    int `mapstructure:"bit_width"    yaml:"bit_width"`
	MaxDistance int `mapstructure:"max_distance" yaml:"max_distance"`
	BlockCount  int `mapstructure:"block_count"  yaml:"block_count"`
}

// GeohashConfig holds geohash encoding parameters.
type GeohashConfig struct {
	Precision int `mapstructure:"precision" yaml:"precision"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// OutputConfig selects how results are rendered.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// SlogLevel maps the configured level name to a slog level.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// JSON reports whether logs should be emitted as JSON.
func (c LoggingConfig) JSON() bool {
	return strings.EqualFold(c.Format, LogFormatJSON)
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches for config.yaml in the working directory,
// ./config and /etc/changanya; a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("config")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/changanya")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Bloom: BloomConfig{
			Capacity:          DefaultBloomCapacity,
			FalsePositiveRate: DefaultBloomFalsePositiveRate,
		},
		Simhash: SimhashConfig{
			BitWidth:    DefaultSimhashBitWidth,
			MaxDistance: DefaultSimhashMaxDistance,
			BlockCount:  DefaultSimhashBlockCount,
		},
		Geohash: GeohashConfig{Precision: DefaultGeohashPrecision},
		Logging: LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Output:  OutputConfig{Format: DefaultOutputFormat},
	}
}

func setDefaults(viperCfg *viper.Viper) {
	// Bloom defaults.
	viperCfg.SetDefault("bloom.capacity", DefaultBloomCapacity)
	viperCfg.SetDefault("bloom.false_positive_rate", DefaultBloomFalsePositiveRate)

	// Simhash defaults.
	viperCfg.SetDefault("simhash.bit_width", DefaultSimhashBitWidth)
	viperCfg.SetDefault("simhash.max_distance", DefaultSimhashMaxDistance)
	viperCfg.SetDefault("simhash.block_count", DefaultSimhashBlockCount)

	viperCfg.SetDefault("geohash.precision", DefaultGeohashPrecision)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
}

// Validate checks cross-field constraints. It is exported so flag overrides
// applied after loading can be rechecked.
func (c *Config) Validate() error {
	return validateConfig(c)
}

func validateConfig(config *Config) error {
	if config.Bloom.Capacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, config.Bloom.Capacity)
	}

	fp := config.Bloom.FalsePositiveRate
	if !(fp > 0 && fp < 1) {
		return fmt.Errorf("%w: %g", ErrInvalidFalsePositiveRate, fp)
	}

	sh := config.Simhash
	if sh.BitWidth <= 0 || sh.BitWidth > simhash.MaxBitWidth {
		return fmt.Errorf("%w: %d", ErrInvalidBitWidth, sh.BitWidth)
	}

	if sh.MaxDistance < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxDistance, sh.MaxDistance)
	}

	if sh.BlockCount <= sh.MaxDistance || sh.BlockCount > sh.BitWidth/2 {
		return fmt.Errorf("%w: %d blocks, max distance %d, width %d",
			ErrInvalidBlockCount, sh.BlockCount, sh.MaxDistance, sh.BitWidth)
	}

	if config.Geohash.Precision < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPrecision, config.Geohash.Precision)
	}

	levels := []string{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}
	if !slices.Contains(levels, strings.ToLower(config.Logging.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	if !slices.Contains([]string{LogFormatText, LogFormatJSON}, strings.ToLower(config.Logging.Format)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	return ValidateOutputFormat(config.Output.Format)
}

// ValidateOutputFormat checks that format names a known renderer.
func ValidateOutputFormat(format string) error {
	if !slices.Contains([]string{OutputTable, OutputJSON, OutputYAML}, format) {
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, format)
	}

	return nil
}
