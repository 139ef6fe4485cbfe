package config

import (
	"os"
	"strconv"
	"strings"

	"churnstats/domain/stats"
	"churnstats/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Stats      StatsConfig      `yaml:"stats"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
}

// StatsConfig holds hypothesis-test defaults
type StatsConfig struct {
	Threshold   float64 `yaml:"p_value_threshold"`
	Alternative string  `yaml:"alternative"`
}

// PreprocessConfig names the columns the preprocessing step rewrites
type PreprocessConfig struct {
	NumericColumn   string `yaml:"numeric_column"`   // coerced to numbers
	LabelColumn     string `yaml:"label_column"`     // Yes/No -> 1/0
	IndicatorColumn string `yaml:"indicator_column"` // 0/1 -> No/Yes
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		LogLevel: "INFO",
		Stats: StatsConfig{
			Threshold:   stats.DefaultThreshold,
			Alternative: string(stats.TwoSided),
		},
		Preprocess: PreprocessConfig{
			NumericColumn:   "TotalCharges",
			LabelColumn:     "Churn",
			IndicatorColumn: "SeniorCitizen",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CHURNSTATS_CONFIG (if any), then environment variables, and validates it
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv("CHURNSTATS_CONFIG"); path != "" {
		if err := config.overlayFile(path); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration file")
		}
	}

	if err := config.overlayEnv(); err != nil {
		return nil, errors.Wrap(err, "failed to load environment configuration")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.ParseError(path, err)
	}
	return nil
}

func (c *Config) overlayEnv() error {
	threshold, err := getEnvFloatOrDefault("P_VALUE_THRESHOLD", c.Stats.Threshold)
	if err != nil {
		return err
	}
	c.Stats.Threshold = threshold
	c.Stats.Alternative = getEnvOrDefault("T_TEST_ALTERNATIVE", c.Stats.Alternative)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)

	c.Preprocess.NumericColumn = getEnvOrDefault("PREPROCESS_NUMERIC_COLUMN", c.Preprocess.NumericColumn)
	c.Preprocess.LabelColumn = getEnvOrDefault("PREPROCESS_LABEL_COLUMN", c.Preprocess.LabelColumn)
	c.Preprocess.IndicatorColumn = getEnvOrDefault("PREPROCESS_INDICATOR_COLUMN", c.Preprocess.IndicatorColumn)
	return nil
}

// Validate checks ranges and required fields
func (c *Config) Validate() error {
	if err := stats.ValidateThreshold(c.Stats.Threshold); err != nil {
		return errors.ConfigInvalid("p-value threshold must be in (0,1), got " + strconv.FormatFloat(c.Stats.Threshold, 'g', -1, 64))
	}
	if _, err := stats.ParseAlternative(c.Stats.Alternative); err != nil {
		return errors.ConfigInvalid("alternative must be one of two-sided, less, greater, got " + strconv.Quote(c.Stats.Alternative))
	}
	if c.Preprocess.NumericColumn == "" || c.Preprocess.LabelColumn == "" || c.Preprocess.IndicatorColumn == "" {
		return errors.ConfigInvalid("preprocess column names are required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " is not a number: " + strconv.Quote(value))
	}
	return floatValue, nil
}
