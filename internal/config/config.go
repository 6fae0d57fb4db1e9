package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pharmadata-tools/labqa-cli/internal/quality"
)

// Global configuration structure.
type Global struct {
	APIKey          string `mapstructure:"api_key" yaml:"api_key"`
	DefaultProvider string `mapstructure:"default_provider" yaml:"default_provider"`
	DefaultModel    string `mapstructure:"default_model" yaml:"default_model"`
	MaxTokens       int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature" yaml:"temperature"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Anomaly detector thresholds
	ZScoreThreshold float64 `mapstructure:"zscore_threshold" yaml:"zscore_threshold"`
	IQRMultiplier   float64 `mapstructure:"iqr_multiplier" yaml:"iqr_multiplier"`

	// Quality score weights; must sum to 1.
	QualityWeights quality.Weights `mapstructure:"quality_weights" yaml:"quality_weights"`

	// Batch summarization
	SummaryWorkers int     `mapstructure:"summary_workers" yaml:"summary_workers"`
	SummaryRPS     float64 `mapstructure:"summary_rps" yaml:"summary_rps"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.labqa/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".labqa")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("LABQA")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("default_provider", "openrouter")
	v.SetDefault("default_model", "openai/gpt-4o-mini")
	v.SetDefault("max_tokens", 1500)
	v.SetDefault("temperature", 0.7)
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	// Detector defaults
	v.SetDefault("zscore_threshold", 3.0)
	v.SetDefault("iqr_multiplier", 1.5)
	v.SetDefault("quality_weights.completeness", 0.4)
	v.SetDefault("quality_weights.accuracy", 0.3)
	v.SetDefault("quality_weights.consistency", 0.2)
	v.SetDefault("quality_weights.uniqueness", 0.1)
	// Batch defaults
	v.SetDefault("summary_workers", 2)
	v.SetDefault("summary_rps", 1.0)
	v.SetDefault("database_path", "labqa.db")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".labqa")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.QualityWeights.Validate(); err != nil {
		return nil, err
	}
	// Resolve output_dir default: ~/.labqa/reports
	if c.OutputDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.OutputDir = filepath.Join(home, ".labqa", "reports")
	}
	return &c, nil
}
