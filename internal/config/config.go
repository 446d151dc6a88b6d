package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the cleanup policy settings. The zero value is not
// usable; start from Default and override via environment or file.
type Config struct {
	// TagKey/TagValue select the instances this tool is allowed to touch.
	TagKey   string `mapstructure:"tag_key"`
	TagValue string `mapstructure:"tag_value"`

	// CPUThresholdPercent is the average CPU below which a running
	// instance is considered idle. Strict less-than comparison.
	CPUThresholdPercent float64 `mapstructure:"cpu_threshold_percent"`

	// StopAfterDays is the trailing window, in days, over which CPU
	// utilization is averaged for running instances.
	StopAfterDays int `mapstructure:"stop_after_days"`

	// DeleteAfterDays is the grace period: whole days an instance must
	// stay stopped before it is terminated.
	DeleteAfterDays int `mapstructure:"delete_after_days"`

	// MetricPeriodSeconds is the CloudWatch aggregation period.
	MetricPeriodSeconds int32 `mapstructure:"metric_period_seconds"`
}

// Default returns the configuration matching the original automation
// deployment.
func Default() *Config {
	return &Config{
		TagKey:              "Provisioner",
		TagValue:            "Terraform via Semaphore",
		CPUThresholdPercent: 1.0,
		StopAfterDays:       1,
		DeleteAfterDays:     2,
		MetricPeriodSeconds: 3600,
	}
}

// Load reads configuration from an optional YAML file and REAPD_*
// environment variables, on top of the defaults.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("tag_key", defaults.TagKey)
	v.SetDefault("tag_value", defaults.TagValue)
	v.SetDefault("cpu_threshold_percent", defaults.CPUThresholdPercent)
	v.SetDefault("stop_after_days", defaults.StopAfterDays)
	v.SetDefault("delete_after_days", defaults.DeleteAfterDays)
	v.SetDefault("metric_period_seconds", defaults.MetricPeriodSeconds)

	v.SetEnvPrefix("REAPD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the policy engine cannot act on.
func (c *Config) Validate() error {
	if c.TagKey == "" {
		return fmt.Errorf("tag_key must not be empty")
	}
	if c.TagValue == "" {
		return fmt.Errorf("tag_value must not be empty")
	}
	if c.CPUThresholdPercent < 0 || c.CPUThresholdPercent > 100 {
		return fmt.Errorf("cpu_threshold_percent must be between 0 and 100, got %v", c.CPUThresholdPercent)
	}
	if c.StopAfterDays < 1 {
		return fmt.Errorf("stop_after_days must be at least 1, got %d", c.StopAfterDays)
	}
	if c.DeleteAfterDays < 1 {
		return fmt.Errorf("delete_after_days must be at least 1, got %d", c.DeleteAfterDays)
	}
	if c.MetricPeriodSeconds < 60 {
		return fmt.Errorf("metric_period_seconds must be at least 60, got %d", c.MetricPeriodSeconds)
	}
	return nil
}
