// Package config loads the embedding application's configuration via
// spf13/viper, grounded on the teacher's pkg/config package: environment
// variables (CALCPROVIDER_*) override a YAML config file, which overrides
// built-in defaults. The supervisor endpoint itself (THINKNODE_HOST/PORT/PID)
// is intentionally not part of this struct — engine.LoadEndpoint reads
// those three variables directly, unprefixed, per §6.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/thinknode/thinknode-provider-ipc-net/internal/telemetry"
)

// Config is the embedding application's static configuration.
//
// Precedence (highest to lowest):
//  1. Environment variables (CALCPROVIDER_*)
//  2. Configuration file (YAML)
//  3. Defaults below
type Config struct {
	Logging   LoggingConfig      `mapstructure:"logging" yaml:"logging"`
	Telemetry telemetry.Config   `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics   MetricsConfig      `mapstructure:"metrics" yaml:"metrics"`
	Admin     AdminServerConfig  `mapstructure:"admin" yaml:"admin"`
}

// LoggingConfig controls the logger package's output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // DEBUG, INFO, WARN, ERROR
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// MetricsConfig controls whether Prometheus metrics collection is active.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// AdminServerConfig controls the auxiliary HTTP surface (health, readiness,
// metrics).
type AdminServerConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// DefaultConfig returns the runtime's built-in defaults.
func DefaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "INFO", Format: "text"},
		Telemetry: telemetry.DefaultConfig(),
		Metrics:   MetricsConfig{Enabled: false},
		Admin:     AdminServerConfig{Enabled: true, ListenAddr: ":9091"},
	}
}

// Load reads configuration from configPath (optional), then environment
// variables, layered over DefaultConfig.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	cfg := DefaultConfig()
	bindDefaults(v, cfg)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if found {
		if err := v.Unmarshal(&cfg); err != nil {
			return nil, fmt.Errorf("config: unmarshal: %w", err)
		}
	} else {
		applyEnvOverrides(v, &cfg)
	}

	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("CALCPROVIDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func bindDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("telemetry.enabled", cfg.Telemetry.Enabled)
	v.SetDefault("telemetry.servicename", cfg.Telemetry.ServiceName)
	v.SetDefault("telemetry.serviceversion", cfg.Telemetry.ServiceVersion)
	v.SetDefault("telemetry.endpoint", cfg.Telemetry.Endpoint)
	v.SetDefault("telemetry.insecure", cfg.Telemetry.Insecure)
	v.SetDefault("telemetry.samplerate", cfg.Telemetry.SampleRate)
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("admin.enabled", cfg.Admin.Enabled)
	v.SetDefault("admin.listen_addr", cfg.Admin.ListenAddr)
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("config: read config file: %w", err)
	}
	return true, nil
}

// applyEnvOverrides fills cfg from viper when no config file was found, so
// CALCPROVIDER_* environment variables still take effect over the defaults
// already baked into cfg.
func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	cfg.Logging.Level = v.GetString("logging.level")
	cfg.Logging.Format = v.GetString("logging.format")
	cfg.Telemetry.Enabled = v.GetBool("telemetry.enabled")
	cfg.Telemetry.ServiceName = v.GetString("telemetry.servicename")
	cfg.Telemetry.ServiceVersion = v.GetString("telemetry.serviceversion")
	cfg.Telemetry.Endpoint = v.GetString("telemetry.endpoint")
	cfg.Telemetry.Insecure = v.GetBool("telemetry.insecure")
	cfg.Telemetry.SampleRate = v.GetFloat64("telemetry.samplerate")
	cfg.Metrics.Enabled = v.GetBool("metrics.enabled")
	cfg.Admin.Enabled = v.GetBool("admin.enabled")
	cfg.Admin.ListenAddr = v.GetString("admin.listen_addr")
}
