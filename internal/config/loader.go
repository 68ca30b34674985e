// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/golaundry/internal/laundry"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultTimeout          = 15 * time.Second
	DefaultRateLimit        = 2.0
	DefaultRateBurst        = 4
	DefaultBreakerThreshold = 5
	DefaultBreakerReset     = 30 * time.Second
	DefaultLogLevel         = "info"
	DefaultOTelExporter     = "grpc"
	DefaultOTelEndpoint     = "localhost:4317"
	DefaultOTelSampling     = 1.0
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty path skips the file.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load runs defaults -> file (strict) -> environment -> validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		Endpoint:  laundry.DefaultEndpoint,
		Timeout:   DefaultTimeout,
		RateLimit: DefaultRateLimit,
		RateBurst: DefaultRateBurst,
		Breaker: BreakerConfig{
			Threshold: DefaultBreakerThreshold,
			Reset:     DefaultBreakerReset,
		},
		LogLevel: DefaultLogLevel,
		Telemetry: TelemetryConfig{
			Exporter:     DefaultOTelExporter,
			Endpoint:     DefaultOTelEndpoint,
			SamplingRate: DefaultOTelSampling,
		},
	}
}

// loadFile parses a YAML file strictly: unknown fields and trailing
// documents are errors.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

// LoadFileConfig loads a YAML config file without applying defaults or env overrides.
func LoadFileConfig(path string) (*FileConfig, error) {
	return NewLoader(path, "").loadFile(path)
}

func mergeFileConfig(cfg *AppConfig, f *FileConfig) error {
	setString(&cfg.Endpoint, f.Endpoint)
	setString(&cfg.Username, f.Username)
	setString(&cfg.Password, f.Password)
	setString(&cfg.UserAgent, f.UserAgent)
	setString(&cfg.LogLevel, f.LogLevel)
	if err := setDuration(&cfg.Timeout, "timeout", f.Timeout); err != nil {
		return err
	}
	if f.RateLimit != nil {
		cfg.RateLimit = *f.RateLimit
	}
	if f.RateBurst != nil {
		cfg.RateBurst = *f.RateBurst
	}
	if b := f.Breaker; b != nil {
		if b.Threshold != nil {
			cfg.Breaker.Threshold = *b.Threshold
		}
		if err := setDuration(&cfg.Breaker.Reset, "breaker.reset", b.Reset); err != nil {
			return err
		}
	}
	if t := f.Telemetry; t != nil {
		if t.Enabled != nil {
			cfg.Telemetry.Enabled = *t.Enabled
		}
		setString(&cfg.Telemetry.Exporter, t.Exporter)
		setString(&cfg.Telemetry.Endpoint, t.Endpoint)
		if t.SamplingRate != nil {
			cfg.Telemetry.SamplingRate = *t.SamplingRate
		}
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.Endpoint = l.envString(EnvEndpoint, cfg.Endpoint)
	cfg.Username = l.envString(EnvUsername, cfg.Username)
	cfg.Password = l.envString(EnvPassword, cfg.Password)
	cfg.Timeout = l.envDuration(EnvTimeout, cfg.Timeout)
	cfg.UserAgent = l.envString(EnvUserAgent, cfg.UserAgent)
	cfg.RateLimit = l.envFloat(EnvRateLimit, cfg.RateLimit)
	cfg.RateBurst = l.envInt(EnvRateBurst, cfg.RateBurst)
	cfg.Breaker.Threshold = l.envInt(EnvBreakerThreshold, cfg.Breaker.Threshold)
	cfg.Breaker.Reset = l.envDuration(EnvBreakerReset, cfg.Breaker.Reset)
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.Telemetry.Enabled = l.envBool(EnvOTelEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvOTelExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvOTelEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvOTelSampling, cfg.Telemetry.SamplingRate)
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setDuration(dst *time.Duration, field, v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = d
	return nil
}
