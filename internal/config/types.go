// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// AppConfig is the effective configuration after all sources were merged.
type AppConfig struct {
	Version string

	Endpoint  string
	Username  string
	Password  string
	Timeout   time.Duration
	UserAgent string

	RateLimit float64
	RateBurst int

	Breaker   BreakerConfig
	LogLevel  string
	Telemetry TelemetryConfig
}

// BreakerConfig tunes the transport circuit breaker.
type BreakerConfig struct {
	Threshold int
	Reset     time.Duration
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// FileConfig is the YAML file schema. Pointers distinguish "absent" from
// zero values so an explicit 0 or false in the file still overrides defaults.
type FileConfig struct {
	Endpoint  string `yaml:"endpoint,omitempty"`
	Username  string `yaml:"username,omitempty"`
	Password  string `yaml:"password,omitempty"`
	Timeout   string `yaml:"timeout,omitempty"`
	UserAgent string `yaml:"userAgent,omitempty"`

	RateLimit *float64 `yaml:"rateLimit,omitempty"`
	RateBurst *int     `yaml:"rateBurst,omitempty"`

	Breaker   *BreakerFileConfig   `yaml:"breaker,omitempty"`
	LogLevel  string               `yaml:"logLevel,omitempty"`
	Telemetry *TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

// BreakerFileConfig is the breaker section of the YAML file.
type BreakerFileConfig struct {
	Threshold *int   `yaml:"threshold,omitempty"`
	Reset     string `yaml:"reset,omitempty"`
}

// TelemetryFileConfig is the telemetry section of the YAML file.
type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}
