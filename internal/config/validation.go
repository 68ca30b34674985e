// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"github.com/ManuGH/golaundry/internal/validate"
)

// Validate checks the merged configuration. Credentials are optional here;
// commands that talk to the vendor require them separately.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.URL("Endpoint", cfg.Endpoint, []string{"http", "https"})
	v.Duration("Timeout", cfg.Timeout)
	v.NonNegative("RateLimit", cfg.RateLimit)
	v.NonNegative("RateBurst", float64(cfg.RateBurst))
	v.NonNegative("Breaker.Threshold", float64(cfg.Breaker.Threshold))
	v.Duration("Breaker.Reset", cfg.Breaker.Reset)
	v.LogLevel("LogLevel", cfg.LogLevel)

	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
	}
	v.FloatRange("Telemetry.SamplingRate", cfg.Telemetry.SamplingRate, 0, 1)

	return v.Err()
}

// RequireCredentials reports a validation error unless both username and password are set.
func RequireCredentials(cfg AppConfig) error {
	v := validate.New()
	v.NotEmpty("Username", cfg.Username)
	v.NotEmpty("Password", cfg.Password)
	return v.Err()
}
