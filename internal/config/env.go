// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/golaundry/internal/log"
	"github.com/rs/zerolog"
)

// Environment keys.
const (
	EnvEndpoint         = "LAUNDRY_ENDPOINT"
	EnvUsername         = "LAUNDRY_USERNAME"
	EnvPassword         = "LAUNDRY_PASSWORD" // #nosec G101 -- variable name
	EnvTimeout          = "LAUNDRY_TIMEOUT"
	EnvUserAgent        = "LAUNDRY_USER_AGENT"
	EnvRateLimit        = "LAUNDRY_RATE_LIMIT"
	EnvRateBurst        = "LAUNDRY_RATE_BURST"
	EnvBreakerThreshold = "LAUNDRY_BREAKER_THRESHOLD"
	EnvBreakerReset     = "LAUNDRY_BREAKER_RESET"
	EnvLogLevel         = "LAUNDRY_LOG_LEVEL"
	EnvOTelEnabled      = "LAUNDRY_OTEL_ENABLED"
	EnvOTelExporter     = "LAUNDRY_OTEL_EXPORTER"
	EnvOTelEndpoint     = "LAUNDRY_OTEL_ENDPOINT"
	EnvOTelSampling     = "LAUNDRY_OTEL_SAMPLING"
)

func isSensitiveEnv(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "password") || strings.Contains(lower, "token") || strings.Contains(lower, "username")
}

// lookup returns the raw value of key and logs where the value came from.
// An empty variable counts as unset.
func lookup(logger zerolog.Logger, key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().Str("key", key).Str("source", "default").Msg("using default value")
		return "", false
	}
	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if isSensitiveEnv(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Str("value", v)
	}
	ev.Msg("using environment variable")
	return v, true
}

// parseWith converts the variable with parse and falls back to def on
// absence or parse errors. Invalid values are logged, never fatal.
func parseWith[T any](key string, def T, kind string, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")
	raw, ok := lookup(logger, key)
	if !ok {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		ev := logger.Warn().Str("key", key)
		if !isSensitiveEnv(key) {
			ev = ev.Str("value", raw)
		}
		ev.Interface("default", def).Msgf("invalid %s in environment variable, using default", kind)
		return def
	}
	return v
}

// ParseString reads a string from environment variable or returns default value.
func ParseString(key, defaultValue string) string {
	return parseWith(key, defaultValue, "string", func(s string) (string, error) { return s, nil })
}

// ParseInt reads an integer from environment variable or returns default value.
func ParseInt(key string, defaultValue int) int {
	return parseWith(key, defaultValue, "integer", strconv.Atoi)
}

// ParseDuration reads a Go duration ("15s") from environment variable.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseWith(key, defaultValue, "duration", time.ParseDuration)
}

// ParseFloat reads a float64 from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseWith(key, defaultValue, "float", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseBool accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return parseWith(key, defaultValue, "boolean", func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, strconv.ErrSyntax
	})
}
