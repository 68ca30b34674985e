// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"testing"

	"github.com/ManuGH/golaundry/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		fields []string
	}{
		{name: "defaults are valid", mutate: func(*AppConfig) {}},
		{
			name:   "endpoint scheme",
			mutate: func(c *AppConfig) { c.Endpoint = "ftp://host/x" },
			fields: []string{"Endpoint"},
		},
		{
			name:   "zero timeout",
			mutate: func(c *AppConfig) { c.Timeout = 0 },
			fields: []string{"Timeout"},
		},
		{
			name:   "negative rate",
			mutate: func(c *AppConfig) { c.RateLimit = -1 },
			fields: []string{"RateLimit"},
		},
		{
			name:   "sampling out of range",
			mutate: func(c *AppConfig) { c.Telemetry.SamplingRate = 1.5 },
			fields: []string{"Telemetry.SamplingRate"},
		},
		{
			name:   "bad log level",
			mutate: func(c *AppConfig) { c.LogLevel = "loud" },
			fields: []string{"LogLevel"},
		},
		{
			name: "exporter ignored when disabled",
			mutate: func(c *AppConfig) {
				c.Telemetry.Exporter = "zipkin"
			},
		},
		{
			name: "exporter checked when enabled",
			mutate: func(c *AppConfig) {
				c.Telemetry.Enabled = true
				c.Telemetry.Exporter = "zipkin"
				c.Telemetry.Endpoint = ""
			},
			fields: []string{"Telemetry.Exporter", "Telemetry.Endpoint"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				return
			}
			var verr validate.ValidationError
			require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
			got := make([]string, 0, len(verr.Errors()))
			for _, e := range verr.Errors() {
				got = append(got, e.Field)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := Defaults()
	require.Error(t, RequireCredentials(cfg))

	cfg.Username = "alice@example.com"
	err := RequireCredentials(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Password")

	cfg.Password = "hunter2"
	assert.NoError(t, RequireCredentials(cfg))
}
