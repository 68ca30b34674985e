// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"https", "https://mapp.mylaundrylink.com/AppRequestHandler.aspx", true},
		{"http localhost", "http://127.0.0.1:8080/AppRequestHandler.aspx", true},
		{"empty", "", false},
		{"no host", "/AppRequestHandler.aspx", false},
		{"wrong scheme", "ftp://example.com", false},
		{"unparsable", "http://[::1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.URL("Endpoint", tt.value, []string{"http", "https"})
			assert.Equal(t, tt.ok, v.IsValid(), v.Err())
		})
	}
}

func TestValidator_Checks(t *testing.T) {
	v := New()
	v.NotEmpty("A", "  ")
	v.OneOf("B", "udp", []string{"grpc", "http"})
	v.NonNegative("C", -1)
	v.FloatRange("D", 1.5, 0, 1)
	v.Duration("E", 0)
	v.LogLevel("F", "loud")

	v.NotEmpty("ok", "x")
	v.OneOf("ok", "grpc", []string{"grpc", "http"})
	v.NonNegative("ok", 0)
	v.FloatRange("ok", 0.5, 0, 1)
	v.Duration("ok", time.Second)
	v.LogLevel("ok", "DEBUG")
	v.LogLevel("ok", "")

	err := v.Err()
	require.Error(t, err)

	var ve ValidationError
	require.True(t, errors.As(err, &ve))
	fields := make([]string, 0, len(ve.Errors()))
	for _, e := range ve.Errors() {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, fields)
	assert.Contains(t, err.Error(), "validation failed for B: value must be one of [grpc http]")
}

func TestValidator_ErrIsNilWhenValid(t *testing.T) {
	v := New()
	v.NotEmpty("A", "x")
	assert.True(t, v.IsValid())
	assert.NoError(t, v.Err())
}
