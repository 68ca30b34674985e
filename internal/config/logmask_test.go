// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMaskSecrets_SimpleMap(t *testing.T) {
	input := map[string]any{
		"username": "alice",
		"password": "secret123",
		"endpoint": "https://example.com",
	}

	want := map[string]any{
		"username": "alice",
		"password": "***",
		"endpoint": "https://example.com",
	}
	if diff := cmp.Diff(want, MaskSecrets(input)); diff != "" {
		t.Errorf("MaskSecrets mismatch (-want +got):\n%s", diff)
	}
}

func TestMaskSecrets_AppConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Username = "alice@example.com"
	cfg.Password = "hunter2"

	got, ok := MaskSecrets(&cfg).(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", MaskSecrets(&cfg))
	}
	if got["Password"] != "***" {
		t.Errorf("Password = %v, want masked", got["Password"])
	}
	if got["Username"] != "alice@example.com" {
		t.Errorf("Username = %v, want preserved", got["Username"])
	}
	tel, ok := got["Telemetry"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested telemetry map, got %T", got["Telemetry"])
	}
	if tel["Exporter"] != DefaultOTelExporter {
		t.Errorf("Telemetry.Exporter = %v", tel["Exporter"])
	}
}

func TestMaskSecrets_EmptySecretStaysEmpty(t *testing.T) {
	got := MaskSecrets(map[string]any{"token": ""}).(map[string]any)
	if got["token"] != "" {
		t.Errorf("empty token = %q, want empty", got["token"])
	}
}

func TestMaskSecrets_Slice(t *testing.T) {
	input := []any{
		map[string]any{"authToken": "abc"},
		"plain",
	}
	want := []any{
		map[string]any{"authToken": "***"},
		"plain",
	}
	if diff := cmp.Diff(want, MaskSecrets(input)); diff != "" {
		t.Errorf("MaskSecrets mismatch (-want +got):\n%s", diff)
	}
}

func TestMaskSecrets_Nil(t *testing.T) {
	var cfg *AppConfig
	if MaskSecrets(cfg) != nil {
		t.Error("nil pointer should mask to nil")
	}
	if MaskSecrets(nil) != nil {
		t.Error("nil should mask to nil")
	}
}
