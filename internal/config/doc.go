// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads laundryctl settings with the precedence
// environment > YAML file > defaults.
//
// The vendor client itself never reads configuration; the CLI turns an
// AppConfig into laundry and transport options.
package config
