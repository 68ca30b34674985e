// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ManuGH/golaundry/internal/laundry"
	"github.com/google/renameio/v2"
)

// snapshot is the JSON document printed by status.
type snapshot struct {
	Profile  laundry.Profile   `json:"profile"`
	Machines []laundry.Machine `json:"machines"`
	Config   any               `json:"config,omitempty"`
}

// sortedMachines orders machines by label, then id.
func sortedMachines(m map[string]laundry.Machine) []laundry.Machine {
	out := make([]laundry.Machine, 0, len(m))
	for _, machine := range m {
		out = append(out, machine)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return append(data, '\n'), nil
}

func printJSON(w io.Writer, v any) error {
	data, err := marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// writeFileAtomic replaces path with data via rename so readers never see
// a partial snapshot.
func writeFileAtomic(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
