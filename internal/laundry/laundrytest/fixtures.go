// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package laundrytest

import (
	"time"
)

// Fixture identifiers shared by tests.
const (
	UserID          = "4e353d4d-a9c9-5867-9324-99dbe26d9c35"
	LocationID      = "dd240cf3-7702-5101-8b5b-6dbcdda95d07"
	LocationAddress = "270 Commerce Dr., Fort Washington, PA 19034"
	DatabaseID      = "ESD-PA-0113"
	CardSerial      = "9000112233"
	AuthToken       = "e94eca12-854f-409e-b32f-302805ed12d9" // #nosec G101 -- test fixture

	WasherID     = "a312b4b7-5110-5775-9966-ed9a6e087e3a"
	WasherSerial = "10044512"
	DryerID      = "f1d3a6c0-2f71-5e55-8b0a-0c9b4a1e7d21"
	DryerSerial  = "10044513"
)

// Result builds a decoded response body with the given result code.
func Result(code int, fields map[string]any) map[string]any {
	out := map[string]any{"ResultCode": code}
	if code == 1 {
		out["ResultText"] = "Success"
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// MachineEntry describes one machine as the vendor reports it.
type MachineEntry struct {
	ReaderID         string
	Label            string
	SetupType        string
	MinutesRemaining float64
	StateAt          time.Time
	BasePrice        float64
	IsOnline         any
	SerialNumber     string
}

// JSON renders the entry in the vendor's field names.
func (m MachineEntry) JSON() map[string]any {
	out := map[string]any{
		"ReaderID":         m.ReaderID,
		"Label":            m.Label,
		"SetupType":        m.SetupType,
		"MinutesRemaining": m.MinutesRemaining,
		"StateDateTimeUtc": m.StateAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"BasePrice":        m.BasePrice,
		"SerialNumber":     m.SerialNumber,
	}
	if m.IsOnline != nil {
		out["IsOnline"] = m.IsOnline
	}
	return out
}

// MachinesInformation wraps entries the way the vendor nests them.
func MachinesInformation(entries ...map[string]any) map[string]any {
	list := make([]any, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	return map[string]any{"ResultCode": 1, "Machines": list}
}

// DefaultMachines is an idle washer and a dryer with ten minutes left, both
// reported at now.
func DefaultMachines(now time.Time) []map[string]any {
	return []map[string]any{
		MachineEntry{
			ReaderID:     WasherID,
			Label:        "03",
			SetupType:    "Washer",
			StateAt:      now,
			BasePrice:    1.5,
			IsOnline:     true,
			SerialNumber: WasherSerial,
		}.JSON(),
		MachineEntry{
			ReaderID:         DryerID,
			Label:            "11",
			SetupType:        "Dryer",
			MinutesRemaining: 10,
			StateAt:          now,
			BasePrice:        1.25,
			IsOnline:         true,
			SerialNumber:     DryerSerial,
		}.JSON(),
	}
}

// LoginBody is a successful Authenticate2 answer.
func LoginBody(balance float64, machines ...map[string]any) map[string]any {
	return Result(1, map[string]any{
		"UserID":          UserID,
		"LocationAddress": LocationAddress,
		"LocationID":      LocationID,
		"DatabaseID":      DatabaseID,
		"Bundle": map[string]any{
			"CardInformation": map[string]any{
				"Balance":       balance,
				"AccountNumber": CardSerial,
			},
			"MachinesInformation": MachinesInformation(machines...),
		},
	})
}

// RefreshBody is a successful ConsolidatedRefresh answer.
func RefreshBody(balance float64, machines ...map[string]any) map[string]any {
	return Result(1, map[string]any{
		"CardInformation":     map[string]any{"Balance": balance},
		"MachinesInformation": MachinesInformation(machines...),
	})
}

// LoginOK queues a successful login that issues AuthToken.
func (s *Server) LoginOK(now time.Time) {
	s.On(commandAuthenticate, Reply{AuthToken: AuthToken, Body: LoginBody(1.75, DefaultMachines(now)...)})
}
