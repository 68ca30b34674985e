// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package laundry

import (
	"fmt"
	"math"
	"strconv"
	"time"

	xglog "github.com/ManuGH/golaundry/internal/log"
	"github.com/rs/zerolog"
)

// MachineType is the setup type a reader reports.
type MachineType string

const (
	MachineWasher  MachineType = "Washer"
	MachineDryer   MachineType = "Dryer"
	MachineUnknown MachineType = "Unknown"
)

func machineTypeOf(setup any) MachineType {
	switch s, _ := setup.(string); MachineType(s) {
	case MachineWasher:
		return MachineWasher
	case MachineDryer:
		return MachineDryer
	default:
		return MachineUnknown
	}
}

// Profile describes the location and the user's virtual card.
type Profile struct {
	LocationAddress string   `json:"location_address"`
	CardBalance     *float64 `json:"card_balance"`
	UserID          string   `json:"user_id"`
	UserToken       string   `json:"-"`
	LocationID      string   `json:"location_id"`
	DatabaseID      string   `json:"database_id,omitempty"`
	CardSerial      string   `json:"card_serial,omitempty"`
}

func (p Profile) clone() Profile {
	p.CardBalance = cloneFloat(p.CardBalance)
	return p
}

// Machine is one washer or dryer.
type Machine struct {
	ID               string      `json:"id"`
	Type             MachineType `json:"type"`
	Number           string      `json:"number"`
	Busy             bool        `json:"busy"`
	MinutesRemaining int         `json:"minutes_remaining"`
	BasePrice        *float64    `json:"base_price"`
	TopoffPrice      *float64    `json:"topoff_price"`
	Online           *bool       `json:"online"`
	ReaderSerial     string      `json:"reader_serial,omitempty"`
}

func (m Machine) clone() Machine {
	m.BasePrice = cloneFloat(m.BasePrice)
	m.TopoffPrice = cloneFloat(m.TopoffPrice)
	if m.Online != nil {
		v := *m.Online
		m.Online = &v
	}
	return m
}

// stateTimeLayouts are tried in order; zone-less stamps are read as UTC.
var stateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func parseStateTime(s string) (time.Time, error) {
	for _, layout := range stateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// adjustedMinutes corrects the reported remaining minutes by the age of the
// report and never goes below zero.
func adjustedMinutes(reported float64, stateAt, now time.Time) int {
	age := now.Sub(stateAt).Minutes()
	m := math.RoundToEven(reported - age)
	if m < 0 || math.IsNaN(m) {
		return 0
	}
	return int(m)
}

// mapMachines builds a fresh machine map from a MachinesInformation object.
// Entries lacking ReaderID, Label or a readable StateDateTimeUtc are skipped.
func mapMachines(info any, now time.Time, logger zerolog.Logger) map[string]*Machine {
	machines := make(map[string]*Machine)

	obj, _ := info.(map[string]any)
	if code, ok := Body(obj).Code(); !ok || code != CodeSuccess {
		logger.Error().
			Str(xglog.FieldEvent, "machines.result").
			Int(xglog.FieldResultCode, int(code)).
			Str(xglog.FieldResultText, Body(obj).Text()).
			Msg("problem with machines response")
	}

	entries, _ := obj[keyMachines].([]any)
	for i, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			logger.Warn().Int("index", i).Msg("skipping machine entry that is not an object")
			continue
		}
		m, err := mapMachine(entry, now)
		if err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("failed to retrieve data for a machine")
			continue
		}
		machines[m.ID] = m
	}
	return machines
}

func mapMachine(entry map[string]any, now time.Time) (*Machine, error) {
	id, ok := entry["ReaderID"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("missing ReaderID")
	}
	label, ok := scalarString(entry["Label"])
	if !ok {
		return nil, fmt.Errorf("machine %s: missing Label", id)
	}
	stamp, ok := entry["StateDateTimeUtc"].(string)
	if !ok {
		return nil, fmt.Errorf("machine %s: missing StateDateTimeUtc", id)
	}
	stateAt, err := parseStateTime(stamp)
	if err != nil {
		return nil, fmt.Errorf("machine %s: %w", id, err)
	}

	reported, _ := entry["MinutesRemaining"].(float64)
	minutes := adjustedMinutes(reported, stateAt, now)

	m := &Machine{
		ID:               id,
		Type:             machineTypeOf(entry["SetupType"]),
		Number:           label,
		Busy:             minutes > 0,
		MinutesRemaining: minutes,
		BasePrice:        floatPtr(entry["BasePrice"]),
	}
	if online, ok := entry["IsOnline"].(bool); ok {
		m.Online = &online
	}
	m.ReaderSerial, _ = scalarString(entry["SerialNumber"])
	return m, nil
}

// mapProfile reads the login response. UserID, LocationAddress, LocationID
// and DatabaseID must be present; DatabaseID may be null.
func mapProfile(body Body) (*Profile, error) {
	userID, ok := scalarString(body["UserID"])
	if !ok || userID == "" {
		return nil, fmt.Errorf("missing UserID")
	}
	for _, key := range []string{"LocationAddress", "LocationID", "DatabaseID"} {
		if _, present := body[key]; !present {
			return nil, fmt.Errorf("missing %s", key)
		}
	}
	address, _ := scalarString(body["LocationAddress"])
	locationID, _ := scalarString(body["LocationID"])
	databaseID, _ := scalarString(body["DatabaseID"])

	bundle, _ := body[keyBundle].(map[string]any)
	card, _ := bundle[keyCardInfo].(map[string]any)
	serial, _ := scalarString(card["AccountNumber"])

	return &Profile{
		LocationAddress: address,
		CardBalance:     floatPtr(card["Balance"]),
		UserID:          userID,
		UserToken:       UserToken(userID),
		LocationID:      locationID,
		DatabaseID:      databaseID,
		CardSerial:      serial,
	}, nil
}

// scalarString renders JSON strings and numbers; anything else is absent.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func floatPtr(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// nullable sends empty identifiers as JSON null, the way the vendor app does.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
