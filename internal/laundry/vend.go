// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package laundry

import (
	"context"

	xglog "github.com/ManuGH/golaundry/internal/log"
)

// GetTopoffPrice asks for the top-off price of one machine and patches it
// into the machine record. The returned price is nil when the vendor sent none.
func (c *Client) GetTopoffPrice(ctx context.Context, machineID string) (*float64, error) {
	profile, err := c.requireProfile()
	if err != nil {
		return nil, err
	}
	m, err := c.machine(CommandVendPrice, machineID)
	if err != nil {
		return nil, err
	}
	req, err := newRequest(CommandVendPrice, profile.UserToken, nullable(profile.DatabaseID), nullable(m.ReaderSerial))
	if err != nil {
		return nil, err
	}

	body, err := c.send(ctx, req, false)
	if err != nil {
		return nil, err
	}

	// Look the machine up again: a re-login may have replaced the map.
	m, err = c.machine(CommandVendPrice, machineID)
	if err != nil {
		return nil, err
	}
	m.TopoffPrice = floatPtr(body["TopoffPrice"])
	return cloneFloat(m.TopoffPrice), nil
}

// Vend starts a machine against the user's card and returns the success
// code the vendor answered with (SUCCESS or VEND_SUCCESS). Any failure,
// including a failed exchange, is reported as ErrVend.
func (c *Client) Vend(ctx context.Context, machineID string) (ResultCode, error) {
	profile, err := c.requireProfile()
	if err != nil {
		return 0, err
	}
	m, err := c.machine(CommandVirtualVend, machineID)
	if err != nil {
		return 0, err
	}
	req, err := newRequest(CommandVirtualVend,
		profile.UserToken,
		nullable(profile.DatabaseID),
		nullable(m.ReaderSerial),
		nullable(profile.CardSerial),
	)
	if err != nil {
		return 0, err
	}
	req.accept = []ResultCode{CodeVendSuccess}

	logger := c.logger.With().Str(xglog.FieldMachineID, machineID).Logger()
	body, err := c.send(ctx, req, false)
	if err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "vend.failed").Msg("failed to vend machine")
		return 0, vendError(ErrVend, CommandVirtualVend, machineID, err)
	}

	// Vend logging is left to the caller; the vend alone updates the vendor's activity log.
	code, _ := body.Code()
	logger.Info().Str(xglog.FieldEvent, "vend.done").Int(xglog.FieldResultCode, int(code)).Msg("vend successful")
	return code, nil
}

// LogVend records a vend attempt the way the vendor app does after a vend.
// Vend does not call it.
func (c *Client) LogVend(ctx context.Context, machineID string, errorCode int, success bool) error {
	profile, err := c.requireProfile()
	if err != nil {
		return err
	}
	m, err := c.machine(CommandVendLog, machineID)
	if err != nil {
		return err
	}
	req, err := newRequest(CommandVendLog,
		profile.UserToken,
		profile.UserID,
		c.now().UTC().Format(vendLogTimeLayout),
		nullable(profile.CardSerial),
		nullable(m.ReaderSerial),
		m.Number,
		errorCode,
		success,
		false,
		m.BasePrice, // always the base price, even when topping off
	)
	if err != nil {
		return err
	}

	if _, err := c.send(ctx, req, false); err != nil {
		c.logger.Error().Err(err).
			Str(xglog.FieldMachineID, machineID).
			Str(xglog.FieldEvent, "vend_log.failed").
			Msg("failed to log vend")
		return vendError(ErrVendLog, CommandVendLog, machineID, err)
	}
	return nil
}

// vendError reports a failed vend exchange as sentinel only. The exchange's
// own kind is dropped; its result code, text and transport cause are kept.
func vendError(sentinel error, command, machineID string, cause error) error {
	e := &Error{Sentinel: sentinel, Command: command, MachineID: machineID}
	for {
		inner, ok := cause.(*Error)
		if !ok {
			e.Err = cause
			return e
		}
		if inner.HasCode && !e.HasCode {
			e.Code, e.HasCode = inner.Code, true
		}
		if e.Text == "" {
			e.Text = inner.Text
		}
		cause = inner.Err
	}
}
