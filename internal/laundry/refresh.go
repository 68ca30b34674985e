// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package laundry

import (
	"context"

	xglog "github.com/ManuGH/golaundry/internal/log"
)

// Refresh reloads the card balance and replaces the machine map.
func (c *Client) Refresh(ctx context.Context) error {
	profile, err := c.requireProfile()
	if err != nil {
		return err
	}
	req, err := newRequest(CommandRefresh, profile.UserToken, profile.UserID)
	if err != nil {
		return err
	}

	body, err := c.send(ctx, req, false)
	if err != nil {
		return err
	}

	card, _ := body[keyCardInfo].(map[string]any)
	machines := mapMachines(body[keyMachinesInfo], c.now(), c.logger)

	// c.profile, not profile: a re-login during send replaces the record.
	c.profile.CardBalance = floatPtr(card["Balance"])
	c.machines = machines

	c.logger.Debug().
		Str(xglog.FieldEvent, "refresh.done").
		Int("machines", len(machines)).
		Msg("refreshed machine state")
	return nil
}

// GetEncryptionKeys fetches the vendor's additional information values. A
// response without a non-empty list is logged and leaves prior keys in place.
func (c *Client) GetEncryptionKeys(ctx context.Context) error {
	if _, err := c.requireProfile(); err != nil {
		return err
	}
	req, err := newRequest(CommandAdditionalInfo, appKey)
	if err != nil {
		return err
	}

	body, err := c.send(ctx, req, false)
	if err != nil {
		return err
	}

	values, _ := body["Values"].([]any)
	keys := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			keys = nil
			break
		}
		keys = append(keys, s)
	}
	if len(keys) == 0 {
		c.logger.Error().
			Str(xglog.FieldEvent, "keys.invalid").
			Int("values", len(values)).
			Msg("failed to retrieve encryption keys")
		return nil
	}
	c.encryptionKeys = keys
	return nil
}
