// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package laundry

import (
	"context"
	"crypto/md5" // #nosec G501 -- vendor-defined token derivation
	"encoding/hex"

	xglog "github.com/ManuGH/golaundry/internal/log"
)

// UserToken derives the per-user token the vendor accepts in place of the
// password on later requests.
func UserToken(userID string) string {
	sum := md5.Sum([]byte(userID + userTokenSuffix)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// Login authenticates and loads the profile and machine map. The credentials
// are kept in memory for one self-healing re-login, even if this call fails.
func (c *Client) Login(ctx context.Context, username, password string) error {
	c.session.SetCredentials(username, password)
	return c.login(ctx, username, password, false)
}

func (c *Client) login(ctx context.Context, username, password string, noRetry bool) error {
	req, err := newRequest(CommandAuthenticate,
		appKey,
		username,
		password,
		c.session.InstallationToken(),
		deviceFingerprint,
	)
	if err != nil {
		return err
	}

	body, err := c.send(ctx, req, noRetry)
	if err != nil {
		return err
	}

	profile, err := mapProfile(body)
	if err != nil {
		return &Error{Sentinel: ErrUnexpected, Command: CommandAuthenticate, Text: "incomplete login response", Err: err}
	}
	bundle, _ := body[keyBundle].(map[string]any)
	machines := mapMachines(bundle[keyMachinesInfo], c.now(), c.logger)

	c.profile = profile
	c.machines = machines

	c.logger.Info().
		Str(xglog.FieldEvent, "login.done").
		Str(xglog.FieldUserID, profile.UserID).
		Int("machines", len(machines)).
		Msg("logged in")
	return nil
}
