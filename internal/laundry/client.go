// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package laundry is a client for the laundry-room vendor API: it logs in,
// reads card and machine state and triggers remote vends over the vendor's
// obfuscated request protocol.
//
// A Client holds one vendor session and is not safe for concurrent use;
// exchanges must be serialised by the caller.
package laundry

import (
	"strings"
	"time"

	xglog "github.com/ManuGH/golaundry/internal/log"
	"github.com/ManuGH/golaundry/internal/session"
	"github.com/ManuGH/golaundry/internal/transport"
	"github.com/rs/zerolog"
)

// Options configures a Client.
type Options struct {
	// Endpoint defaults to DefaultEndpoint.
	Endpoint string
	// Transport defaults to a transport.HTTPClient with default options.
	Transport transport.Doer
	Logger    *zerolog.Logger
	// Now is used for machine state ages and vend log stamps.
	Now func() time.Time
}

// Client talks to the vendor endpoint on behalf of one user.
type Client struct {
	endpoint string
	doer     transport.Doer
	session  *session.State
	logger   zerolog.Logger
	now      func() time.Time

	profile        *Profile
	machines       map[string]*Machine
	encryptionKeys []string
}

// New returns an unauthenticated client.
func New(opts Options) *Client {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	doer := opts.Transport
	if doer == nil {
		doer = transport.NewHTTPClient(transport.Options{})
	}
	logger := xglog.WithComponent("laundry")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		endpoint: endpoint,
		doer:     doer,
		session:  session.New(),
		logger:   logger,
		now:      now,
	}
}

// InstallationToken identifies this client instance to the vendor.
func (c *Client) InstallationToken() string {
	return c.session.InstallationToken()
}

// Authenticated reports whether the session holds a vendor-issued token.
func (c *Client) Authenticated() bool {
	return c.session.Authenticated()
}

// Profile returns a copy of the profile read at login.
func (c *Client) Profile() (Profile, bool) {
	if c.profile == nil {
		return Profile{}, false
	}
	return c.profile.clone(), true
}

// Machines returns a copy of the current machine map keyed by machine id.
func (c *Client) Machines() map[string]Machine {
	out := make(map[string]Machine, len(c.machines))
	for id, m := range c.machines {
		out[id] = m.clone()
	}
	return out
}

// Machine returns a copy of one machine.
func (c *Client) Machine(id string) (Machine, bool) {
	m, ok := c.machines[id]
	if !ok {
		return Machine{}, false
	}
	return m.clone(), true
}

// EncryptionKeys returns the values fetched by GetEncryptionKeys.
func (c *Client) EncryptionKeys() []string {
	if c.encryptionKeys == nil {
		return nil
	}
	return append([]string(nil), c.encryptionKeys...)
}

// requireProfile guards every operation except Login.
func (c *Client) requireProfile() (*Profile, error) {
	if err := c.session.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if c.profile == nil {
		return nil, ErrNotLoggedIn
	}
	return c.profile, nil
}

func (c *Client) machine(command, id string) (*Machine, error) {
	m, ok := c.machines[id]
	if !ok {
		return nil, &Error{Sentinel: ErrMachineNotFound, Command: command, MachineID: id}
	}
	return m, nil
}
