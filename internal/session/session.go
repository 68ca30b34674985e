// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package session tracks the identifiers that make consecutive requests one
// server-recognised session.
//
// State is not synchronised. A client instance issues one exchange at a time
// and callers sharing an instance must serialise their calls.
package session

import (
	"errors"

	"github.com/google/uuid"
)

// EmptyAuthToken is the sentinel token of an unauthenticated session.
const EmptyAuthToken = "00000000-0000-0000-0000-000000000000"

// ErrNotLoggedIn is returned by RequireAuthenticated before a successful login.
var ErrNotLoggedIn = errors.New("session: not logged in")

// State holds the evolving session identifiers of one client instance.
type State struct {
	firstRequestID    string
	authToken         string
	username          string
	password          string
	installationToken string
}

// New returns an unauthenticated session with a fresh installation token.
func New() *State {
	return &State{
		authToken:         EmptyAuthToken,
		installationToken: uuid.NewString(),
	}
}

// FirstRequestID returns the id of the first exchange, or "" before it.
func (s *State) FirstRequestID() string {
	return s.firstRequestID
}

// RecordFirstRequestID sets the first request id if none is set yet.
// It reports whether the id was stored.
func (s *State) RecordFirstRequestID(id string) bool {
	if s.firstRequestID != "" || id == "" {
		return false
	}
	s.firstRequestID = id
	return true
}

// AuthToken returns the current token, EmptyAuthToken when unauthenticated.
func (s *State) AuthToken() string {
	return s.authToken
}

// UpdateAuthToken overwrites the token. Empty tokens are ignored.
func (s *State) UpdateAuthToken(token string) {
	if token == "" {
		return
	}
	s.authToken = token
}

// Authenticated reports whether the token differs from the sentinel.
func (s *State) Authenticated() bool {
	return s.authToken != EmptyAuthToken
}

// RequireAuthenticated fails with ErrNotLoggedIn while the token is the sentinel.
func (s *State) RequireAuthenticated() error {
	if !s.Authenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

// Reset forgets the first request id and the token. Credentials and the
// installation token survive so the session can log in again.
func (s *State) Reset() {
	s.firstRequestID = ""
	s.authToken = EmptyAuthToken
}

// SetCredentials remembers the login credentials for one self-healing re-login.
func (s *State) SetCredentials(username, password string) {
	s.username = username
	s.password = password
}

// Credentials returns the stored credentials; ok is false unless both are set.
func (s *State) Credentials() (username, password string, ok bool) {
	return s.username, s.password, s.username != "" && s.password != ""
}

// InstallationToken is generated once per State and never changes.
func (s *State) InstallationToken() string {
	return s.installationToken
}
