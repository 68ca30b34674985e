// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package laundry

import (
	"errors"
	"fmt"

	"github.com/ManuGH/golaundry/internal/codec"
	"github.com/ManuGH/golaundry/internal/session"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrCommunication   = errors.New("laundry: communication failure")
	ErrResponseFormat  = errors.New("laundry: response is not a JSON object")
	ErrUnexpected      = errors.New("laundry: unexpected response")
	ErrRejected        = errors.New("laundry: request rejected")
	ErrAuthentication  = errors.New("laundry: invalid credentials")
	ErrNotLoggedIn     = session.ErrNotLoggedIn
	ErrMachineNotFound = errors.New("laundry: machine not found")
	ErrVend            = errors.New("laundry: vend failed")
	ErrVendLog         = errors.New("laundry: vend log failed")
)

// Error wraps a sentinel with the exchange it came from.
type Error struct {
	Sentinel  error
	Command   string
	MachineID string
	Code      ResultCode
	HasCode   bool
	Text      string
	Err       error // Nested cause (transport error, decode error, failed re-login)
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v", e.Sentinel)
	if e.Command != "" {
		msg = fmt.Sprintf("%s: %v", e.Command, e.Sentinel)
	}
	if e.MachineID != "" {
		msg = fmt.Sprintf("%s (machine %s)", msg, e.MachineID)
	}
	if e.HasCode {
		msg = fmt.Sprintf("%s (result %d %s)", msg, int(e.Code), e.Code)
	}
	if e.Text != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Text)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

// decodeSentinel maps a codec failure onto the taxonomy: a body that cannot
// be unwrapped is malformed, a body that unwraps into garbage is unexpected.
func decodeSentinel(err error) error {
	var de *codec.DecodeError
	if errors.As(err, &de) {
		switch de.Stage {
		case codec.StageBase64, codec.StageGzip:
			return ErrResponseFormat
		}
	}
	return ErrUnexpected
}

// Kind returns the failure kind of err: the sentinel of the outermost
// *Error, or err itself when it carries none. Classify by Kind rather than
// errors.Is when the kinds are mutually exclusive, e.g. for exit codes.
func Kind(err error) error {
	var le *Error
	if errors.As(err, &le) {
		return le.Sentinel
	}
	return err
}

// outcome labels an exchange result for metrics and spans.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	sentinel := Kind(err)
	switch {
	case errors.Is(sentinel, ErrCommunication):
		return "communication"
	case errors.Is(sentinel, ErrResponseFormat):
		return "response_format"
	case errors.Is(sentinel, ErrRejected):
		return "rejected"
	case errors.Is(sentinel, ErrAuthentication):
		return "authentication"
	case errors.Is(sentinel, ErrVend):
		return "vend"
	case errors.Is(sentinel, ErrVendLog):
		return "vend_log"
	case errors.Is(sentinel, ErrNotLoggedIn):
		return "not_logged_in"
	case errors.Is(sentinel, ErrMachineNotFound):
		return "machine_not_found"
	default:
		return "unexpected"
	}
}
