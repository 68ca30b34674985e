// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Request is one form-encoded POST to the vendor endpoint.
type Request struct {
	URL string
	// Body is sent verbatim as application/x-www-form-urlencoded.
	Body string
	// Header keys are sent exactly as given; the vendor matches them case-sensitively.
	Header http.Header
	// Command labels metrics and spans only.
	Command string
}

// Response is the raw result of a completed exchange.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Doer performs a single POST exchange.
type Doer interface {
	Post(ctx context.Context, req Request) (*Response, error)
}

// ErrServerStatus marks a 5xx answer from the vendor.
var ErrServerStatus = errors.New("vendor server error")

// StatusError reports an HTTP status the vendor answered with instead of a body.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vendor returned status %d (%s)", e.Status, http.StatusText(e.Status))
}

func (e *StatusError) Unwrap() error { return ErrServerStatus }
