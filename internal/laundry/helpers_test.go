// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package laundry

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/ManuGH/golaundry/internal/laundry/laundrytest"
	"github.com/ManuGH/golaundry/internal/transport"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var testNow = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

func nopLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// newTestClient wires a client to a fresh emulator.
func newTestClient(t *testing.T) (*Client, *laundrytest.Server) {
	t.Helper()
	srv := laundrytest.NewServer()
	t.Cleanup(srv.Close)

	httpClient := transport.NewHTTPClient(transport.Options{RateLimit: rate.Inf, Logger: nopLogger()})
	t.Cleanup(httpClient.CloseIdleConnections)

	c := New(Options{
		Endpoint:  srv.Endpoint(),
		Transport: httpClient,
		Logger:    nopLogger(),
		Now:       func() time.Time { return testNow },
	})
	return c, srv
}

// loggedIn returns a client that completed a login against the default fixtures.
func loggedIn(t *testing.T) (*Client, *laundrytest.Server) {
	t.Helper()
	c, srv := newTestClient(t)
	srv.LoginOK(testNow)
	if err := c.Login(context.Background(), "test@example.com", "hunter2"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	return c, srv
}

// doerFunc adapts a function to transport.Doer.
type doerFunc func(ctx context.Context, req transport.Request) (*transport.Response, error)

func (f doerFunc) Post(ctx context.Context, req transport.Request) (*transport.Response, error) {
	return f(ctx, req)
}

// roundTrip gives a fixture the shape the codec produces: JSON numbers become float64.
func roundTrip(t *testing.T, v map[string]any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return out
}
