// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command laundryctl reads card and machine state from the laundry vendor
// API and can start machines remotely.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/golaundry/internal/laundry"
)

// Exit codes.
const (
	exitOK             = 0
	exitFailure        = 1
	exitAuthentication = 3
	exitCommunication  = 4
	exitVend           = 5
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "laundryctl: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps the kind of the outermost laundry error, so a vend that
// failed on transport still exits with exitVend.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	switch kind := laundry.Kind(err); {
	case errors.Is(kind, laundry.ErrVend), errors.Is(kind, laundry.ErrVendLog):
		return exitVend
	case errors.Is(kind, laundry.ErrAuthentication), errors.Is(kind, laundry.ErrNotLoggedIn):
		return exitAuthentication
	case errors.Is(kind, laundry.ErrCommunication):
		return exitCommunication
	default:
		return exitFailure
	}
}
