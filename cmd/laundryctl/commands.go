// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"errors"
	"fmt"

	"github.com/ManuGH/golaundry/internal/config"
	"github.com/ManuGH/golaundry/internal/laundry"
	xglog "github.com/ManuGH/golaundry/internal/log"
	"github.com/spf13/cobra"
)

var errVendNotConfirmed = errors.New("refusing to vend without --yes")

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var (
		output     string
		showConfig bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print card balance and machine state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := opts.start(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.client.Refresh(ctx); err != nil {
				return fmt.Errorf("refresh: %w", err)
			}
			profile, _ := rt.client.Profile()
			snap := snapshot{
				Profile:  profile,
				Machines: sortedMachines(rt.client.Machines()),
			}
			if showConfig {
				snap.Config = config.MaskSecrets(rt.cfg)
			}

			if output == "" {
				return printJSON(cmd.OutOrStdout(), snap)
			}
			data, err := marshal(snap)
			if err != nil {
				return err
			}
			if err := writeFileAtomic(output, data); err != nil {
				return err
			}
			rt.logger.Info().
				Str(xglog.FieldEvent, "status.written").
				Str("path", output).
				Int("machines", len(snap.Machines)).
				Msg("status snapshot written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the snapshot to this file instead of stdout")
	cmd.Flags().BoolVar(&showConfig, "show-config", false, "include the effective configuration (secrets masked)")
	return cmd
}

func newKeysCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print the additional encryption values issued to the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := opts.start(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.client.GetEncryptionKeys(ctx); err != nil {
				return fmt.Errorf("get encryption keys: %w", err)
			}
			for _, key := range rt.client.EncryptionKeys() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), key); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newTopoffCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "topoff MACHINE_ID",
		Short: "Fetch the top-off price of a machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := opts.start(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			if _, err := rt.client.GetTopoffPrice(ctx, args[0]); err != nil {
				return fmt.Errorf("get top-off price: %w", err)
			}
			machine, _ := rt.client.Machine(args[0])
			return printJSON(cmd.OutOrStdout(), machine)
		},
	}
}

func newVendCmd(opts *rootOptions) *cobra.Command {
	var (
		confirmed bool
		record    bool
	)
	cmd := &cobra.Command{
		Use:   "vend MACHINE_ID",
		Short: "Start a machine and charge the card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errVendNotConfirmed
			}
			ctx := cmd.Context()
			rt, err := opts.start(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			machineID := args[0]
			code, vendErr := rt.client.Vend(ctx, machineID)
			if record {
				if err := rt.client.LogVend(ctx, machineID, vendResultCode(code, vendErr), vendErr == nil); err != nil {
					rt.logger.Warn().Err(err).Str(xglog.FieldMachineID, machineID).Msg("vend log entry failed")
				}
			}
			if vendErr != nil {
				return vendErr
			}

			machine, _ := rt.client.Machine(machineID)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "started %s %s\n", machine.Type, machine.Number)
			return err
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm that the card will be charged")
	cmd.Flags().BoolVar(&record, "record", false, "create a vend log entry after the attempt")
	return cmd
}

// vendResultCode is the error code recorded in the vend log: the code the
// vendor answered with, or 0 when the failure carried none.
func vendResultCode(code laundry.ResultCode, err error) int {
	if err == nil {
		return int(code)
	}
	var le *laundry.Error
	if errors.As(err, &le) && le.HasCode {
		return int(le.Code)
	}
	return 0
}
