// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"strings"

	"github.com/ManuGH/golaundry/internal/codec"
	"github.com/spf13/cobra"
)

type decodedRequest struct {
	Command string `json:"command"`
	Args    []any  `json:"args"`
}

func newDecodeRequestCmd() *cobra.Command {
	var requestID, firstID string
	cmd := &cobra.Command{
		Use:   "decode-request DATA",
		Short: "Decrypt a captured request body offline",
		Long: `Decrypts the CP_REQ_DATA form field of a captured request.

--id is the CP_REQ_ID header of that request. --first-id is the request id
of the session's login; leave it empty for the login request itself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := strings.TrimPrefix(strings.TrimSpace(args[0]), "CP_REQ_DATA=")
			plain, err := codec.UnpackRequest(data, requestID, firstID)
			if err != nil {
				return fmt.Errorf("unpack request: %w", err)
			}
			command, list, err := codec.DecodeBody(plain)
			if err != nil {
				return fmt.Errorf("decode request body: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), decodedRequest{Command: command, Args: list})
		},
	}
	cmd.Flags().StringVar(&requestID, "id", "", "request id (CP_REQ_ID header)")
	cmd.Flags().StringVar(&firstID, "first-id", "", "first request id of the session")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
