// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService   = "service"
	FieldVersion   = "version"
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldFirstID   = "first_request_id"
	FieldMachineID = "machine_id"
	FieldUserID    = "user_id"

	// Exchange fields
	FieldEvent      = "event"
	FieldCommand    = "command"
	FieldResultCode = "result_code"
	FieldResultText = "result_text"
	FieldStatus     = "status"
	FieldNoRetry    = "no_retry"
	FieldDuration   = "duration_ms"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Network fields
	FieldEndpoint = "endpoint"
)
