// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the client.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPURLKey        = "http.url"

	// Exchange attributes
	CommandKey     = "laundry.command"
	RequestIDKey   = "laundry.request_id"
	FirstExchange  = "laundry.first_exchange"
	NoRetryKey     = "laundry.no_retry"
	ResultCodeKey  = "laundry.result_code"
	MachineIDKey   = "laundry.machine_id"
	TokenUpdateKey = "laundry.auth_token_updated"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// ExchangeAttributes describes one vendor exchange before it is sent.
func ExchangeAttributes(command, requestID string, first, noRetry bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(CommandKey, command),
		attribute.String(RequestIDKey, requestID),
		attribute.Bool(FirstExchange, first),
		attribute.Bool(NoRetryKey, noRetry),
	}
}

// MachineAttributes tags spans of machine-scoped operations.
func MachineAttributes(machineID string) []attribute.KeyValue {
	if machineID == "" {
		return nil
	}
	return []attribute.KeyValue{attribute.String(MachineIDKey, machineID)}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
