// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package transport carries vendor exchanges over HTTP.
//
// The laundry client only depends on the Doer interface; HTTPClient is the
// production implementation with pacing, a circuit breaker, tracing and
// per-attempt metrics. POSTs are never retried here: a replayed request id
// would desynchronise the vendor session.
package transport
