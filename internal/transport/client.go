// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	xglog "github.com/ManuGH/golaundry/internal/log"
	"github.com/ManuGH/golaundry/internal/resilience"
	"github.com/ManuGH/golaundry/internal/telemetry"
	"github.com/ManuGH/golaundry/internal/version"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// ErrCircuitOpen is returned while the breaker refuses requests.
var ErrCircuitOpen = resilience.ErrCircuitOpen

const (
	defaultTimeout          = 15 * time.Second
	defaultRateLimit        = 2
	defaultRateLimitBurst   = 4
	defaultBreakerThreshold = 5
	defaultBreakerReset     = 30 * time.Second

	// maxBodySize bounds the vendor answer; refresh bundles are a few hundred KB at most.
	maxBodySize = 8 << 20

	contentTypeForm = "application/x-www-form-urlencoded"
)

// Options configures the HTTP transport.
type Options struct {
	Timeout               time.Duration
	ResponseHeaderTimeout time.Duration
	UserAgent             string
	RateLimit             rate.Limit
	RateLimitBurst        int
	BreakerThreshold      int
	BreakerReset          time.Duration
	// Base replaces the pooled http.Transport, mostly for tests.
	Base   http.RoundTripper
	Logger *zerolog.Logger
}

// HTTPClient is the production Doer.
type HTTPClient struct {
	httpClient *http.Client
	base       http.RoundTripper
	limiter    *rate.Limiter
	breaker    *resilience.CircuitBreaker
	userAgent  string
	logger     zerolog.Logger
}

var _ Doer = (*HTTPClient)(nil)

// NewHTTPClient builds an HTTPClient with normalized options.
func NewHTTPClient(opts Options) *HTTPClient {
	nopts := normalizeOptions(opts)

	base := nopts.Base
	if base == nil {
		base = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: nopts.ResponseHeaderTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
		}
	}

	logger := xglog.WithComponent("transport")
	if nopts.Logger != nil {
		logger = *nopts.Logger
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Timeout:   nopts.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
		base:      base,
		limiter:   rate.NewLimiter(nopts.RateLimit, nopts.RateLimitBurst),
		breaker:   resilience.NewCircuitBreaker("transport", nopts.BreakerThreshold, nopts.BreakerReset),
		userAgent: nopts.UserAgent,
		logger:    logger,
	}
}

func normalizeOptions(opts Options) Options {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.ResponseHeaderTimeout <= 0 {
		opts.ResponseHeaderTimeout = opts.Timeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Limit(defaultRateLimit)
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = defaultRateLimitBurst
	}
	if opts.BreakerThreshold <= 0 {
		opts.BreakerThreshold = defaultBreakerThreshold
	}
	if opts.BreakerReset <= 0 {
		opts.BreakerReset = defaultBreakerReset
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = version.UserAgent()
	}
	return opts
}

// BreakerState exposes the circuit breaker state for diagnostics.
func (c *HTTPClient) BreakerState() resilience.State {
	return c.breaker.State()
}

// CloseIdleConnections releases pooled connections.
func (c *HTTPClient) CloseIdleConnections() {
	if ci, ok := c.base.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}

// Post sends req once. Transport errors, cancellation and 5xx answers are
// returned as errors; every other status is handed back with its body.
func (c *HTTPClient) Post(ctx context.Context, req Request) (*Response, error) {
	tracer := telemetry.Tracer(telemetry.TracerName)
	ctx, span := tracer.Start(ctx, "golaundry.transport.post", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String(telemetry.HTTPMethodKey, http.MethodPost),
		attribute.String(telemetry.CommandKey, req.Command),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		requestRejected.WithLabelValues(req.Command, "rate_limit").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var out *Response
	err := c.breaker.Execute(func() error {
		resp, err := c.do(ctx, req)
		out = resp
		return err
	}, countable)
	if errors.Is(err, ErrCircuitOpen) {
		requestRejected.WithLabelValues(req.Command, "circuit_open").Inc()
		c.logger.Warn().
			Str(xglog.FieldEvent, "transport.circuit_open").
			Str(xglog.FieldCommand, req.Command).
			Msg("vendor endpoint circuit is open, request refused")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(telemetry.HTTPAttributes(http.MethodPost, req.URL, out.Status)...)
	if out.Status >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(out.Status))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return out, nil
}

func (c *HTTPClient) do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, strings.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.applyHeaders(httpReq, req.Header)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		recordAttemptMetrics(req.Command, 0, time.Since(start), err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	duration := time.Since(start)
	recordAttemptMetrics(req.Command, resp.StatusCode, duration, err)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	c.logger.Debug().
		Str(xglog.FieldCommand, req.Command).
		Int(xglog.FieldStatus, resp.StatusCode).
		Dur(xglog.FieldDuration, duration).
		Int("bytes", len(body)).
		Msg("vendor answered")

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &StatusError{Status: resp.StatusCode}
	}
	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   body,
	}, nil
}

func (c *HTTPClient) applyHeaders(req *http.Request, extra http.Header) {
	req.Header.Set("Content-Type", contentTypeForm)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	// Direct assignment keeps keys like CP_REQ_ID out of canonical form.
	for k, v := range extra {
		req.Header[k] = v
	}
}

// countable decides which failures trip the breaker. Caller cancellation says
// nothing about the vendor's health.
func countable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
