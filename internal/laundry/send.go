// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package laundry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/golaundry/internal/codec"
	xglog "github.com/ManuGH/golaundry/internal/log"
	"github.com/ManuGH/golaundry/internal/metrics"
	"github.com/ManuGH/golaundry/internal/telemetry"
	"github.com/ManuGH/golaundry/internal/transport"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// request is one logical API call. The body is kept in plaintext so the
// recovery path can re-pack it under the new session.
type request struct {
	command string
	body    []byte
	// accept lists result codes besides SUCCESS that count as success.
	accept []ResultCode
}

func newRequest(command string, args ...any) (request, error) {
	body, err := codec.MarshalBody(command, args...)
	if err != nil {
		return request{}, &Error{Sentinel: ErrUnexpected, Command: command, Err: err}
	}
	return request{command: command, body: body}, nil
}

// send performs one exchange and applies the result code policy. With
// noRetry unset, INPUT_MALFORMED triggers a single re-login followed by one
// more attempt of the same request with noRetry set.
func (c *Client) send(ctx context.Context, req request, noRetry bool) (Body, error) {
	body, err := c.exchange(ctx, req, noRetry)
	if !errors.Is(err, errRelogin) {
		return body, err
	}
	if err := c.recover(ctx, req.command); err != nil {
		return nil, err
	}
	return c.send(ctx, req, true)
}

// errRelogin signals the INPUT_MALFORMED recovery path; it never leaves send.
var errRelogin = errors.New("laundry: session must be re-established")

func (c *Client) recover(ctx context.Context, command string) error {
	logger := c.logger.With().Str(xglog.FieldCommand, command).Logger()
	logger.Warn().Str(xglog.FieldEvent, "relogin.start").Msg("server reported malformed input, re-establishing session")

	c.session.Reset()
	username, password, ok := c.session.Credentials()
	if !ok {
		metrics.RecordRelogin("no_credentials")
		return &Error{
			Sentinel: ErrRejected,
			Command:  command,
			Code:     CodeInputMalformed,
			HasCode:  true,
			Text:     "no stored credentials for re-login",
		}
	}
	if err := c.login(ctx, username, password, true); err != nil {
		metrics.RecordRelogin("failure")
		logger.Error().Err(err).Str(xglog.FieldEvent, "relogin.failed").Msg("request failed even after re-trying login")
		return &Error{
			Sentinel: ErrRejected,
			Command:  command,
			Code:     CodeInputMalformed,
			HasCode:  true,
			Text:     "re-login failed",
			Err:      err,
		}
	}
	metrics.RecordRelogin("success")
	logger.Info().Str(xglog.FieldEvent, "relogin.done").Msg("session re-established, retrying request")
	return nil
}

func (c *Client) exchange(ctx context.Context, req request, noRetry bool) (body Body, err error) {
	firstID := c.session.FirstRequestID()
	env, err := codec.Pack(req.body, firstID)
	if err != nil {
		return nil, &Error{Sentinel: ErrUnexpected, Command: req.command, Err: err}
	}

	ctx = xglog.ContextWithRequestID(ctx, env.NewRequestID)
	ctx = xglog.ContextWithCommand(ctx, req.command)
	logger := xglog.WithContext(ctx, c.logger)

	ctx, span := telemetry.Tracer(telemetry.TracerName).Start(ctx, "golaundry.laundry.exchange",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.ExchangeAttributes(req.command, env.NewRequestID, firstID == "", noRetry)...),
	)
	start := time.Now()
	defer func() {
		label := outcome(err)
		if errors.Is(err, errRelogin) {
			label = "retry"
		}
		metrics.ObserveExchange(req.command, label, time.Since(start))
		if err != nil && label != "retry" {
			span.RecordError(err)
			span.SetAttributes(telemetry.ErrorAttributes(err, label)...)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	logger.Debug().
		Str(xglog.FieldEvent, "exchange.sent").
		Bool(xglog.FieldNoRetry, noRetry).
		Bool("first_exchange", firstID == "").
		Msg("sending request")
	if req.command != CommandAuthenticate {
		logger.Trace().RawJSON("body", req.body).Str("packed", env.Data).Msg("request body")
	}

	resp, err := c.doer.Post(ctx, transport.Request{
		URL:     c.endpoint,
		Body:    env.FormBody(),
		Header:  c.headers(env.NewRequestID),
		Command: req.command,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to send request")
		return nil, &Error{Sentinel: ErrCommunication, Command: req.command, Err: err}
	}
	logger.Trace().Int(xglog.FieldStatus, resp.Status).Bytes("raw", resp.Body).Msg("raw server response")

	var envelope map[string]any
	if err := json.Unmarshal(resp.Body, &envelope); err != nil || envelope == nil {
		return nil, &Error{Sentinel: ErrResponseFormat, Command: req.command, Text: "server response not a JSON object", Err: err}
	}

	// Commit point: the exchange completed and the server answered in kind.
	if firstID == "" && c.session.RecordFirstRequestID(env.NewRequestID) {
		logger.Debug().Str(xglog.FieldFirstID, env.NewRequestID).Msg("session started")
	}
	if token := resp.Header.Get(AuthTokenHeader); token != "" {
		c.session.UpdateAuthToken(token)
		span.SetAttributes(attribute.Bool(telemetry.TokenUpdateKey, true))
	}

	packed, _ := envelope[codec.ResponseField].(string)
	if packed == "" {
		return nil, &Error{Sentinel: ErrUnexpected, Command: req.command, Text: "couldn't find response content"}
	}
	decoded, err := codec.UnpackResponse(packed)
	if err != nil {
		return nil, &Error{Sentinel: decodeSentinel(err), Command: req.command, Text: "failed to unpack response", Err: err}
	}
	if len(decoded) == 0 {
		return nil, &Error{Sentinel: ErrUnexpected, Command: req.command, Text: "missing unpacked content"}
	}
	body = Body(decoded)

	code, _ := body.Code()
	span.SetAttributes(attribute.Int(telemetry.ResultCodeKey, int(code)))
	if req.command != CommandAuthenticate {
		if e := logger.Trace(); e.Enabled() {
			raw, _ := json.Marshal(decoded)
			e.RawJSON("body", raw).Msg("unpacked response content")
		}
	}

	return c.check(body, req, code, noRetry, logger)
}

func (c *Client) check(body Body, req request, code ResultCode, noRetry bool, logger zerolog.Logger) (Body, error) {
	if body.strayCode() {
		logger.Error().
			Interface(xglog.FieldResultCode, body[keyResultCode]).
			Str(xglog.FieldResultText, body.Text()).
			Msg("got unexpected response code")
		return nil, &Error{
			Sentinel: ErrUnexpected,
			Command:  req.command,
			Text:     fmt.Sprintf("non-integer result code %v", body[keyResultCode]),
		}
	}

	v, sentinel := classify(code, noRetry, req.accept)
	switch v {
	case verdictAccept:
		logger.Debug().Int(xglog.FieldResultCode, int(code)).Msg("request succeeded")
		return body, nil
	case verdictRelogin:
		return nil, errRelogin
	}

	switch {
	case errors.Is(sentinel, ErrVend):
		logger.Error().
			Str(xglog.FieldEvent, "vend.swipe_failed").
			Msg("swipe failed, machine is probably offline")
	case errors.Is(sentinel, ErrUnexpected):
		logger.Error().
			Int(xglog.FieldResultCode, int(code)).
			Str(xglog.FieldResultText, body.Text()).
			Msg("got unexpected response code")
	default:
		logger.Warn().
			Int(xglog.FieldResultCode, int(code)).
			Str(xglog.FieldResultText, body.Text()).
			Msg("request failed")
	}
	return nil, &Error{
		Sentinel: sentinel,
		Command:  req.command,
		Code:     code,
		HasCode:  true,
		Text:     body.Text(),
	}
}

func (c *Client) headers(requestID string) http.Header {
	return http.Header{
		RequestIDHeader: {requestID},
		AuthTokenHeader: {c.session.AuthToken()},
	}
}
