// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package laundry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ManuGH/golaundry/internal/laundry/laundrytest"
	"github.com/ManuGH/golaundry/internal/session"
	"github.com/ManuGH/golaundry/internal/transport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InitialState(t *testing.T) {
	c := New(Options{Transport: doerFunc(nil), Logger: nopLogger()})

	_, err := uuid.Parse(c.InstallationToken())
	require.NoError(t, err)
	assert.False(t, c.Authenticated())
	assert.Equal(t, session.EmptyAuthToken, c.session.AuthToken())
	assert.Empty(t, c.session.FirstRequestID())
	assert.Equal(t, DefaultEndpoint, c.endpoint)

	_, ok := c.Profile()
	assert.False(t, ok)
	assert.Empty(t, c.Machines())
	assert.Nil(t, c.EncryptionKeys())
}

func TestLogin_Success(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On(CommandAuthenticate, laundrytest.Reply{
		AuthToken: laundrytest.AuthToken,
		Body: laundrytest.LoginBody(1.75, laundrytest.MachineEntry{
			ReaderID:         laundrytest.WasherID,
			Label:            "03",
			SetupType:        "Washer",
			MinutesRemaining: 10,
			StateAt:          testNow.Add(-5 * time.Minute),
			BasePrice:        1.5,
			IsOnline:         true,
			SerialNumber:     laundrytest.WasherSerial,
		}.JSON()),
	})

	require.NoError(t, c.Login(context.Background(), "test@example.com", "hunter2"))

	m, ok := c.Machine(laundrytest.WasherID)
	require.True(t, ok)
	assert.Equal(t, 5, m.MinutesRemaining)
	assert.True(t, m.Busy)
	require.NotNil(t, m.Online)
	assert.True(t, *m.Online)
	assert.Equal(t, "03", m.Number)
	assert.Equal(t, MachineWasher, m.Type)
	require.NotNil(t, m.BasePrice)
	assert.Equal(t, 1.5, *m.BasePrice)

	p, ok := c.Profile()
	require.True(t, ok)
	require.NotNil(t, p.CardBalance)
	assert.Equal(t, 1.75, *p.CardBalance)
	assert.Equal(t, laundrytest.UserID, p.UserID)
	assert.Equal(t, laundrytest.LocationAddress, p.LocationAddress)
	assert.Equal(t, UserToken(laundrytest.UserID), p.UserToken)

	assert.True(t, c.Authenticated())
	assert.Equal(t, laundrytest.AuthToken, c.session.AuthToken())
	assert.Equal(t, srv.FirstRequestID(), c.session.FirstRequestID())

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []any{appKey, "test@example.com", "hunter2", c.InstallationToken(), deviceFingerprint}, calls[0].Args)
	assert.Equal(t, session.EmptyAuthToken, calls[0].AuthToken)
	assert.Empty(t, calls[0].FirstRequestID, "login must use the pre-auth key")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	c, srv := newTestClient(t)
	srv.On(CommandAuthenticate, laundrytest.Reply{
		AuthToken: laundrytest.AuthToken,
		Body:      laundrytest.Result(105, map[string]any{"ResultText": "Invalid credentials"}),
	})

	err := c.Login(context.Background(), "incorrect@example.com", "incorrect")
	require.ErrorIs(t, err, ErrAuthentication)

	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, CodeInvalidCredentials, le.Code)
	assert.Equal(t, "Invalid credentials", le.Text)

	_, ok := c.Profile()
	assert.False(t, ok)
	assert.Empty(t, c.Machines())

	// A token header still commits, but without a profile nothing else is allowed.
	assert.ErrorIs(t, c.Refresh(context.Background()), ErrNotLoggedIn)
}

func TestLogin_IncompleteResponse(t *testing.T) {
	c, srv := newTestClient(t)
	body := laundrytest.LoginBody(1)
	delete(body, "DatabaseID")
	srv.On(CommandAuthenticate, laundrytest.Reply{AuthToken: laundrytest.AuthToken, Body: body})

	err := c.Login(context.Background(), "u", "p")
	require.ErrorIs(t, err, ErrUnexpected)
	assert.ErrorContains(t, err, "DatabaseID")
	_, ok := c.Profile()
	assert.False(t, ok)
}

func TestOperations_RequireLogin(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.Refresh(ctx), ErrNotLoggedIn)
	assert.ErrorIs(t, c.GetEncryptionKeys(ctx), ErrNotLoggedIn)
	_, err := c.GetTopoffPrice(ctx, laundrytest.WasherID)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = c.Vend(ctx, laundrytest.WasherID)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, c.LogVend(ctx, laundrytest.WasherID, 1, true), ErrNotLoggedIn)

	assert.Empty(t, srv.Calls())
}

func TestRefresh_ReplacesMachineMap(t *testing.T) {
	c, srv := loggedIn(t)
	require.Len(t, c.Machines(), 2)

	srv.On(CommandRefresh, laundrytest.Reply{Body: laundrytest.RefreshBody(0, laundrytest.MachineEntry{
		ReaderID:  "new-machine",
		Label:     "21",
		SetupType: "Dryer",
		StateAt:   testNow,
		BasePrice: 200,
	}.JSON())})

	require.NoError(t, c.Refresh(context.Background()))

	machines := c.Machines()
	assert.Len(t, machines, 1)
	assert.Contains(t, machines, "new-machine")
	assert.NotContains(t, machines, laundrytest.WasherID)
	assert.Equal(t, 200.0, *machines["new-machine"].BasePrice)
	assert.Nil(t, machines["new-machine"].Online)

	p, _ := c.Profile()
	require.NotNil(t, p.CardBalance, "zero balance is a balance")
	assert.Equal(t, 0.0, *p.CardBalance)

	calls := srv.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []any{UserToken(laundrytest.UserID), laundrytest.UserID}, calls[1].Args)
	assert.Equal(t, laundrytest.AuthToken, calls[1].AuthToken)
	assert.Equal(t, srv.FirstRequestID(), calls[1].FirstRequestID)
}

func TestRefresh_MissingBalanceIsNil(t *testing.T) {
	c, srv := loggedIn(t)
	body := laundrytest.RefreshBody(0)
	delete(body, "CardInformation")
	srv.On(CommandRefresh, laundrytest.Reply{Body: body})

	require.NoError(t, c.Refresh(context.Background()))
	p, _ := c.Profile()
	assert.Nil(t, p.CardBalance)
}

func TestSend_InputMalformedRecoversOnce(t *testing.T) {
	c, srv := loggedIn(t)
	firstSession := srv.FirstRequestID()

	srv.On(CommandRefresh,
		laundrytest.Reply{Body: laundrytest.Result(-1, nil)},
		laundrytest.Reply{Body: laundrytest.RefreshBody(3)},
	)

	require.NoError(t, c.Refresh(context.Background()))

	assert.Equal(t, []string{CommandAuthenticate, CommandRefresh, CommandAuthenticate, CommandRefresh}, srv.Commands())
	assert.NotEqual(t, firstSession, c.session.FirstRequestID(), "re-login starts a new session")
	assert.Equal(t, srv.FirstRequestID(), c.session.FirstRequestID())

	calls := srv.Calls()
	assert.Empty(t, calls[2].FirstRequestID, "re-login uses the pre-auth key")
	assert.Equal(t, session.EmptyAuthToken, calls[2].AuthToken, "re-login is sent unauthenticated")
	assert.Equal(t, srv.FirstRequestID(), calls[3].FirstRequestID)

	p, _ := c.Profile()
	assert.Equal(t, 3.0, *p.CardBalance)
}

func TestSend_SecondInputMalformedIsRejected(t *testing.T) {
	c, srv := loggedIn(t)
	srv.On(CommandRefresh, laundrytest.Reply{Body: laundrytest.Result(-1, nil)})

	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, ErrRejected)

	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, CodeInputMalformed, le.Code)
	assert.Equal(t, []string{CommandAuthenticate, CommandRefresh, CommandAuthenticate, CommandRefresh}, srv.Commands())
}

func TestSend_ReloginFailureIsRejected(t *testing.T) {
	c, srv := loggedIn(t)
	srv.On(CommandRefresh, laundrytest.Reply{Body: laundrytest.Result(-1, nil)})
	srv.On(CommandAuthenticate, laundrytest.Reply{Body: laundrytest.Result(105, nil)})

	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, ErrRejected)
	assert.ErrorIs(t, err, ErrAuthentication, "cause is kept")
	assert.False(t, c.Authenticated())
	assert.Equal(t, []string{CommandAuthenticate, CommandRefresh, CommandAuthenticate}, srv.Commands())
}

func TestSend_ReloginThatIsMalformedDoesNotRecurse(t *testing.T) {
	c, srv := loggedIn(t)
	srv.On(CommandRefresh, laundrytest.Reply{Body: laundrytest.Result(-1, nil)})
	srv.On(CommandAuthenticate, laundrytest.Reply{Body: laundrytest.Result(-1, nil)})

	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, []string{CommandAuthenticate, CommandRefresh, CommandAuthenticate}, srv.Commands())
}

func TestSend_InputMalformedWithoutCredentials(t *testing.T) {
	c, srv := loggedIn(t)
	c.session.SetCredentials("", "")
	srv.On(CommandRefresh, laundrytest.Reply{Body: laundrytest.Result(-1, nil)})

	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, []string{CommandAuthenticate, CommandRefresh}, srv.Commands())
	assert.False(t, c.Authenticated(), "session was reset")
}

func TestSend_ResultCodePolicy(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{0, ErrRejected},
		{122, ErrRejected},
		{105, ErrAuthentication},
		{110, ErrCommunication},
		{118, ErrVend},
		{161, ErrUnexpected},
		{999, ErrUnexpected},
	}
	for _, tt := range tests {
		t.Run(ResultCode(tt.code).String(), func(t *testing.T) {
			c, srv := loggedIn(t)
			srv.On(CommandRefresh, laundrytest.Reply{Body: laundrytest.Result(tt.code, nil)})

			err := c.Refresh(context.Background())
			require.ErrorIs(t, err, tt.want)
			assert.Len(t, srv.Calls(), 2, "no retry")
		})
	}
}

func TestSend_NonIntegerResultCode(t *testing.T) {
	tests := []struct {
		name string
		code any
		want error
	}{
		{"numeric string", "1", ErrUnexpected},
		{"fraction", 1.5, ErrUnexpected},
		{"empty string", "", ErrRejected},
		{"false", false, ErrRejected},
		{"null", nil, ErrRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := loggedIn(t)
			srv.On(CommandRefresh, laundrytest.Reply{Body: laundrytest.Result(1, map[string]any{"ResultCode": tt.code})})

			err := c.Refresh(context.Background())
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.want, Kind(err))
			assert.Len(t, srv.Calls(), 2, "no retry")
		})
	}
}

func TestSend_MissingResponseKey(t *testing.T) {
	c, srv := loggedIn(t)
	srv.On(CommandRefresh, laundrytest.Reply{Raw: `{"Other":"value"}`})

	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, ErrUnexpected)
	assert.ErrorContains(t, err, "couldn't find response content")
}

func TestSend_ResponseShapeFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `<html>oops</html>`, ErrResponseFormat},
		{"json array", `["Response"]`, ErrResponseFormat},
		{"json null", `null`, ErrResponseFormat},
		{"empty response", `{"Response":""}`, ErrUnexpected},
		{"response not a string", `{"Response":5}`, ErrUnexpected},
		{"bad base64", `{"Response":"!!!"}`, ErrResponseFormat},
		{"not gzip", `{"Response":"aGVsbG8="}`, ErrResponseFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := loggedIn(t)
			srv.On(CommandRefresh, laundrytest.Reply{Raw: tt.raw})
			require.ErrorIs(t, c.Refresh(context.Background()), tt.want)
		})
	}
}

func TestSend_ServerErrorIsCommunication(t *testing.T) {
	c, srv := loggedIn(t)
	srv.On(CommandRefresh, laundrytest.Reply{Status: http.StatusServiceUnavailable, Raw: "down"})

	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, ErrCommunication)
	assert.ErrorIs(t, err, transport.ErrServerStatus)
}

func TestSend_TransportFailureDoesNotCommitSession(t *testing.T) {
	boom := errors.New("connection reset")
	c := New(Options{
		Logger: nopLogger(),
		Transport: doerFunc(func(context.Context, transport.Request) (*transport.Response, error) {
			return nil, boom
		}),
	})

	err := c.Login(context.Background(), "u", "p")
	require.ErrorIs(t, err, ErrCommunication)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, c.session.FirstRequestID())
	assert.False(t, c.Authenticated())
}

func TestSend_UnparsableBodyDoesNotCommitSession(t *testing.T) {
	c := New(Options{
		Logger: nopLogger(),
		Transport: doerFunc(func(context.Context, transport.Request) (*transport.Response, error) {
			return &transport.Response{
				Status: http.StatusOK,
				Header: http.Header{"Cp_auth_token": {laundrytest.AuthToken}},
				Body:   []byte("garbage"),
			}, nil
		}),
	})

	require.ErrorIs(t, c.Login(context.Background(), "u", "p"), ErrResponseFormat)
	assert.Empty(t, c.session.FirstRequestID())
	assert.False(t, c.Authenticated())
}

func TestSend_RequestWireFormat(t *testing.T) {
	var got transport.Request
	c := New(Options{
		Endpoint: "https://vendor.test/AppRequestHandler.aspx",
		Logger:   nopLogger(),
		Transport: doerFunc(func(_ context.Context, req transport.Request) (*transport.Response, error) {
			got = req
			return nil, errors.New("stop")
		}),
	})
	_ = c.Login(context.Background(), "u", "p")

	assert.Equal(t, "https://vendor.test/AppRequestHandler.aspx", got.URL)
	assert.Equal(t, CommandAuthenticate, got.Command)
	assert.Contains(t, got.Body, "CP_REQ_DATA=")
	require.Contains(t, got.Header, RequestIDHeader, "header keys keep their case")
	require.Contains(t, got.Header, AuthTokenHeader)
	_, err := uuid.Parse(got.Header[RequestIDHeader][0])
	assert.NoError(t, err)
	assert.Equal(t, session.EmptyAuthToken, got.Header[AuthTokenHeader][0])
}

func TestGetEncryptionKeys(t *testing.T) {
	c, srv := loggedIn(t)
	srv.On(CommandAdditionalInfo,
		laundrytest.Reply{Body: laundrytest.Result(1, map[string]any{"Values": []any{"k1", "k2"}})},
		laundrytest.Reply{Body: laundrytest.Result(1, map[string]any{"Values": []any{}})},
		laundrytest.Reply{Body: laundrytest.Result(1, map[string]any{"Values": "nope"})},
	)
	ctx := context.Background()

	require.NoError(t, c.GetEncryptionKeys(ctx))
	assert.Equal(t, []string{"k1", "k2"}, c.EncryptionKeys())

	require.NoError(t, c.GetEncryptionKeys(ctx), "empty list is logged, not returned")
	assert.Equal(t, []string{"k1", "k2"}, c.EncryptionKeys())

	require.NoError(t, c.GetEncryptionKeys(ctx))
	assert.Equal(t, []string{"k1", "k2"}, c.EncryptionKeys())

	assert.Equal(t, []any{appKey}, srv.Calls()[1].Args)
}

func TestGetTopoffPrice(t *testing.T) {
	c, srv := loggedIn(t)
	srv.On(CommandVendPrice, laundrytest.Reply{Body: laundrytest.Result(1, map[string]any{"TopoffPrice": 0.25})})

	price, err := c.GetTopoffPrice(context.Background(), laundrytest.WasherID)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 0.25, *price)

	m, _ := c.Machine(laundrytest.WasherID)
	require.NotNil(t, m.TopoffPrice)
	assert.Equal(t, 0.25, *m.TopoffPrice)
	assert.Equal(t, 1.5, *m.BasePrice, "only the top-off price is patched")

	other, _ := c.Machine(laundrytest.DryerID)
	assert.Nil(t, other.TopoffPrice)

	assert.Equal(t, []any{UserToken(laundrytest.UserID), laundrytest.DatabaseID, laundrytest.WasherSerial}, srv.Calls()[1].Args)
}

func TestGetTopoffPrice_UnknownMachine(t *testing.T) {
	c, srv := loggedIn(t)

	_, err := c.GetTopoffPrice(context.Background(), "no-such-machine")
	require.ErrorIs(t, err, ErrMachineNotFound)
	assert.Len(t, srv.Calls(), 1, "no exchange attempted")
}

func TestVend(t *testing.T) {
	for _, code := range []int{1, 161} {
		t.Run(ResultCode(code).String(), func(t *testing.T) {
			c, srv := loggedIn(t)
			srv.On(CommandVirtualVend, laundrytest.Reply{Body: laundrytest.Result(code, nil)})

			got, err := c.Vend(context.Background(), laundrytest.WasherID)
			require.NoError(t, err)
			assert.Equal(t, ResultCode(code), got)
			assert.Equal(t, []string{CommandAuthenticate, CommandVirtualVend}, srv.Commands(), "vend is not logged")
			assert.Equal(t, []any{
				UserToken(laundrytest.UserID), laundrytest.DatabaseID, laundrytest.WasherSerial, laundrytest.CardSerial,
			}, srv.Calls()[1].Args)
		})
	}
}

func TestVend_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply laundrytest.Reply
		// inner is the kind the exchange failed with; Vend must not report it.
		inner error
		code  ResultCode
	}{
		{"swipe failed", laundrytest.Reply{Body: laundrytest.Result(118, nil)}, nil, CodeSwipeFailed},
		{"unknown code", laundrytest.Reply{Body: laundrytest.Result(7, nil)}, ErrUnexpected, 7},
		{"rejected", laundrytest.Reply{Body: laundrytest.Result(122, nil)}, ErrRejected, CodeInvalidRequest},
		{"try again later", laundrytest.Reply{Body: laundrytest.Result(110, nil)}, ErrCommunication, CodeTryAgainLater},
		{"invalid credentials", laundrytest.Reply{Body: laundrytest.Result(105, nil)}, ErrAuthentication, CodeInvalidCredentials},
		{"server down", laundrytest.Reply{Status: http.StatusBadGateway}, ErrCommunication, 0},
		{"bad body", laundrytest.Reply{Raw: "nope"}, ErrResponseFormat, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := loggedIn(t)
			srv.On(CommandVirtualVend, tt.reply)

			got, err := c.Vend(context.Background(), laundrytest.WasherID)
			require.ErrorIs(t, err, ErrVend)
			assert.Zero(t, got)
			assert.Equal(t, ErrVend, Kind(err))
			if tt.inner != nil {
				assert.NotErrorIs(t, err, tt.inner)
			}
			var le *Error
			require.ErrorAs(t, err, &le)
			assert.Equal(t, laundrytest.WasherID, le.MachineID)
			assert.Equal(t, tt.code, le.Code)
			assert.Equal(t, tt.code != 0, le.HasCode)
		})
	}
}

func TestVend_ServerErrorKeepsTransportCause(t *testing.T) {
	c, srv := loggedIn(t)
	srv.On(CommandVirtualVend, laundrytest.Reply{Status: http.StatusBadGateway})

	_, err := c.Vend(context.Background(), laundrytest.WasherID)
	require.ErrorIs(t, err, ErrVend)
	assert.ErrorIs(t, err, transport.ErrServerStatus)
}

func TestVend_UnknownMachine(t *testing.T) {
	c, srv := loggedIn(t)
	_, err := c.Vend(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrMachineNotFound)
	assert.Len(t, srv.Calls(), 1)
}

func TestLogVend(t *testing.T) {
	c, srv := loggedIn(t)
	srv.On(CommandVendLog, laundrytest.Reply{Body: laundrytest.Result(1, nil)})

	require.NoError(t, c.LogVend(context.Background(), laundrytest.WasherID, 1, true))

	calls := srv.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []any{
		UserToken(laundrytest.UserID),
		laundrytest.UserID,
		"2026-03-14 18:30:00.000000+00:00",
		laundrytest.CardSerial,
		laundrytest.WasherSerial,
		"03",
		float64(1),
		true,
		false,
		1.5,
	}, calls[1].Args)
}

func TestLogVend_FailureIsVendLog(t *testing.T) {
	c, srv := loggedIn(t)
	srv.On(CommandVendLog, laundrytest.Reply{Body: laundrytest.Result(0, nil)})

	err := c.LogVend(context.Background(), laundrytest.WasherID, 118, false)
	require.ErrorIs(t, err, ErrVendLog)
	assert.NotErrorIs(t, err, ErrRejected)
	assert.Equal(t, ErrVendLog, Kind(err))

	require.ErrorIs(t, c.LogVend(context.Background(), "ghost", 1, true), ErrMachineNotFound)
}

func TestAccessors_ReturnCopies(t *testing.T) {
	c, _ := loggedIn(t)

	machines := c.Machines()
	delete(machines, laundrytest.WasherID)
	*machines[laundrytest.DryerID].BasePrice = 99
	assert.Len(t, c.Machines(), 2)
	m, _ := c.Machine(laundrytest.DryerID)
	assert.Equal(t, 1.25, *m.BasePrice)

	p, _ := c.Profile()
	*p.CardBalance = 1000
	p2, _ := c.Profile()
	assert.Equal(t, 1.75, *p2.CardBalance)
}
