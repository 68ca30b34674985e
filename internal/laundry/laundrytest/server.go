// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package laundrytest provides an in-process emulation of the vendor
// endpoint. It decrypts requests with the real codec, keeps the server side
// of the session (the first request id) and answers with queued replies.
package laundrytest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/ManuGH/golaundry/internal/codec"
	"github.com/go-chi/chi/v5"
)

// Path is the handler path the emulator serves.
const Path = "/AppRequestHandler.aspx"

const (
	commandAuthenticate = "Authenticate2"

	codeInputMalformed = -1
	codeInvalidRequest = 122
)

// Reply is one queued answer.
type Reply struct {
	// Status defaults to 200.
	Status int
	// AuthToken is returned in the CP_AUTH_TOKEN header when set.
	AuthToken string
	// Body is packed into {"Response": base64(gzip(json))}.
	Body map[string]any
	// Raw replaces the packed envelope verbatim when set.
	Raw string
}

// Call is a request the emulator received and decoded.
type Call struct {
	Command   string
	Args      []any
	RequestID string
	AuthToken string
	// FirstRequestID is the id the request was keyed with; empty for the pre-auth key.
	FirstRequestID string
}

// Server is a vendor endpoint emulator.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	replies   map[string][]Reply
	calls     []Call
	firstID   string
	undecoded int
}

// NewServer starts an emulator. Close it when done.
func NewServer() *Server {
	s := &Server{replies: make(map[string][]Reply)}

	r := chi.NewRouter()
	r.Post(Path, s.handle)
	s.Server = httptest.NewServer(r)
	return s
}

// Endpoint is the URL to configure the client with.
func (s *Server) Endpoint() string {
	return s.URL + Path
}

// On replaces the replies for a command. Replies are consumed in order and
// the last one keeps answering.
func (s *Server) On(command string, replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[command] = append([]Reply(nil), replies...)
}

// Calls returns the decoded requests received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Commands returns the command of every decoded request in order.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.Command)
	}
	return out
}

// Undecoded counts requests the emulator could not decrypt.
func (s *Server) Undecoded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undecoded
}

// FirstRequestID is the server-side session start.
func (s *Server) FirstRequestID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstID
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, ok := strings.CutPrefix(string(raw), "CP_REQ_DATA=")
	if !ok {
		s.write(w, Reply{Body: Result(codeInputMalformed, nil)})
		return
	}
	requestID := r.Header.Get("CP_REQ_ID")

	s.mu.Lock()
	call, ok := s.decode(data, requestID)
	if !ok {
		s.undecoded++
		s.mu.Unlock()
		s.write(w, Reply{Body: Result(codeInputMalformed, map[string]any{"ResultText": "Input malformed"})})
		return
	}
	call.AuthToken = r.Header.Get("CP_AUTH_TOKEN")
	s.calls = append(s.calls, call)
	reply := s.next(call.Command)
	s.mu.Unlock()

	s.write(w, reply)
}

// decode tries the pre-auth key first, then the key bound to the session's
// first request id. A login starts a new server-side session. Caller holds mu.
func (s *Server) decode(data, requestID string) (Call, bool) {
	if cmd, args, ok := unpack(data, requestID, ""); ok {
		if cmd == commandAuthenticate {
			s.firstID = requestID
		}
		return Call{Command: cmd, Args: args, RequestID: requestID}, true
	}
	if s.firstID == "" {
		return Call{}, false
	}
	cmd, args, ok := unpack(data, requestID, s.firstID)
	if !ok {
		return Call{}, false
	}
	return Call{Command: cmd, Args: args, RequestID: requestID, FirstRequestID: s.firstID}, true
}

func unpack(data, requestID, firstID string) (string, []any, bool) {
	plain, err := codec.UnpackRequest(data, requestID, firstID)
	if err != nil {
		return "", nil, false
	}
	cmd, args, err := codec.DecodeBody(plain)
	if err != nil {
		return "", nil, false
	}
	return cmd, args, true
}

// next pops the reply for command. Caller holds mu.
func (s *Server) next(command string) Reply {
	queue := s.replies[command]
	if len(queue) == 0 {
		return Reply{Body: Result(codeInvalidRequest, map[string]any{"ResultText": "Invalid request"})}
	}
	reply := queue[0]
	if len(queue) > 1 {
		s.replies[command] = queue[1:]
	}
	return reply
}

func (s *Server) write(w http.ResponseWriter, reply Reply) {
	if reply.AuthToken != "" {
		w.Header()["CP_AUTH_TOKEN"] = []string{reply.AuthToken}
	}
	// The vendor labels its JSON as HTML.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	body := []byte(reply.Raw)
	if reply.Raw == "" {
		packed, err := codec.ResponseEnvelope(reply.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		body = packed
	}

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
