// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"unicode/utf8"
)

// Envelope is a packed request ready for the CP_REQ_DATA form field.
type Envelope struct {
	NewRequestID   string
	FirstRequestID string // empty for authentication-class requests
	Data           string // percent-encoded, double base64, AES-encrypted body
}

// FormBody renders the request body sent to the vendor endpoint.
func (e Envelope) FormBody() string {
	return "CP_REQ_DATA=" + e.Data
}

// MarshalBody serialises a positional request (command name followed by its
// arguments) into the JSON array form the vendor expects.
func MarshalBody(command string, args ...any) ([]byte, error) {
	list := make([]any, 0, len(args)+1)
	list = append(list, command)
	list = append(list, args...)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(list); err != nil {
		return nil, fmt.Errorf("codec: marshal %s: %w", command, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Pack encrypts body under a fresh request id.
func Pack(body []byte, firstID string) (Envelope, error) {
	return PackWithID(body, NewRequestID(), firstID)
}

// PackWithID encrypts body under the given request id. Captured traffic can be
// re-packed with its original id to compare against the wire.
func PackWithID(body []byte, newID, firstID string) (Envelope, error) {
	ciphertext, err := Encrypt(body, DeriveKey(newID, firstID))
	if err != nil {
		return Envelope{}, fmt.Errorf("codec: encrypt: %w", err)
	}
	inner := base64.StdEncoding.EncodeToString(ciphertext)
	outer := base64.URLEncoding.EncodeToString([]byte(inner))
	return Envelope{
		NewRequestID:   newID,
		FirstRequestID: firstID,
		Data:           url.QueryEscape(outer),
	}, nil
}

// UnpackRequest is the inverse of PackWithID. It is only needed to inspect
// captured traffic and by the test server.
func UnpackRequest(data, newID, firstID string) ([]byte, error) {
	unescaped, err := url.QueryUnescape(data)
	if err != nil {
		return nil, decodeErr(StageURL, err)
	}
	inner, err := base64.URLEncoding.DecodeString(unescaped)
	if err != nil {
		return nil, decodeErr(StageBase64, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(string(inner))
	if err != nil {
		return nil, decodeErr(StageBase64, err)
	}
	plain, err := Decrypt(ciphertext, DeriveKey(newID, firstID))
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(plain) {
		return nil, decodeErr(StageUTF8, fmt.Errorf("request body is not valid UTF-8"))
	}
	return plain, nil
}

// DecodeBody parses an unpacked request into its command and arguments.
func DecodeBody(plain []byte) (string, []any, error) {
	var list []any
	if err := json.Unmarshal(plain, &list); err != nil {
		return "", nil, decodeErr(StageJSON, err)
	}
	if len(list) == 0 {
		return "", nil, decodeErr(StageJSON, fmt.Errorf("empty request array"))
	}
	command, ok := list[0].(string)
	if !ok {
		return "", nil, decodeErr(StageJSON, fmt.Errorf("command is %T, not a string", list[0]))
	}
	return command, list[1:], nil
}
