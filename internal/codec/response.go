// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
)

// ResponseField is the key of the JSON envelope that carries the packed body.
const ResponseField = "Response"

// UnpackResponse decodes the base64(gzip(json)) text of a "Response" field.
// It returns a nil map without error when the JSON is valid but not an object.
func UnpackResponse(encoded string) (map[string]any, error) {
	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, decodeErr(StageBase64, err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, decodeErr(StageGzip, err)
	}
	defer func() { _ = zr.Close() }()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, decodeErr(StageGzip, err)
	}
	if !utf8.Valid(raw) {
		return nil, decodeErr(StageUTF8, fmt.Errorf("response body is not valid UTF-8"))
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, decodeErr(StageJSON, err)
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, nil
	}
	return obj, nil
}

// PackResponse produces the "Response" text the vendor would send for body.
func PackResponse(body []byte) (string, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return "", fmt.Errorf("codec: gzip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("codec: gzip: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ResponseEnvelope wraps a JSON value into the full HTTP body the vendor sends.
func ResponseEnvelope(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal response: %w", err)
	}
	packed, err := PackResponse(body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{ResponseField: packed})
}
