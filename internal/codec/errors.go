// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package codec

import (
	"errors"
	"fmt"
)

// ErrDecode is the sentinel every DecodeError unwraps to.
var ErrDecode = errors.New("codec: decode failed")

// ErrKeySize is returned when the derived key is not a valid AES-128 key.
var ErrKeySize = errors.New("codec: derived key is not 16 bytes")

// Stage names the step of an unpack pipeline that failed.
type Stage string

const (
	StageURL     Stage = "url"
	StageBase64  Stage = "base64"
	StageGzip    Stage = "gzip"
	StageCipher  Stage = "cipher"
	StagePadding Stage = "padding"
	StageUTF8    Stage = "utf8"
	StageJSON    Stage = "json"
)

// DecodeError reports which unpack stage rejected the input.
type DecodeError struct {
	Stage Stage
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("codec: %s stage failed", e.Stage)
	}
	return fmt.Sprintf("codec: %s stage failed: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecode}
	}
	return []error{ErrDecode, e.Err}
}

func decodeErr(stage Stage, err error) error {
	return &DecodeError{Stage: stage, Err: err}
}
