// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package codec

import "github.com/google/uuid"

const (
	// PreauthKeySuffix completes the key of requests sent without a first request id.
	PreauthKeySuffix = "R&%76mhK"

	seedLen = 8
	keyLen  = 16
)

// NewRequestID returns a fresh request id in the canonical UUID text form.
func NewRequestID() string {
	return uuid.NewString()
}

// DeriveKey builds the AES key for one request.
//
// Without firstID (authentication-class requests) the key is eight characters
// taken from newID, walking backwards from its last character in steps of two,
// followed by PreauthKeySuffix. With firstID the same walk over newID is
// continued by a walk over firstID until sixteen characters are collected.
func DeriveKey(newID, firstID string) []byte {
	key := make([]rune, 0, keyLen)
	key = walkBackwards(key, []rune(newID), seedLen)
	if firstID == "" {
		return []byte(string(key) + PreauthKeySuffix)
	}
	key = walkBackwards(key, []rune(firstID), keyLen)
	return []byte(string(key))
}

// walkBackwards appends every second rune of src, starting at its end, until
// dst holds limit runes or src is exhausted.
func walkBackwards(dst, src []rune, limit int) []rune {
	for i := len(src) - 1; i >= 0 && len(dst) < limit; i -= 2 {
		dst = append(dst, src[i])
	}
	return dst
}
