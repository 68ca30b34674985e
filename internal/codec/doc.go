// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package codec implements the vendor's request/response obfuscation.
//
// Requests travel as a JSON array that is PKCS#7 padded, AES-128-CBC
// encrypted with a key derived from the request ids, base64 encoded twice and
// percent-encoded into the CP_REQ_DATA form field. Responses carry a
// base64(gzip(json)) string in the "Response" field of a JSON object.
//
// The scheme is a fixed obfuscation, not a security boundary: the IV is a
// constant and the key material travels in the request headers.
package codec
