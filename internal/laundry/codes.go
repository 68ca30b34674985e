// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package laundry

import (
	"math"
	"strconv"
)

// ResultCode is the numeric status embedded in every decoded response.
type ResultCode int

const (
	CodeInputMalformed     ResultCode = -1
	CodeParentObjectError  ResultCode = 0
	CodeSuccess            ResultCode = 1
	CodeInvalidCredentials ResultCode = 105
	CodeTryAgainLater      ResultCode = 110
	CodeSwipeFailed        ResultCode = 118
	CodeInvalidRequest     ResultCode = 122
	CodeVendSuccess        ResultCode = 161
)

func (c ResultCode) String() string {
	switch c {
	case CodeInputMalformed:
		return "INPUT_MALFORMED"
	case CodeParentObjectError:
		return "PARENT_OBJ_ERROR"
	case CodeSuccess:
		return "SUCCESS"
	case CodeInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case CodeTryAgainLater:
		return "TRY_AGAIN_LATER_BAD_REQUEST"
	case CodeSwipeFailed:
		return "TRY_AGAIN_LATER_SWIPE_FAILED"
	case CodeInvalidRequest:
		return "INVALID_REQUEST"
	case CodeVendSuccess:
		return "VEND_SUCCESS"
	default:
		return "CODE_" + strconv.Itoa(int(c))
	}
}

// Body is a decoded response object.
type Body map[string]any

// Code returns the embedded result code. Missing, null and non-integral
// values report ok=false and read as CodeParentObjectError.
func (b Body) Code() (ResultCode, bool) {
	f, ok := b[keyResultCode].(float64)
	if !ok || f != math.Trunc(f) {
		return CodeParentObjectError, false
	}
	return ResultCode(int(f)), true
}

// strayCode reports a ResultCode that is present and non-empty but not an
// integer, such as "1" or 1.5. Empty values ("", false, null) are not stray.
func (b Body) strayCode() bool {
	if _, ok := b.Code(); ok {
		return false
	}
	switch v := b[keyResultCode].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// Text returns the human readable ResultText, if any.
func (b Body) Text() string {
	s, _ := b[keyResultText].(string)
	return s
}

// verdict is the outcome of checking a result code.
type verdict int

const (
	verdictAccept verdict = iota
	verdictRelogin
	verdictFail
)

// classify applies the vendor's result code policy. The order of the checks
// matters: INPUT_MALFORMED on a retry must be rejected before it can trigger
// another re-login.
func classify(code ResultCode, noRetry bool, accept []ResultCode) (verdict, error) {
	switch {
	case code == CodeParentObjectError, code == CodeInvalidRequest,
		code == CodeInputMalformed && noRetry:
		return verdictFail, ErrRejected
	case code == CodeInputMalformed:
		return verdictRelogin, nil
	case code == CodeInvalidCredentials:
		return verdictFail, ErrAuthentication
	case code == CodeTryAgainLater:
		return verdictFail, ErrCommunication
	case code == CodeSwipeFailed:
		return verdictFail, ErrVend
	case code == CodeSuccess:
		return verdictAccept, nil
	}
	for _, ok := range accept {
		if code == ok {
			return verdictAccept, nil
		}
	}
	return verdictFail, ErrUnexpected
}
