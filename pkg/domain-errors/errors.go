// Package domainerrors defines the coded errors the protocol engine returns
// to its callers. Stores speak sentinel errors; services translate those into
// coded errors; transport maps codes onto HTTP statuses and the OAuth error
// vocabulary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	// CodeInvalidRequest covers malformed or missing parameters, a wrong
	// response_type, or a bad code_challenge_method.
	CodeInvalidRequest Code = "invalid_request"
	// CodeInvalidClient covers an unknown client or a failed secret check.
	CodeInvalidClient Code = "invalid_client"
	// CodeInvalidGrant covers expired, unknown, or mismatched codes and
	// refresh tokens, PKCE failures, and bad resource-owner credentials.
	CodeInvalidGrant         Code = "invalid_grant"
	CodeUnsupportedGrantType Code = "unsupported_grant_type"
	// CodeUnauthorized is the non-OAuth 401: no session, no or invalid
	// bearer token.
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "server_error"
)

// Error carries a code and an operator-facing message. The message is safe to
// return to clients; internal detail stays in the wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is makes two coded errors with the same code and message match, so tests
// can assert with errors.Is against a freshly constructed value.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && (t.Message == "" || e.Message == t.Message)
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// CodeOf extracts the code from err, defaulting to CodeInternal for anything
// that is not a coded error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the client-safe message for err. Uncoded errors yield a
// generic message so internal detail never leaks.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// ToHTTPStatus maps a code onto the status the HTTP surface must emit.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidRequest, CodeInvalidGrant, CodeUnsupportedGrantType:
		return http.StatusBadRequest
	case CodeInvalidClient, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
