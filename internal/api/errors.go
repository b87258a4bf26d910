// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeTransport
	ErrTypeDecode
	ErrTypeInvalidInput
)

// String returns the lowercase name of the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeTransport:
		return "transport"
	case ErrTypeDecode:
		return "decode"
	case ErrTypeInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// ClientError is a failure that happened on this side of the wire: the request
// could not be built or sent, or the response could not be understood.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrEmptyQuery = &ClientError{Type: ErrTypeInvalidInput, Message: "query is empty"}
	ErrNoFiles    = &ClientError{Type: ErrTypeInvalidInput, Message: "no files selected"}
	ErrNoBaseURL  = &ClientError{Type: ErrTypeInvalidInput, Message: "backend URL is not set"}
)

// RequestError is a non-2xx response. Its message is the response body as
// the backend sent it, so the user sees the server's own explanation.
type RequestError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *RequestError) Error() string {
	return e.Body
}

// Describe returns a log-friendly summary including the status line.
func (e *RequestError) Describe() string {
	return fmt.Sprintf("%s: %s", e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.StatusCode == 404
}

// IsTransport reports whether err means the backend could not be reached.
func IsTransport(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeTransport
}

func transportError(msg string, cause error) error {
	return &ClientError{Type: ErrTypeTransport, Message: msg, Cause: cause}
}

func decodeError(msg string, cause error) error {
	return &ClientError{Type: ErrTypeDecode, Message: msg, Cause: cause}
}
