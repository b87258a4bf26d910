// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, display and exit codes for wrench commands.
//
// Command handlers always return errors; main decides how to display them
// and which exit code to use.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/config"
	"github.com/jeranaias/wrench-tui/internal/request"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitBackendError  = 4 // backend answered with a non-2xx status
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command failure with context.
type CommandError struct {
	Command string
	Action  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents invalid user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string // optional
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewCommandError wraps err with the command and action that produced it.
func NewCommandError(command, action string, err error) error {
	return &CommandError{Command: command, Action: action, Err: err}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// ErrMissingArgument creates an error for a missing required argument.
func ErrMissingArgument(argName, usage string) error {
	return NewValidationErrorWithExample(argName, "", "required argument missing", usage)
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	var vehicleErr *vehicle.ValidationError
	var configErrs config.ValidateErrors
	var ttyErr *TTYRequiredError
	var reqErr *api.RequestError
	var clientErr *api.ClientError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &vehicleErr), errors.As(err, &ttyErr):
		return ExitUsageError
	case errors.As(err, &configErrs):
		return ExitConfigError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case api.IsNotFound(err):
		return ExitNotFoundError
	case errors.As(err, &reqErr):
		return ExitBackendError
	case api.IsTransport(err):
		return ExitNetworkError
	case errors.As(err, &clientErr) && clientErr.Type == api.ErrTypeInvalidInput:
		return ExitUsageError
	}
	return ExitGeneralError
}

// errorType names the error category in JSON output.
func errorType(err error) string {
	var reqErr *api.RequestError
	var clientErr *api.ClientError
	switch GetExitCode(err) {
	case ExitUsageError:
		return "validation_error"
	case ExitConfigError:
		return "config_error"
	case ExitTimeoutError:
		return "timeout"
	}
	switch {
	case errors.As(err, &reqErr):
		return "backend_error"
	case errors.As(err, &clientErr):
		return clientErr.Type.String() + "_error"
	}
	return "generic_error"
}

// =============================================================================
// DISPLAY
// =============================================================================

// ErrorData is the data block of a failed JSON response.
type ErrorData struct {
	ErrorType  string `json:"error_type"`
	ExitCode   int    `json:"exit_code"`
	StatusCode int    `json:"status_code,omitempty"`
}

// DisplayError writes err to w: JSON in JSON mode, otherwise one styled line.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	var done *reportedError
	if err == nil || errors.As(err, &done) {
		return
	}

	if jsonMode {
		resp := NewJSONErrorResponse(command, err)
		data := ErrorData{ErrorType: errorType(err), ExitCode: GetExitCode(err)}
		var reqErr *api.RequestError
		if errors.As(err, &reqErr) {
			data.StatusCode = reqErr.StatusCode
		}
		resp.Data = data
		_ = resp.Write(w)
		return
	}

	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = "request failed"
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), msg)
}

// failure shows the slot fallback text for errors without a message, the
// same text the TUI shows.
type failure struct {
	msg string
	err error
}

func (f *failure) Error() string { return f.msg }
func (f *failure) Unwrap() error { return f.err }

func failWith(err error, fallback string) error {
	if err == nil {
		return nil
	}
	return &failure{msg: request.FailureMessage(err, fallback), err: err}
}

// reportedError marks an error whose output has already been written.
// DisplayError skips it; the exit code still reflects it.
type reportedError struct{ err error }

func (r *reportedError) Error() string { return r.err.Error() }
func (r *reportedError) Unwrap() error { return r.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// WrapError adds context to err. Nil stays nil.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
