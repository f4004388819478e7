package kyc

import (
	"errors"
	"fmt"
)

// Code classifies a workflow failure.
type Code string

const (
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeNotFound          Code = "NOT_FOUND"
	CodeOwnershipMismatch Code = "OWNERSHIP_MISMATCH"
	CodeConflict          Code = "CONFLICT"
	CodeUploadFailed      Code = "UPLOAD_FAILED"
	CodePersistenceFailed Code = "PERSISTENCE_FAILED"
)

// ErrProfileSync marks a failed agent profile mirror update. It is logged,
// never returned to callers.
var ErrProfileSync = errors.New("profile kyc_status sync failed")

// Error is returned by every Service operation. Fields is set for
// InvalidInput and maps form field names to messages.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

func invalidInput(msg string, fields map[string]string) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg, Fields: fields}
}

// CodeOf returns the Code carried by err, or "" when err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err carries code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
