package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed export for the caller.
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindInvalidArgument ErrorKind = "invalid-argument"
	KindInternal        ErrorKind = "internal"
)

// Messages returned to callers. Internal failures never expose the cause.
const (
	MsgUnauthenticated = "The function must be called while authenticated."
	MsgEmailRequired   = "User email is required for export."
	MsgExportFailed    = "Failed to export user data. Please try again later."
	MsgExportSent      = "Your data export has been sent to your email address."
)

// ExportError is the only error type ExportUserData returns.
type ExportError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of an ExportError in err's chain, or
// KindInternal for anything else.
func KindOf(err error) ErrorKind {
	var ee *ExportError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return KindInternal
}

func exportInternal(err error) *ExportError {
	return &ExportError{Kind: KindInternal, Message: MsgExportFailed, Err: err}
}

// Record errors returned by stores and Service record operations.
var (
	ErrUnauthenticated   = errors.New("unauthenticated caller")
	ErrRecordNotFound    = errors.New("record not found")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidRecord     = errors.New("invalid record payload")
)
