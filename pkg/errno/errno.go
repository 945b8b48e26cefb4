package errno

import (
	"errors"
	"fmt"
	"net/http"
)

// Errno defines the error code logic
type Errno struct {
	Code       int
	Message    string
	HTTPStatus int

	cause error
}

func (e *Errno) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Errno) Unwrap() error {
	return e.cause
}

// Is reports whether target carries the same code, so that
// errors.Is(err, errno.ErrNotFound) holds for any derived copy.
func (e *Errno) Is(target error) bool {
	t, ok := target.(*Errno)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e with the message replaced
func (e *Errno) WithMessage(msg string) *Errno {
	cp := *e
	cp.Message = msg
	return &cp
}

// Wrap returns a copy of e carrying err as its cause
func (e *Errno) Wrap(err error) *Errno {
	cp := *e
	cp.cause = err
	return &cp
}

// Wrapf is Wrap with a formatted cause
func (e *Errno) Wrapf(format string, args ...interface{}) *Errno {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Status returns the HTTP status to answer with
func (e *Errno) Status() int {
	if e.HTTPStatus == 0 {
		return http.StatusOK
	}
	return e.HTTPStatus
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var typed *Errno
	if errors.As(err, &typed) {
		return typed.Code, err.Error()
	}
	return InternalServerError.Code, err.Error()
}

// StatusOf returns the HTTP status matching err
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var typed *Errno
	if errors.As(err, &typed) {
		return typed.Status()
	}
	return http.StatusInternalServerError
}

// Common Errors
var (
	OK                  = &Errno{Code: 0, Message: "Success", HTTPStatus: http.StatusOK}
	InternalServerError = &Errno{Code: 10001, Message: "Internal server error", HTTPStatus: http.StatusInternalServerError}
	ErrBind             = &Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct", HTTPStatus: http.StatusBadRequest}
)

// Relay Errors (30000+)
var (
	ErrInvalidInput    = &Errno{Code: 30001, Message: "Invalid input", HTTPStatus: http.StatusBadRequest}
	ErrKeyMismatch     = &Errno{Code: 30002, Message: "Signing key does not match sender", HTTPStatus: http.StatusBadRequest}
	ErrNodeUnavailable = &Errno{Code: 30003, Message: "Node unavailable", HTTPStatus: http.StatusServiceUnavailable}
	ErrNodeRejected    = &Errno{Code: 30004, Message: "Node rejected request", HTTPStatus: http.StatusUnprocessableEntity}
	ErrNotFound        = &Errno{Code: 30005, Message: "Proposal not found", HTTPStatus: http.StatusNotFound}
	ErrDecode          = &Errno{Code: 30006, Message: "Unexpected node response", HTTPStatus: http.StatusBadGateway}
	ErrSenderBusy      = &Errno{Code: 30007, Message: "Sender has a transaction in flight", HTTPStatus: http.StatusTooManyRequests}
)

// Kind returns a short label for err, used as a metrics label. The
// outermost *Errno decides, so NotFound wrapping a node revert stays
// not_found.
func Kind(err error) string {
	if err == nil {
		return "none"
	}
	var typed *Errno
	if !errors.As(err, &typed) {
		return "internal"
	}
	switch typed.Code {
	case ErrInvalidInput.Code, ErrBind.Code:
		return "invalid_input"
	case ErrKeyMismatch.Code:
		return "key_mismatch"
	case ErrNodeUnavailable.Code:
		return "node_unavailable"
	case ErrNodeRejected.Code:
		return "node_rejected"
	case ErrNotFound.Code:
		return "not_found"
	case ErrDecode.Code:
		return "decode_error"
	case ErrSenderBusy.Code:
		return "sender_busy"
	default:
		return "internal"
	}
}
