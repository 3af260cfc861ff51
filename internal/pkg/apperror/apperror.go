// Package apperror classifies failures so the HTTP layer can surface each
// category as a distinct, user-visible message.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnknown       Kind = "unknown"
	KindConfiguration Kind = "configuration"
	KindInput         Kind = "input"
	KindNotFound      Kind = "not_found"
	KindFilesystem    Kind = "filesystem"
	KindToolMissing   Kind = "tool_missing"
	KindToolFailed    Kind = "tool_failed"
	KindRemote        Kind = "remote"
	KindRemoteAuth    Kind = "remote_auth"
	KindRemoteQuota   Kind = "remote_quota"
	KindRemoteModel   Kind = "remote_model"
	KindRemoteSafety  Kind = "remote_safety"
	KindRemoteEmpty   Kind = "remote_empty"
)

// Error is the error type returned by services and tool wrappers.
// Detail carries diagnostic text such as captured tool output.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, op string, err error, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// WithDetail returns a copy of e carrying detail.
func (e *Error) WithDetail(detail string) *Error {
	cp := *e
	cp.Detail = detail
	return &cp
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// DetailOf returns the Detail of the first *Error in err's chain.
func DetailOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Detail
	}
	return ""
}
