// Package errors provides the error types used by treemirror, along with
// helpers for adding context to errors as they propagate up the stack.
package errors

import (
	goErrors "errors"
	"fmt"
)

// New creates a new error with the given message.
func New(format string, a ...interface{}) error {
	if len(a) == 0 {
		return goErrors.New(format)
	}
	return fmt.Errorf(format, a...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return goErrors.Is(err, target)
}

type withContext struct {
	err     error
	context string
}

// WithContext wraps `err` so that its message is prefixed by `context`. The
// original error can be retrieved with RootCause.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return withContext{err: err, context: context}
}

func (err withContext) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.err)
}

func (err withContext) Unwrap() error {
	return err.err
}

// RootCause returns the error that was originally wrapped by WithContext.
// Typed errors such as CopyError are returned as is, so that callers can
// switch on them.
func RootCause(err error) error {
	for {
		ctxErr, ok := err.(withContext)
		if !ok {
			return err
		}
		err = ctxErr.err
	}
}

// FriendlyError is an error whose message is meant to be shown directly to
// users, without any of the context added by WithContext.
type FriendlyError struct {
	msg string
}

// NewFriendlyError creates a FriendlyError with a formatted message.
func NewFriendlyError(format string, a ...interface{}) error {
	return FriendlyError{fmt.Sprintf(format, a...)}
}

func (err FriendlyError) Error() string {
	return err.msg
}

// FriendlyMessage returns the message that should be shown to the user.
func (err FriendlyError) FriendlyMessage() string {
	return err.msg
}

type friendlyError interface {
	FriendlyMessage() string
}

// GetPrintableMessage returns the message that should be printed when `err`
// is fatal. If a friendly message exists anywhere in the error chain, it's
// used instead of the raw error string.
func GetPrintableMessage(err error) string {
	var friendly friendlyError
	if goErrors.As(err, &friendly) {
		return friendly.FriendlyMessage()
	}
	return err.Error()
}
