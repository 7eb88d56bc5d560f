// Package errors provides AppError, the structured error carried by every
// layer of KeyIP-Ingest.  A code classifies the failure so skips can be
// counted and logged by category while the cause chain stays intact for
// errors.Is and errors.As.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack formats the call stack above its caller's caller.  skip
// counts the frames between the public factory and captureStack.
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError
// ─────────────────────────────────────────────────────────────────────────────

// AppError is a coded error with an optional cause.
//
//	return errors.New(errors.ErrCodeNestingTooDeep, "nested archive exceeds depth 10")
//	return errors.Wrap(zipErr, errors.ErrCodeArchiveCorrupt, "cannot open archive").
//	           WithDetail("archive=2019/FR_20190103.zip")
type AppError struct {
	Code    ErrorCode
	Message string
	// Detail locates the failure (path, entry, key) without repeating Message.
	Detail string
	Cause  error
	// Stack is captured at construction and never part of Error().
	Stack string
}

// Error formats as "[<code>] <message>" or "[<code>] <message>: <detail>".
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a copy with Detail set.  A nil receiver stays nil.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a copy with Cause set.  A nil receiver stays nil.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Factories
// ─────────────────────────────────────────────────────────────────────────────

// build is shared by every exported factory so the captured stack starts at
// the factory's caller.
func build(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Stack:   captureStack(2),
	}
}

// New returns an AppError without a cause.
func New(code ErrorCode, message string) *AppError {
	return build(code, message, nil)
}

// Wrap attaches code and message to err.  A nil err yields nil, so assign the
// result to an error variable only after checking err.  CodeUnknown keeps the
// code of the first AppError already in the chain.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		code = GetCode(err)
	}
	return build(code, message, err)
}

// NotFound returns a CodeNotFound error.
func NotFound(message string) *AppError {
	return build(CodeNotFound, message, nil)
}

// InvalidParam returns a CodeInvalidParam error.
func InvalidParam(message string) *AppError {
	return build(CodeInvalidParam, message, nil)
}

// Internal returns a CodeInternal error.
func Internal(message string) *AppError {
	return build(CodeInternal, message, nil)
}

// Timeout wraps err, a deadline expiry, as ErrCodeTimeout.
func Timeout(err error, message string) *AppError {
	return build(ErrCodeTimeout, message, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any AppError in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound is IsCode(err, CodeNotFound).
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsSkip reports whether err is a per-entry or per-archive failure that a
// run records and moves past.
func IsSkip(err error) bool {
	return GetCode(err).IsSkip()
}

// GetCode returns the code of the first AppError in err's chain, CodeOK for
// nil and CodeUnknown for a chain without one.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

//Personal.AI order the ending
