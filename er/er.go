// Copyright (c) 2021 The forkcash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package er provides the error type which is used throughout this
// codebase in place of the native error.  Errors carry an optional
// stack trace and may be tagged with an ErrorCode so callers can
// match on the kind of failure without string comparison.
package er

import (
	"fmt"
	"os"
	"strings"

	goerrors "github.com/go-errors/errors"
)

var stacktraceDisabled = []string{"No stack, ENABLE_STACKTRACE not set"}

// R is the result type returned in place of error.  A nil R means
// success.
type R interface {
	Message() string
	Stack() []string
	String() string
	Wrapped0() error
	Native() error
}

type err struct {
	e    error
	code *ErrorCode
	g    *goerrors.Error
}

func (e *err) Message() string {
	if e.code != nil {
		return e.code.Name + ": " + e.e.Error()
	}
	return e.e.Error()
}

func (e *err) Stack() []string {
	if e.g == nil {
		return stacktraceDisabled
	}
	out := strings.Split(string(e.g.Stack()), "\n")
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func (e *err) String() string {
	if e.g != nil {
		return fmt.Sprintf("%s\n%s", e.Message(), strings.Join(e.Stack(), "\n"))
	}
	return e.Message()
}

func (e *err) Wrapped0() error {
	return e.e
}

func (e *err) Native() error {
	return goerrors.New(e.String())
}

// captureStack is gated behind an environment variable because taking
// stack traces on every script failure is too expensive for block
// validation.
func captureStack(e error) *goerrors.Error {
	if os.Getenv("ENABLE_STACKTRACE") == "" {
		return nil
	}
	return goerrors.Wrap(e, 2)
}

// Wrapped returns the native error underlying an R, or nil.
func Wrapped(e R) error {
	if e == nil {
		return nil
	}
	return e.Wrapped0()
}

// New creates an R from a message string.
func New(s string) R {
	e := goerrors.Errorf(s)
	return &err{e: e, g: captureStack(e)}
}

// Errorf creates an R using fmt.Errorf style formatting.
func Errorf(format string, a ...interface{}) R {
	e := fmt.Errorf(format, a...)
	return &err{e: e, g: captureStack(e)}
}

// E converts a native error to an R, nil maps to nil.
func E(e error) R {
	if e == nil {
		return nil
	}
	return &err{e: e, g: captureStack(e)}
}

// ErrorType is a namespace of related error codes, e.g. all script
// execution failures.
type ErrorType struct {
	name  string
	codes []*ErrorCode
}

// NewErrorType creates a new error namespace, name should identify the
// subsystem such as "txscript.Err".
func NewErrorType(name string) ErrorType {
	return ErrorType{name: name}
}

// Code registers a new error code within this namespace.  Codes are
// meant to be created once at init time and compared by identity.
func (t *ErrorType) Code(name string) *ErrorCode {
	c := &ErrorCode{Name: name, t: t}
	t.codes = append(t.codes, c)
	return c
}

// ErrorCode is one symbolic failure kind within an ErrorType.
type ErrorCode struct {
	Name string
	t    *ErrorType
}

// New creates an error instance tagged with this code.  The wrapped
// error w may be nil.
func (c *ErrorCode) New(info string, w error) R {
	e := w
	if e == nil {
		e = goerrors.Errorf(info)
	} else if info != "" {
		e = fmt.Errorf("%s: %v", info, w)
	}
	return &err{e: e, code: c, g: captureStack(e)}
}

// Default creates an error instance with no additional detail.
func (c *ErrorCode) Default() R {
	return c.New(c.Name, nil)
}

// Is returns true if e is tagged with this exact code.
func (c *ErrorCode) Is(e R) bool {
	if e == nil {
		return false
	}
	if ee, ok := e.(*err); ok {
		return ee.code == c
	}
	return false
}

// String implements fmt.Stringer.
func (c *ErrorCode) String() string {
	return c.Name
}
