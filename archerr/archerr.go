/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

// Package archerr carries the per-handle error/status object (§4.7 and §7):
// a numeric code, a severity, and a printf-formatted message, in place of
// the negative-integer return codes the archive formats themselves use.
package archerr

import (
	"fmt"
)

// Severity classifies how serious a return is, independent of its Code.
type Severity uint8

const (
	SeverityOK Severity = iota
	SeverityRetry
	SeverityWarn
	SeverityFailed
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityRetry:
		return "retry"
	case SeverityWarn:
		return "warn"
	case SeverityFailed:
		return "failed"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Kind distinguishes the origin of a Code, mirroring the taxonomy in §7.
type Kind uint8

const (
	KindNone Kind = iota
	KindFileFormat
	KindCodec
	KindProgrammer
	KindIO
	KindMisc
)

// Code is a registered numeric error code, similar in spirit to an HTTP
// status: each package registers a contiguous block of codes and a message
// function at init time.
type Code uint32

const CodeNone Code = 0

type messageFunc func(Code) string

var registry = make(map[Code]messageFunc)

// Register associates a message function with every code from minCode
// onward that the caller's package owns. Re-registering the same minCode
// panics: that signals a code-range collision between two packages, a
// programmer error caught at init time rather than at runtime.
func Register(minCode Code, fn messageFunc) {
	if _, exists := registry[minCode]; exists {
		panic(fmt.Errorf("archerr: code range collision at %d", minCode))
	}
	registry[minCode] = fn
}

func lookup(c Code) messageFunc {
	// Codes are registered by range start; find the highest registered
	// start that is <= c.
	var best Code
	var bestSet bool
	for start := range registry {
		if start <= c && (!bestSet || start > best) {
			best = start
			bestSet = true
		}
	}
	if !bestSet {
		return nil
	}
	return registry[best]
}

// Error is the value carried by the handle's error/status slot: a severity,
// a registered code, a rendered message, and an optional wrapped cause.
type Error struct {
	Sev  Severity
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (code %d): %v", e.Msg, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (code %d)", e.Msg, e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsFatal reports whether the archive is dead and only Close/Free remain
// legal (§4.7: the FATAL transition is sticky).
func (e *Error) IsFatal() bool {
	return e != nil && e.Sev == SeverityFatal
}

// New builds an Error from a registered code, formatting its message with
// args the way CodeError.Errorf does in the teacher package, and wraps
// cause (which may be nil).
func New(sev Severity, code Code, cause error, args ...interface{}) *Error {
	msg := message(code)
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &Error{Sev: sev, Code: code, Msg: msg, Err: cause}
}

func message(c Code) string {
	if c == CodeNone {
		return "no error"
	}
	if fn := lookup(c); fn != nil {
		if m := fn(c); m != "" {
			return m
		}
	}
	return "unregistered error code"
}
