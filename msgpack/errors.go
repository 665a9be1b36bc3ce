// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode is the closed set of error kinds surfaced at the package
// boundary (§7). Converters never attempt local recovery outside the three
// documented exceptions (unknown-key skip, trailing-slot skip, binary/array
// dual decode); every other condition propagates a CodecError unchanged.
type ErrorCode uint8

const (
	ErrUnspecified ErrorCode = iota
	ErrInvalidData
	ErrUnexpectedNil
	ErrDepthExceeded
	ErrArityMismatch
	ErrMissingRequiredProperty
	ErrDoublePropertyAssignment
	ErrUnknownAlias
	ErrUnsupportedType
	ErrCancelled
)

func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidData:
		return "InvalidData"
	case ErrUnexpectedNil:
		return "UnexpectedNil"
	case ErrDepthExceeded:
		return "DepthExceeded"
	case ErrArityMismatch:
		return "ArityMismatch"
	case ErrMissingRequiredProperty:
		return "MissingRequiredProperty"
	case ErrDoublePropertyAssignment:
		return "DoublePropertyAssignment"
	case ErrUnknownAlias:
		return "UnknownAlias"
	case ErrUnsupportedType:
		return "UnsupportedType"
	case ErrCancelled:
		return "Cancelled"
	default:
		return "Unspecified"
	}
}

// CodecError is the dedicated exception type carrying a closed error code
// plus advisory breadcrumbs (§6.4, §7). Path is populated on the encode
// side (the in-progress property path); Offset and Depth are populated on
// the decode side (consumed byte position and current recursion depth).
// Tests must assert on Code, never on Error()'s exact text.
type CodecError struct {
	code   ErrorCode
	Path   string
	Offset int
	Depth  int
	cause  error
}

func (e *CodecError) Code() ErrorCode { return e.code }

func (e *CodecError) Error() string {
	switch {
	case e.Path != "":
		return fmt.Sprintf("msgpack: %s at property %q: %v", e.code, e.Path, e.cause)
	case e.Offset != 0 || e.Depth != 0:
		return fmt.Sprintf("msgpack: %s at offset %d depth %d: %v", e.code, e.Offset, e.Depth, e.cause)
	default:
		return fmt.Sprintf("msgpack: %s: %v", e.code, e.cause)
	}
}

func (e *CodecError) Unwrap() error { return e.cause }

// Cause implements the github.com/pkg/errors causer interface and returns
// the underlying message error, so errors.Cause(err) descends past the
// *CodecError to that error; CodeOf stops at the *CodecError instead.
func (e *CodecError) Cause() error { return e.cause }

func newCodecError(code ErrorCode, format string, args ...interface{}) *CodecError {
	return &CodecError{code: code, cause: errors.Errorf(format, args...)}
}

// withPath returns a copy of e annotated with an encode-side property path
// breadcrumb, preserving the original code and cause (§6.4: "each wrapping
// converter may annotate a path breadcrumb without changing the code").
func (e *CodecError) withPath(segment string) *CodecError {
	cp := *e
	if cp.Path == "" {
		cp.Path = segment
	} else {
		cp.Path = segment + "." + cp.Path
	}
	return &cp
}

// withPosition annotates a decode-side byte offset / depth breadcrumb.
func (e *CodecError) withPosition(offset, depth int) *CodecError {
	cp := *e
	if cp.Offset == 0 {
		cp.Offset = offset
	}
	if cp.Depth == 0 {
		cp.Depth = depth
	}
	return &cp
}

// CodeOf extracts the ErrorCode from err, following pkg/errors Cause links
// until it reaches a *CodecError. Returns ErrUnspecified if err is nil or no
// link in the chain is a *CodecError.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if ce, ok := err.(*CodecError); ok {
			return ce.code
		}
		c, ok := err.(interface{ Cause() error })
		if !ok {
			break
		}
		err = c.Cause()
	}
	return ErrUnspecified
}

// ---- panic/recover idiom (grounded on the teacher's panicHdl/errorf/halt) ----
//
// Reflect-heavy encode/decode recursion is cheaper to fail out of via panic
// than by threading an error return through every kXXX method; the teacher
// (ugorji/go-codec) does exactly this with panicHdl/errorf and a package
// level halt helper, recovering only at the public Encode/Decode call. This
// package keeps that idiom but wraps the recovered value with pkg/errors so
// the boundary API (§6.2) still returns a normal Go error.

// panicHdl is embedded by types whose methods need to abort the current
// Serialize/Deserialize call via panic.
type panicHdl struct{}

// errorf constructs a *CodecError of the given code and panics with it.
func (panicHdl) errorf(code ErrorCode, format string, args ...interface{}) {
	panic(newCodecError(code, format, args...))
}

// onerror panics err if non-nil, wrapping it as ErrUnspecified unless it is
// already a *CodecError.
func (h panicHdl) onerror(err error) {
	if err == nil {
		return
	}
	if ce, ok := err.(*CodecError); ok {
		panic(ce)
	}
	panic(newCodecError(ErrUnspecified, "%v", err))
}

// recoverError recovers a panic raised via errorf/onerror into a plain
// error, suitable for deferred use at a public API boundary. Non-CodecError
// panics (programmer bugs) are re-panicked rather than swallowed.
func recoverError(errp *error) {
	if r := recover(); r != nil {
		ce, ok := r.(*CodecError)
		if !ok {
			panic(r)
		}
		*errp = errors.WithStack(ce)
	}
}
