// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import (
	"reflect"
)

// Converter is a polymorphic handle offering the synchronous operations
// over a value type (§3.3): Read, Write and PreferAsync; it has no schema
// operation. rv is always addressable on Read (so
// in-place decode is possible) and is the value itself (never a pointer
// wrapper the converter must dereference) on Write. Converters are
// reference-shared and immutable once published into a ConverterCache
// (§3.3).
type Converter interface {
	Read(ctx *Context, r *BufferedReader, rv reflect.Value)
	Write(ctx *Context, w *Writer, rv reflect.Value)
	PreferAsync() bool
}

// AsyncConverter is the optional async counterpart (§3.3, §5: "suspend
// only at buffer boundaries"). A Converter that does not implement this
// interface is simply never offered the async path.
type AsyncConverter interface {
	Converter
	ReadAsync(ctx *Context, r *AsyncReader, rv reflect.Value)
	WriteAsync(ctx *Context, w *AsyncWriter, rv reflect.Value)
}

// ConverterFactory is a user-registered override evaluated in registration
// order during visiting (§4.E.1). It may return nil to decline and let the
// standard visitor proceed.
type ConverterFactory func(t reflect.Type, s interface{}, vc *VisitContext) Converter

// syncOnlyAdapter lets a converter written only against the synchronous
// Converter interface be used where an AsyncConverter is expected: it
// falls back to draining the AsyncReader/AsyncWriter into a buffered one.
// This is how the bulk of scalar converters participate in async paths
// without each hand-writing an async variant.
type syncOnlyAdapter struct{ Converter }

func (s syncOnlyAdapter) ReadAsync(ctx *Context, r *AsyncReader, rv reflect.Value) {
	br := r.mustBuffered(ctx)
	s.Converter.Read(ctx, br, rv)
}

func (s syncOnlyAdapter) WriteAsync(ctx *Context, w *AsyncWriter, rv reflect.Value) {
	s.Converter.Write(ctx, w.inner, rv)
	w.maybeFlush(ctx)
}

func asAsync(c Converter) AsyncConverter {
	if ac, ok := c.(AsyncConverter); ok {
		return ac
	}
	return syncOnlyAdapter{c}
}

// withPropertyPath wraps a panic raised while encoding/decoding a
// property's value with that property's name, so the final error carries
// the in-progress property path (§6.4, §7) without altering its Code.
func withPropertyPath(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*CodecError)
			if !ok {
				panic(r)
			}
			panic(ce.withPath(name))
		}
	}()
	fn()
}

// withOffset wraps a panic with the current reader position as the decode
// Offset breadcrumb, if not already set.
func withOffset(r *BufferedReader, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			ce, ok := rec.(*CodecError)
			if !ok {
				panic(rec)
			}
			panic(ce.withPosition(r.Position(), 0))
		}
	}()
	fn()
}

// funcConverter adapts a pair of plain functions to the Converter
// interface; used by the built-in scalar registry (§4.D) where a type's
// read/write bodies are one call into the codec and don't warrant a named
// type each.
type funcConverter struct {
	read   func(ctx *Context, r *BufferedReader, rv reflect.Value)
	write  func(ctx *Context, w *Writer, rv reflect.Value)
	asyncP bool
}

func (f funcConverter) Read(ctx *Context, r *BufferedReader, rv reflect.Value) { f.read(ctx, r, rv) }
func (f funcConverter) Write(ctx *Context, w *Writer, rv reflect.Value)        { f.write(ctx, w, rv) }
func (f funcConverter) PreferAsync() bool                                      { return f.asyncP }
