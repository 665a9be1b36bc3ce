// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import (
	"reflect"
	"sync/atomic"
)

// deferredConverter closes recursive type graphs (§4.E, §9): before visiting
// a type's constituents, the visitor inserts a deferredConverter placeholder
// into the in-progress set so a cycle back to the same type resolves to this
// same shared instance rather than recursing forever. Once the real
// converter is known, publish stores it with a release-store so concurrent
// readers (via ConverterCache's read path) never observe a half-built
// pointer (§3.3 "immutable once published").
type deferredConverter struct {
	typ    reflect.Type
	target atomic.Value // holds Converter once published
}

func newDeferredConverter(t reflect.Type) *deferredConverter {
	return &deferredConverter{typ: t}
}

// publish stores the real converter. Must be called exactly once, after the
// visitor finishes building the real converter for typ.
func (d *deferredConverter) publish(c Converter) {
	d.target.Store(c)
}

func (d *deferredConverter) resolved() Converter {
	v := d.target.Load()
	if v == nil {
		return nil
	}
	return v.(Converter)
}

func (d *deferredConverter) PreferAsync() bool {
	if c := d.resolved(); c != nil {
		return c.PreferAsync()
	}
	return false
}

func (d *deferredConverter) Read(ctx *Context, r *BufferedReader, rv reflect.Value) {
	c := d.resolved()
	if c == nil {
		r.errorf(ErrUnspecified, "internal error: recursive converter for %s used before publication", d.typ)
	}
	c.Read(ctx, r, rv)
}

func (d *deferredConverter) Write(ctx *Context, w *Writer, rv reflect.Value) {
	c := d.resolved()
	if c == nil {
		panic(newCodecError(ErrUnspecified, "internal error: recursive converter for %s used before publication", d.typ))
	}
	c.Write(ctx, w, rv)
}

func (d *deferredConverter) ReadAsync(ctx *Context, r *AsyncReader, rv reflect.Value) {
	asAsync(d.resolved()).ReadAsync(ctx, r, rv)
}

func (d *deferredConverter) WriteAsync(ctx *Context, w *AsyncWriter, rv reflect.Value) {
	asAsync(d.resolved()).WriteAsync(ctx, w, rv)
}
