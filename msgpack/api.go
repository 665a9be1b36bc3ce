// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import (
	"context"
	"io"
	"reflect"

	"github.com/pkg/errors"

	"github.com/shapemsgpack/msgpack/shape"
)

// Serialize encodes v (described by s) to a standalone byte slice (§6.2).
// Every panic raised through the panicHdl idiom during the call is recovered
// here and returned as a plain error, wrapped with github.com/pkg/errors so
// callers get a stack trace alongside the *CodecError (recoverable via
// CodeOf).
func Serialize(cache *ConverterCache, v interface{}, s shape.Shape) (data []byte, err error) {
	defer recoverError(&err)

	conv := cache.ConverterFor(s)
	ctx := cache.newContextFor(nil)
	w := NewWriter()
	rv := reflect.ValueOf(v)
	conv.Write(ctx, w, rv)
	return w.Bytes(), nil
}

// Deserialize decodes data (described by s) into out, which must be a
// non-nil pointer to a value of s's type.
func Deserialize(cache *ConverterCache, data []byte, s shape.Shape, out interface{}) (err error) {
	defer recoverError(&err)

	conv := cache.ConverterFor(s)
	ctx := cache.newContextFor(nil)
	r := RentSyncReader(ctx, data)
	defer ReturnReader(ctx)

	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("msgpack: Deserialize requires a non-nil pointer")
	}
	conv.Read(ctx, r, rv.Elem())
	return nil
}

// SerializeAsync streams v's encoding to w, suspending only at the async
// writer's unflushed-bytes threshold (§5, §6.2).
func SerializeAsync(ctx context.Context, cache *ConverterCache, v interface{}, s shape.Shape, w io.Writer) (err error) {
	defer recoverError(&err)

	conv := asAsync(cache.ConverterFor(s))
	c := cache.newContextFor(ctx)
	sink := newStreamSink(w)
	aw := NewAsyncWriter(sink)
	c.BeginRental(true)
	defer c.EndRental()

	rv := reflect.ValueOf(v)
	conv.WriteAsync(c, aw, rv)
	aw.Finish()
	return nil
}

// DeserializeAsync streams out's decoding from r, suspending only at fetch
// boundaries (§5, §6.2).
func DeserializeAsync(ctx context.Context, cache *ConverterCache, r io.Reader, s shape.Shape, out interface{}) (err error) {
	defer recoverError(&err)

	conv := asAsync(cache.ConverterFor(s))
	c := cache.newContextFor(ctx)
	src := newStreamSource(r, 0)
	ar := RentAsyncReader(c, src)
	defer ReturnReader(c)

	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("msgpack: DeserializeAsync requires a non-nil pointer")
	}
	conv.ReadAsync(c, ar, rv.Elem())
	return nil
}
