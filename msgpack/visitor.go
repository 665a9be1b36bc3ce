// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import (
	"reflect"

	"github.com/shapemsgpack/msgpack/shape"
)

// VisitContext is the standard visitor's working state for a single
// ConverterCache.ConverterFor call (§4.E): it carries the cache (for its
// options and intern table) plus the in-progress set
// that lets recursive type graphs close over a deferredConverter instead of
// looping forever.
type VisitContext struct {
	cache      *ConverterCache
	inProgress map[reflect.Type]*deferredConverter
}

// visit is the double-dispatch entry point: it switches on shape.Kind and
// delegates to the matching visitXxx builder, applying ConverterFactory
// overrides first (§4.E.1) and recursion-closing second (§4.E/§9).
func (vc *VisitContext) visit(s shape.Shape) Converter {
	t := s.Type()

	for _, f := range vc.cache.opts.Factories {
		if c := f(t, s, vc); c != nil {
			return c
		}
	}

	if d, ok := vc.inProgress[t]; ok {
		return d
	}

	d := newDeferredConverter(t)
	vc.inProgress[t] = d

	var real Converter
	switch s.Kind() {
	case shape.KindPrimitive:
		real = vc.visitPrimitive(s.(*shape.PrimitiveShape))
	case shape.KindEnum:
		real = vc.visitEnum(s.(*shape.EnumShape))
	case shape.KindNullable:
		real = vc.visitNullable(s.(*shape.NullableShape))
	case shape.KindEnumerable:
		real = vc.visitEnumerable(s.(*shape.EnumerableShape))
	case shape.KindDictionary:
		real = vc.visitDictionary(s.(*shape.DictionaryShape))
	case shape.KindObject:
		real = vc.visitObject(s.(*shape.ObjectShape))
	default:
		panic(newCodecError(ErrUnsupportedType, "unrecognized shape kind for %s", t))
	}

	d.publish(real)
	delete(vc.inProgress, t)
	return d
}

func (vc *VisitContext) visitPrimitive(s *shape.PrimitiveShape) Converter {
	switch s.Primitive() {
	case shape.PrimBool:
		return boolConverter()
	case shape.PrimInt8:
		return intConverter(8)
	case shape.PrimInt16:
		return intConverter(16)
	case shape.PrimInt32:
		return intConverter(32)
	case shape.PrimInt64:
		return intConverter(64)
	case shape.PrimUint8:
		return uintConverter(8)
	case shape.PrimUint16:
		return uintConverter(16)
	case shape.PrimUint32:
		return uintConverter(32)
	case shape.PrimUint64:
		return uintConverter(64)
	case shape.PrimFloat32:
		return float32Converter()
	case shape.PrimFloat64:
		return float64Converter()
	case shape.PrimChar:
		return charConverter()
	case shape.PrimString:
		return newStringConverter(vc.cache.intern)
	case shape.PrimBytes:
		return byteSliceConverter()
	case shape.PrimTime:
		return timestampExtConverter()
	case shape.PrimTimeOff:
		return dateTimeOffsetConverter()
	case shape.PrimTimeOnly:
		return timeOnlyConverter()
	case shape.PrimBigInt:
		return bigIntConverter()
	case shape.PrimDecimal:
		return decimalConverter()
	case shape.PrimGUID:
		return guidConverter()
	default:
		panic(newCodecError(ErrUnsupportedType, "unrecognized primitive kind for %s", s.Type()))
	}
}

func (vc *VisitContext) visitEnum(s *shape.EnumShape) Converter {
	names := make([]string, len(s.Members))
	ordinals := make([]int64, len(s.Members))
	for i, m := range s.Members {
		names[i] = m.Name
		ordinals[i] = m.Value
	}
	underlying := reflect.Int64
	switch s.Underlying {
	case shape.PrimUint8, shape.PrimUint16, shape.PrimUint32, shape.PrimUint64:
		underlying = reflect.Uint64
	}
	return newEnumConverter(vc.cache.opts.SerializeEnumsByName, names, ordinals, underlying)
}

func (vc *VisitContext) visitNullable(s *shape.NullableShape) Converter {
	elem := vc.visit(s.Element)
	return &nullableConverter{elem: elem, typ: s.Typ}
}

// nullableConverter wraps an element converter with MessagePack Nil <->
// "absent value" mapping (§4.D "Nullable"). The element is assumed to be
// behind a pointer or a type whose IsNil()/zero-value convention matches
// reflect's (pointer, interface, map, slice).
type nullableConverter struct {
	elem Converter
	typ  reflect.Type
}

func (n *nullableConverter) PreferAsync() bool { return n.elem.PreferAsync() }

func (n *nullableConverter) Write(ctx *Context, w *Writer, rv reflect.Value) {
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		w.WriteNil()
		return
	}
	target := rv
	if rv.Kind() == reflect.Ptr {
		target = rv.Elem()
	}
	n.elem.Write(ctx, w, target)
}

func (n *nullableConverter) Read(ctx *Context, r *BufferedReader, rv reflect.Value) {
	if r.PeekNextType() == TokenNil {
		r.ReadNil()
		if rv.Kind() == reflect.Ptr {
			rv.Set(reflect.Zero(rv.Type()))
		}
		return
	}
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		n.elem.Read(ctx, r, rv.Elem())
		return
	}
	n.elem.Read(ctx, r, rv)
}

func (vc *VisitContext) visitEnumerable(s *shape.EnumerableShape) Converter {
	if bc, ok := newBulkConverter(s.Element.Type()); ok && s.Typ.Kind() != reflect.Chan {
		if s.Typ.Kind() == reflect.Slice || s.Typ.Kind() == reflect.Array {
			return bc
		}
	}
	elemConv := vc.visit(s.Element)
	return &enumerableConverter{shape: s, elem: elemConv}
}

// enumerableConverter is the general (non-bulk) sequence converter used for
// channels, custom container types, and element types without a bulk
// specialization (§4.C §4.D).
type enumerableConverter struct {
	shape *shape.EnumerableShape
	elem  Converter
}

func (e *enumerableConverter) PreferAsync() bool { return e.elem.PreferAsync() }

func (e *enumerableConverter) Write(ctx *Context, w *Writer, rv reflect.Value) {
	ctx.EnterComposite()
	defer ctx.ExitComposite()

	it := e.shape.NewIterator(rv)
	var elems []reflect.Value
	for it.Next() {
		elems = append(elems, it.Value())
	}
	w.WriteArrayHeader(len(elems))
	for _, v := range elems {
		e.elem.Write(ctx, w, v)
	}
}

func (e *enumerableConverter) Read(ctx *Context, r *BufferedReader, rv reflect.Value) {
	ctx.EnterComposite()
	defer ctx.ExitComposite()

	n := int(r.ReadArrayHeader())
	if e.shape.SpanConstructor != nil {
		elems := make([]reflect.Value, n)
		for i := 0; i < n; i++ {
			ev := reflect.New(e.shape.Element.Type()).Elem()
			e.elem.Read(ctx, r, ev)
			elems[i] = ev
		}
		rv.Set(e.shape.SpanConstructor(elems))
		return
	}
	state, appendFn, finish := e.shape.NewBuilder()
	for i := 0; i < n; i++ {
		ev := reflect.New(e.shape.Element.Type()).Elem()
		e.elem.Read(ctx, r, ev)
		state = appendFn(state, ev)
	}
	rv.Set(finish(state))
}

func (vc *VisitContext) visitDictionary(s *shape.DictionaryShape) Converter {
	keyConv := vc.visit(s.Key)
	valConv := vc.visit(s.Value)
	return &dictionaryConverter{shape: s, key: keyConv, val: valConv}
}

// dictionaryConverter maps a key/value container to a msgpack Map token
// (§4.D "Dictionary").
type dictionaryConverter struct {
	shape *shape.DictionaryShape
	key   Converter
	val   Converter
}

func (d *dictionaryConverter) PreferAsync() bool { return d.val.PreferAsync() }

func (d *dictionaryConverter) Write(ctx *Context, w *Writer, rv reflect.Value) {
	ctx.EnterComposite()
	defer ctx.ExitComposite()

	it := d.shape.NewIterator(rv)
	type pair struct{ k, v reflect.Value }
	var pairs []pair
	for it.Next() {
		pairs = append(pairs, pair{it.Key(), it.Value()})
	}
	w.WriteMapHeader(len(pairs))
	for _, p := range pairs {
		d.key.Write(ctx, w, p.k)
		d.val.Write(ctx, w, p.v)
	}
}

func (d *dictionaryConverter) Read(ctx *Context, r *BufferedReader, rv reflect.Value) {
	ctx.EnterComposite()
	defer ctx.ExitComposite()

	n := int(r.ReadMapHeader())
	entries := make([]shape.DictEntry, n)
	for i := 0; i < n; i++ {
		kv := reflect.New(d.shape.Key.Type()).Elem()
		d.key.Read(ctx, r, kv)
		vv := reflect.New(d.shape.Value.Type()).Elem()
		d.val.Read(ctx, r, vv)
		entries[i] = shape.DictEntry{Key: kv, Value: vv}
	}
	rv.Set(d.shape.Constructor(entries))
}

func (vc *VisitContext) visitObject(s *shape.ObjectShape) Converter {
	var base Converter
	useArray := layoutIsArray(s, vc.cache.opts)
	if useArray {
		base = newArrayObjectConverter(vc, s)
	} else {
		base = newMapObjectConverter(vc, s)
	}
	if len(s.Unions) > 0 {
		return newUnionConverter(vc, s, base)
	}
	if vc.cache.opts.PreserveReferences != RefPreserveOff && (s.Typ.Kind() == reflect.Ptr || s.Typ.Kind() == reflect.Map) {
		return &refPreservingConverter{inner: base}
	}
	return base
}
