// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import (
	"reflect"

	"github.com/shapemsgpack/msgpack/shape"
)

// unionCaseEntry binds a registered subtype's converter and concrete Go type
// to the alias it is dispatched under (§4.H).
type unionCaseEntry struct {
	typ  reflect.Type
	conv Converter
}

// unionConverter wraps an object converter with sub-type dispatch (§4.H): a
// union value always encodes as a 2-element array, [alias, payload], where
// alias is the declared int or string key of the registered subtype whose
// type equals the value's dynamic type exactly, or Nil when the dynamic type
// is the base type itself. No ancestor search is made, and there is no
// disabled mode that drops the array wrapper; any other dynamic type fails
// with ErrUnsupportedType.
type unionConverter struct {
	base     Converter
	baseType reflect.Type

	byType        map[reflect.Type]unionCaseEntry
	isIntAlias    map[reflect.Type]bool
	intAliasOf    map[reflect.Type]int64
	stringAliasOf map[reflect.Type]string

	byIntAlias    map[int64]unionCaseEntry
	byStringAlias map[string]unionCaseEntry
}

func newUnionConverter(vc *VisitContext, s *shape.ObjectShape, base Converter) *unionConverter {
	uc := &unionConverter{
		base:          base,
		baseType:      s.Typ,
		byType:        map[reflect.Type]unionCaseEntry{},
		isIntAlias:    map[reflect.Type]bool{},
		intAliasOf:    map[reflect.Type]int64{},
		stringAliasOf: map[reflect.Type]string{},
		byIntAlias:    map[int64]unionCaseEntry{},
		byStringAlias: map[string]unionCaseEntry{},
	}
	for _, uCase := range s.Unions {
		conv := vc.visit(uCase.SubShape)
		entry := unionCaseEntry{typ: uCase.SubType, conv: conv}
		uc.byType[uCase.SubType] = entry
		uc.isIntAlias[uCase.SubType] = uCase.IsInt
		if uCase.IsInt {
			uc.intAliasOf[uCase.SubType] = uCase.IntAlias
			uc.byIntAlias[uCase.IntAlias] = entry
		} else {
			uc.stringAliasOf[uCase.SubType] = uCase.StringAlias
			uc.byStringAlias[uCase.StringAlias] = entry
		}
	}
	return uc
}

func (uc *unionConverter) PreferAsync() bool { return false }

func (uc *unionConverter) concreteOf(rv reflect.Value) reflect.Value {
	if rv.Kind() == reflect.Interface {
		return rv.Elem()
	}
	return rv
}

func (uc *unionConverter) Write(ctx *Context, w *Writer, rv reflect.Value) {
	ctx.EnterComposite()
	defer ctx.ExitComposite()

	concrete := uc.concreteOf(rv)
	if !concrete.IsValid() {
		w.WriteNil()
		return
	}
	t := concrete.Type()
	entry, ok := uc.byType[t]
	if !ok {
		if t != uc.baseType {
			ctx.errorf(ErrUnsupportedType, "type %s is neither union base %s nor a registered subtype", t, uc.baseType)
		}
		// Dynamic type equals the declared base type itself: still a
		// 2-element array, with Nil as the discriminator (§4.H).
		w.WriteArrayHeader(2)
		w.WriteNil()
		uc.base.Write(ctx, w, concrete)
		return
	}
	w.WriteArrayHeader(2)
	if uc.isIntAlias[t] {
		w.WriteInt(uc.intAliasOf[t])
	} else {
		w.WriteString(uc.stringAliasOf[t])
	}
	target := concrete
	if t.Kind() == reflect.Ptr {
		target = concrete.Elem()
	}
	entry.conv.Write(ctx, w, target)
}

func (uc *unionConverter) Read(ctx *Context, r *BufferedReader, rv reflect.Value) {
	ctx.EnterComposite()
	defer ctx.ExitComposite()

	if r.PeekNextType() == TokenNil {
		r.ReadNil()
		if rv.Kind() == reflect.Interface {
			rv.Set(reflect.Zero(rv.Type()))
		}
		return
	}

	n := r.ReadArrayHeader()
	if n != 2 {
		r.errorf(ErrArityMismatch, "expected 2-element union array [alias, payload], got %d elements", n)
	}

	var conv Converter
	var storage reflect.Type
	switch r.PeekNextType() {
	case TokenNil:
		// Nil discriminator: the payload is the declared base type itself,
		// not a registered subtype (§4.H).
		r.ReadNil()
		conv = uc.base
		storage = uc.baseType
	case TokenString:
		alias, _ := r.ReadString()
		entry, found := uc.byStringAlias[alias]
		if !found {
			r.errorf(ErrUnknownAlias, "unknown union string alias %q", alias)
		}
		conv = entry.conv
		storage = entry.typ
	default:
		alias := r.ReadInt64()
		entry, found := uc.byIntAlias[alias]
		if !found {
			r.errorf(ErrUnknownAlias, "unknown union int alias %d", alias)
		}
		conv = entry.conv
		storage = entry.typ
	}

	isPtr := storage.Kind() == reflect.Ptr
	if isPtr {
		storage = storage.Elem()
	}
	newVal := reflect.New(storage)
	conv.Read(ctx, r, newVal.Elem())

	if isPtr {
		rv.Set(newVal)
	} else {
		rv.Set(newVal.Elem())
	}
}
