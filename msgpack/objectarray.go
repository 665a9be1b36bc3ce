// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import (
	"reflect"

	"github.com/shapemsgpack/msgpack/shape"
)

// arraySlot is one positional slot of an array-layout object: either a
// property occupying that integer key, or a hole (nil) that decodes to the
// property's default/zero value.
type arraySlot struct {
	prop *shape.PropertyShape
	conv Converter
}

// arrayObjectConverter is the array-layout object converter (§4.G): each
// property occupies the array index given by its explicit key attribute, or
// by declaration order when no attribute is present. Under SerializeNever,
// trailing slots whose value equals the default are trimmed from the
// written array — when every slot is default the object encodes as a
// zero-length array (the resolved reading of this repo's one Open Question,
// not a zero-length map); under every other policy all slots are written.
type arrayObjectConverter struct {
	objShape *shape.ObjectShape
	slots    []arraySlot // index by key; nil prop means hole
	paramPos map[int]int
}

func newArrayObjectConverter(vc *VisitContext, s *shape.ObjectShape) *arrayObjectConverter {
	c := &arrayObjectConverter{objShape: s}
	next := 0
	type placed struct {
		key  int
		prop shape.PropertyShape
	}
	var items []placed
	for _, p := range s.Properties {
		if p.Ignore {
			continue
		}
		key := next
		if p.Key != nil {
			key = *p.Key
		}
		next = key + 1
		items = append(items, placed{key, p})
	}
	maxKey := -1
	for _, it := range items {
		if it.key > maxKey {
			maxKey = it.key
		}
	}
	c.slots = make([]arraySlot, maxKey+1)
	for _, it := range items {
		p := it.prop
		var conv Converter
		if ov, ok := p.ConverterOverride.(Converter); ok && ov != nil {
			conv = ov
		} else {
			conv = vc.visit(p.Type)
		}
		pp := p
		c.slots[it.key] = arraySlot{prop: &pp, conv: conv}
	}
	if s.Constructor != nil {
		c.paramPos = map[int]int{}
		for _, pp := range s.Constructor.Params {
			for _, it := range items {
				if it.prop.Name == pp.Name {
					c.paramPos[it.key] = pp.Position
				}
			}
		}
	}
	return c
}

func (c *arrayObjectConverter) PreferAsync() bool { return false }

func (c *arrayObjectConverter) Write(ctx *Context, w *Writer, rv reflect.Value) {
	ctx.EnterComposite()
	defer ctx.ExitComposite()

	length := len(c.slots)
	if ctx.emitPolicy == SerializeNever {
		for length > 0 {
			s := c.slots[length-1]
			if s.prop == nil {
				length--
				continue
			}
			fv := s.prop.Get(rv)
			if isDefaultValue(*s.prop, fv) {
				length--
				continue
			}
			break
		}
	}

	w.WriteArrayHeader(length)
	for i := 0; i < length; i++ {
		s := c.slots[i]
		if s.prop == nil {
			w.WriteNil()
			continue
		}
		withPropertyPath(s.prop.Name, func() {
			s.conv.Write(ctx, w, s.prop.Get(rv))
		})
	}
}

func (c *arrayObjectConverter) Read(ctx *Context, r *BufferedReader, rv reflect.Value) {
	ctx.EnterComposite()
	defer ctx.ExitComposite()

	var argState *shape.ArgState
	if c.objShape.Constructor != nil {
		argState = shape.NewArgState(len(c.objShape.Constructor.Params))
	}
	seen := make([]bool, len(c.slots))

	assign := func(key int, ev reflect.Value) {
		if key < 0 || key >= len(c.slots) || c.slots[key].prop == nil {
			return
		}
		if seen[key] {
			r.errorf(ErrDoublePropertyAssignment, "array slot %d assigned more than once", key)
		}
		seen[key] = true
		p := c.slots[key].prop
		if p.Set != nil && c.objShape.Constructor == nil {
			p.Set(rv, ev)
		} else if pos, ok := c.paramPos[key]; ok {
			argState.Set(pos, ev)
		} else if p.Set != nil {
			p.Set(rv, ev)
		}
	}

	switch r.PeekNextType() {
	case TokenMap:
		n := int(r.ReadMapHeader())
		for i := 0; i < n; i++ {
			key := int(r.ReadInt64())
			if key < 0 || key >= len(c.slots) || c.slots[key].prop == nil {
				r.Skip()
				continue
			}
			ev := reflect.New(c.slots[key].prop.Type.Type()).Elem()
			withPropertyPath(c.slots[key].prop.Name, func() {
				c.slots[key].conv.Read(ctx, r, ev)
			})
			assign(key, ev)
		}
	default:
		n := int(r.ReadArrayHeader())
		for i := 0; i < n; i++ {
			if i >= len(c.slots) || c.slots[i].prop == nil {
				r.Skip()
				continue
			}
			ev := reflect.New(c.slots[i].prop.Type.Type()).Elem()
			withPropertyPath(c.slots[i].prop.Name, func() {
				c.slots[i].conv.Read(ctx, r, ev)
			})
			assign(i, ev)
		}
	}

	for key, s := range c.slots {
		if s.prop == nil || seen[key] || s.prop.Set == nil {
			continue
		}
		if s.prop.Required && !ctx.deserializeDefaults {
			r.errorf(ErrMissingRequiredProperty, "required property %q not present", s.prop.Name)
		}
	}

	var obj reflect.Value
	if c.objShape.Constructor != nil {
		for _, pp := range c.objShape.Constructor.Params {
			if _, filled := argState.Get(pp.Position); filled {
				continue
			}
			if pp.Default != nil {
				argState.Set(pp.Position, pp.Default())
			} else {
				r.errorf(ErrMissingRequiredProperty, "required constructor parameter %q not present", pp.Name)
			}
		}
		built, err := c.objShape.Constructor.Factory(argState)
		r.onerror(err)
		obj = built
		assignConstructed(rv, obj)
	}
	if c.objShape.OnAfterDeserialize != nil {
		c.objShape.OnAfterDeserialize(rv)
	}
}
