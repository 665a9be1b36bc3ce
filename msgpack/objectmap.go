// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import (
	"reflect"

	"github.com/shapemsgpack/msgpack/shape"
)

// mapObjectConverter is the map-layout object converter (§4.F): every
// emitted property is a (string key, value) pair in a msgpack Map, in
// whatever order the encoder chooses to emit them in (declaration order
// here, matching the teacher's kStruct field iteration).
type mapObjectConverter struct {
	objShape *shape.ObjectShape
	props    []shape.PropertyShape
	conv     []Converter
	byName   map[string]int

	// wireNames[i] is the serialized key for props[i]: p.Name as-is for an
	// explicit rename, or run through CacheOptions.PropertyNamingPolicy for
	// an inferred name (§4.E.2).
	wireNames []string

	// paramPos maps a constructor-only property's wire name to its
	// positional slot, for shapes with a non-default Constructor.
	paramPos map[string]int
}

func newMapObjectConverter(vc *VisitContext, s *shape.ObjectShape) *mapObjectConverter {
	c := &mapObjectConverter{objShape: s, byName: map[string]int{}}
	policy := vc.cache.opts.PropertyNamingPolicy
	for _, p := range s.Properties {
		if p.Ignore {
			continue
		}
		idx := len(c.props)
		c.props = append(c.props, p)
		wireName := p.Name
		if !p.NameExplicit && policy != nil {
			wireName = policy(p.Name)
		}
		c.wireNames = append(c.wireNames, wireName)
		if ov, ok := p.ConverterOverride.(Converter); ok && ov != nil {
			c.conv = append(c.conv, ov)
		} else {
			c.conv = append(c.conv, vc.visit(p.Type))
		}
		c.byName[wireName] = idx
	}
	if s.Constructor != nil {
		c.paramPos = map[string]int{}
		for _, pp := range s.Constructor.Params {
			for i, p := range c.props {
				if p.Name == pp.Name {
					c.paramPos[c.wireNames[i]] = pp.Position
					break
				}
			}
		}
	}
	return c
}

func (c *mapObjectConverter) PreferAsync() bool { return false }

func (c *mapObjectConverter) Write(ctx *Context, w *Writer, rv reflect.Value) {
	ctx.EnterComposite()
	defer ctx.ExitComposite()

	type emitted struct {
		name string
		idx  int
	}
	var toEmit []emitted
	for i, p := range c.props {
		fv := p.Get(rv)
		if shouldEmit(ctx.emitPolicy, p, fv) {
			toEmit = append(toEmit, emitted{c.wireNames[i], i})
		}
	}

	var unused []UnusedEntry
	if c.objShape.UnusedData != nil {
		if uv := c.objShape.UnusedData.Get(rv); uv.IsValid() && !uv.IsNil() {
			unused = uv.Interface().(UnusedData)
		}
	}

	w.WriteMapHeader(len(toEmit) + len(unused))
	for _, e := range toEmit {
		p := c.props[e.idx]
		w.WriteString(e.name)
		withPropertyPath(p.Name, func() {
			c.conv[e.idx].Write(ctx, w, p.Get(rv))
		})
	}
	for _, u := range unused {
		w.WriteString(u.Key)
		w.WriteRaw(u.Raw)
	}
}

func (c *mapObjectConverter) Read(ctx *Context, r *BufferedReader, rv reflect.Value) {
	ctx.EnterComposite()
	defer ctx.ExitComposite()

	n := int(r.ReadMapHeader())

	var argState *shape.ArgState
	if c.objShape.Constructor != nil {
		argState = shape.NewArgState(len(c.objShape.Constructor.Params))
	}
	seen := make([]bool, len(c.props))
	var unused UnusedData

	for i := 0; i < n; i++ {
		key, isNil := r.ReadString()
		if isNil {
			r.errorf(ErrInvalidData, "object property key cannot be nil")
		}
		idx, ok := c.byName[key]
		if !ok {
			if c.objShape.UnusedData != nil {
				start := r.Position()
				r.Skip()
				unused = append(unused, UnusedEntry{Key: key, Raw: r.RawSince(start)})
			} else {
				r.Skip()
			}
			continue
		}
		if seen[idx] {
			r.errorf(ErrDoublePropertyAssignment, "property %q assigned more than once", key)
		}
		seen[idx] = true

		p := c.props[idx]
		ev := reflect.New(p.Type.Type()).Elem()
		withPropertyPath(key, func() {
			c.conv[idx].Read(ctx, r, ev)
		})
		if p.Set != nil && c.objShape.Constructor == nil {
			p.Set(rv, ev)
		} else if pos, ok := c.paramPos[key]; ok {
			argState.Set(pos, ev)
		} else if p.Set != nil {
			p.Set(rv, ev)
		}
	}

	for i, p := range c.props {
		if seen[i] || p.Set == nil {
			continue
		}
		if p.Required && !ctx.deserializeDefaults {
			r.errorf(ErrMissingRequiredProperty, "required property %q not present", p.Name)
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
	} else {
		obj = rv
	}

	if unused != nil && c.objShape.UnusedData != nil {
		c.objShape.UnusedData.Set(obj, reflect.ValueOf(unused))
	}

	if c.objShape.Constructor != nil {
		assignConstructed(rv, obj)
	}
	if c.objShape.OnAfterDeserialize != nil {
		c.objShape.OnAfterDeserialize(rv)
	}
}

// assignConstructed copies a Factory-built value into rv, unwrapping a
// pointer result when rv itself is the pointee type.
func assignConstructed(rv, built reflect.Value) {
	if built.Type() == rv.Type() {
		rv.Set(built)
		return
	}
	if built.Kind() == reflect.Ptr && built.Elem().Type() == rv.Type() {
		rv.Set(built.Elem())
		return
	}
	rv.Set(built)
}
