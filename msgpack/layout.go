// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import (
	"reflect"

	"github.com/shapemsgpack/msgpack/shape"
)

// layoutIsArray decides between the map layout (§4.F) and the array layout
// (§4.G) for an object shape, per §4.E.3: an explicit integer key attribute
// on any property forces array layout, provided IgnoreKeyAttributes is not
// set (§4.E.2: when it is, objects are always emitted as maps regardless of
// key attributes); otherwise PerfOverSchemaStability selects array layout
// (declaration order); otherwise map layout.
func layoutIsArray(s *shape.ObjectShape, opts CacheOptions) bool {
	if opts.IgnoreKeyAttributes {
		return false
	}
	for _, p := range s.Properties {
		if p.Key != nil {
			return true
		}
	}
	return opts.PerfOverSchemaStability
}

// isDefaultValue reports whether rv equals p's declared default (or the
// type's zero value, when no default is declared), per §4.F's emission
// policy and §4.G's trailing-defaultable-slot trimming.
func isDefaultValue(p shape.PropertyShape, rv reflect.Value) bool {
	var def reflect.Value
	if p.Default != nil {
		def = p.Default()
	} else {
		def = reflect.Zero(rv.Type())
	}
	return reflect.DeepEqual(rv.Interface(), def.Interface())
}

// shouldEmit decides, per property, whether encode should write it at all,
// applying the cache's SerializeDefaultValues policy (§4.E.2, §4.F).
func shouldEmit(policy DefaultValuesPolicy, p shape.PropertyShape, rv reflect.Value) bool {
	switch policy {
	case SerializeAlways:
		return true
	case SerializeRequired:
		if p.Required {
			return true
		}
		return !isDefaultValue(p, rv)
	case SerializeValueTypes:
		if isValueKind(rv.Kind()) {
			return true
		}
		return !isDefaultValue(p, rv)
	case SerializeReferenceTypes:
		if !isValueKind(rv.Kind()) {
			return true
		}
		return !isDefaultValue(p, rv)
	default: // SerializeNever
		return !isDefaultValue(p, rv)
	}
}

func isValueKind(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return false
	default:
		return true
	}
}
