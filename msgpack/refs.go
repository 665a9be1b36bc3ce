// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import "reflect"

// refTable backs reference preservation (§4.I). On encode it maps an
// already-visited pointer-identity to the index it was first written at; on
// decode it maps an index back to the already-constructed value, so a later
// reference extension resolves to the same Go value instead of a fresh
// decode.
type refTable struct {
	mode ReferencePreservationMode

	// encode side
	seen map[uintptr]int
	next int

	// decode side
	byIndex map[int]reflect.Value

	// inProgress tracks identities currently being encoded on this call, for
	// RejectCycles detection. Lives here (per-call) rather than on
	// refPreservingConverter, which is cached and shared across concurrent
	// Serialize calls (§5).
	inProgress map[uintptr]bool
}

func newRefTable(mode ReferencePreservationMode) *refTable {
	return &refTable{
		mode:       mode,
		seen:       map[uintptr]int{},
		byIndex:    map[int]reflect.Value{},
		inProgress: map[uintptr]bool{},
	}
}

// identityOf returns the pointer identity of rv's underlying data, and
// whether rv is of a kind reference preservation tracks at all (pointers,
// maps, slices — anything with strict Go reference semantics).
func identityOf(rv reflect.Value) (uintptr, bool) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if rv.IsNil() {
			return 0, false
		}
		return rv.Pointer(), true
	case reflect.Slice:
		if rv.IsNil() {
			return 0, false
		}
		return rv.Pointer(), true
	default:
		return 0, false
	}
}

// encodeSeen records rv's identity on first sight and reports the index it
// was recorded at, or the previously recorded index plus true if rv was
// already seen this graph.
func (t *refTable) encodeSeen(rv reflect.Value) (index int, already bool, tracked bool) {
	id, ok := identityOf(rv)
	if !ok {
		return 0, false, false
	}
	if idx, seen := t.seen[id]; seen {
		return idx, true, true
	}
	idx := t.next
	t.next++
	t.seen[id] = idx
	return idx, false, true
}

// registerDecoded associates index with the fully (or partially, for
// AllowCycles) constructed value v.
func (t *refTable) registerDecoded(index int, v reflect.Value) {
	t.byIndex[index] = v
}

func (t *refTable) lookup(index int) (reflect.Value, bool) {
	v, ok := t.byIndex[index]
	return v, ok
}

// refPreservingConverter wraps an object converter so repeated encounters of
// the same pointer/map identity within one Serialize/Deserialize call
// round-trip as the same Go value instead of being duplicated (§4.I). On the
// wire, a first sighting is encoded as the normal payload; a repeat sighting
// is encoded as the extReference extension carrying the first sighting's
// index. RejectCycles fails fast if a value is seen again while its own
// encode is still in progress (a true cycle); AllowCycles instead registers
// the (possibly still-empty) decode-side value before recursing so a cyclic
// reference resolves to the same, eventually-populated object.
type refPreservingConverter struct {
	inner Converter
}

func (rc *refPreservingConverter) PreferAsync() bool { return rc.inner.PreferAsync() }

func (rc *refPreservingConverter) Write(ctx *Context, w *Writer, rv reflect.Value) {
	if ctx.refs == nil {
		rc.inner.Write(ctx, w, rv)
		return
	}
	id, hasID := identityOf(rv)
	idx, already, tracked := ctx.refs.encodeSeen(rv)
	if tracked && already {
		// A repeat sighting while the first sighting's encode is still on
		// the call stack is a true cycle, not just a shared reference
		// encountered twice in different branches of the graph.
		if hasID && ctx.refs.inProgress[id] && ctx.refs.mode == RefPreserveRejectCycles {
			panic(newCodecError(ErrUnspecified, "cyclic reference detected with reference preservation in RejectCycles mode"))
		}
		payload := make([]byte, 4)
		payload[0] = byte(idx >> 24)
		payload[1] = byte(idx >> 16)
		payload[2] = byte(idx >> 8)
		payload[3] = byte(idx)
		w.WriteExtension(extReference, payload)
		return
	}
	if tracked {
		ctx.refs.inProgress[id] = true
		defer delete(ctx.refs.inProgress, id)
	}
	rc.inner.Write(ctx, w, rv)
}

func (rc *refPreservingConverter) Read(ctx *Context, r *BufferedReader, rv reflect.Value) {
	if ctx.refs == nil {
		rc.inner.Read(ctx, r, rv)
		return
	}
	if r.PeekNextType() == TokenExtension {
		tag, length := r.ReadExtensionHeader()
		if tag == extReference {
			payload := r.ReadRaw(int(length))
			idx := int(payload[0])<<24 | int(payload[1])<<16 | int(payload[2])<<8 | int(payload[3])
			target, ok := ctx.refs.lookup(idx)
			if !ok {
				r.errorf(ErrInvalidData, "reference to unseen index %d", idx)
			}
			rv.Set(target)
			return
		}
		r.errorf(ErrInvalidData, "unexpected extension tag %d where reference-preserving value expected", tag)
	}
	index := ctx.refs.next
	ctx.refs.next++
	if ctx.refs.mode == RefPreserveAllowCycles {
		ctx.refs.registerDecoded(index, rv)
	}
	rc.inner.Read(ctx, r, rv)
	ctx.refs.registerDecoded(index, rv)
}
