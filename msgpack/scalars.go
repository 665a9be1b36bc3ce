// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import (
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// This file holds the fixed set of built-in scalar converters (§4.D): the
// leaves every object/enumerable/dictionary converter eventually bottoms out
// at. All but enumConverter are funcConverters (converter.go); visitor.go's
// visitPrimitive and visitEnum construct them per shape. None of them
// consult the shape descriptor.

// ---- booleans, fixed-width integers, floats ----

func boolConverter() Converter {
	return &funcConverter{
		read:  func(ctx *Context, r *BufferedReader, rv reflect.Value) { rv.SetBool(r.ReadBool()) },
		write: func(ctx *Context, w *Writer, rv reflect.Value) { w.WriteBool(rv.Bool()) },
	}
}

func intConverter(bits int) Converter {
	return &funcConverter{
		read: func(ctx *Context, r *BufferedReader, rv reflect.Value) {
			if bits == 64 {
				rv.SetInt(r.ReadInt64())
			} else {
				rv.SetInt(r.ReadIntSized(bits))
			}
		},
		write: func(ctx *Context, w *Writer, rv reflect.Value) { w.WriteInt(rv.Int()) },
	}
}

func uintConverter(bits int) Converter {
	return &funcConverter{
		read: func(ctx *Context, r *BufferedReader, rv reflect.Value) {
			if bits == 64 {
				rv.SetUint(r.ReadUint64())
			} else {
				rv.SetUint(r.ReadUintSized(bits))
			}
		},
		write: func(ctx *Context, w *Writer, rv reflect.Value) { w.WriteUint(rv.Uint()) },
	}
}

// charConverter encodes a uint16 "char" primitive as its unsigned ordinal,
// per §4.D's char mapping. The value must have an unsigned integer kind;
// signed kinds such as rune are not accepted.
func charConverter() Converter {
	return &funcConverter{
		read:  func(ctx *Context, r *BufferedReader, rv reflect.Value) { rv.SetUint(r.ReadUintSized(16)) },
		write: func(ctx *Context, w *Writer, rv reflect.Value) { w.WriteUint(rv.Uint()) },
	}
}

func float32Converter() Converter {
	return &funcConverter{
		read:  func(ctx *Context, r *BufferedReader, rv reflect.Value) { rv.SetFloat(float64(r.ReadFloat32())) },
		write: func(ctx *Context, w *Writer, rv reflect.Value) { w.WriteFloat32(float32(rv.Float())) },
	}
}

func float64Converter() Converter {
	return &funcConverter{
		read:  func(ctx *Context, r *BufferedReader, rv reflect.Value) { rv.SetFloat(r.ReadFloat64()) },
		write: func(ctx *Context, w *Writer, rv reflect.Value) { w.WriteFloat64(rv.Float()) },
	}
}

// ---- strings ----

// newStringConverter returns a string converter. When intern is non-nil,
// decoded strings are canonicalized through it (§4.D, CacheOptions.InternStrings).
func newStringConverter(intern *stringIntern) Converter {
	return &funcConverter{
		read: func(ctx *Context, r *BufferedReader, rv reflect.Value) {
			s, isNil := r.ReadString()
			if isNil {
				r.errorf(ErrUnexpectedNil, "string property cannot be nil")
			}
			if intern != nil {
				s = intern.Intern(s)
			}
			rv.SetString(s)
		},
		write: func(ctx *Context, w *Writer, rv reflect.Value) { w.WriteString(rv.String()) },
	}
}

// ---- byte slices / views ----

// byteSliceConverter maps to/from Binary, but on decode also tolerates the
// interop dual-form (an Array of small uints), per §4.D.
func byteSliceConverter() Converter {
	return &funcConverter{
		read: func(ctx *Context, r *BufferedReader, rv reflect.Value) {
			b, isNil := r.ReadBytes()
			if isNil {
				rv.SetBytes(nil)
				return
			}
			rv.SetBytes(append([]byte(nil), b...))
		},
		write: func(ctx *Context, w *Writer, rv reflect.Value) { w.WriteBinary(rv.Bytes()) },
	}
}

// ---- dates ----

// timestampExtConverter maps time.Time through the msgpack timestamp
// extension (§4.D's "date" mapping, PrimTime).
func timestampExtConverter() Converter {
	return &funcConverter{
		read: func(ctx *Context, r *BufferedReader, rv reflect.Value) {
			sec, nsec := r.ReadTimestamp()
			rv.Set(reflect.ValueOf(time.Unix(sec, int64(nsec)).UTC()))
		},
		write: func(ctx *Context, w *Writer, rv reflect.Value) {
			t := rv.Interface().(time.Time)
			w.WriteTimestamp(t.Unix(), int32(t.Nanosecond()))
		},
	}
}

// dateTimeOffsetConverter maps a (time.Time, offset) pair — PrimTimeOff — as
// a 2-element array: [timestamp-ext, signed offset minutes]. There is no
// wire-level standard for this combination, so the array wrapper is this
// library's own encoding, analogous to how the teacher ecosystem layers its
// own conventions atop raw msgpack extensions.
func dateTimeOffsetConverter() Converter {
	return &funcConverter{
		read: func(ctx *Context, r *BufferedReader, rv reflect.Value) {
			n := r.ReadArrayHeader()
			if n != 2 {
				r.errorf(ErrArityMismatch, "expected 2-element date+offset array, got %d", n)
			}
			sec, nsec := r.ReadTimestamp()
			offMin := r.ReadInt64()
			loc := time.FixedZone("", int(offMin)*60)
			rv.Set(reflect.ValueOf(time.Unix(sec, int64(nsec)).In(loc)))
		},
		write: func(ctx *Context, w *Writer, rv reflect.Value) {
			t := rv.Interface().(time.Time)
			w.WriteArrayHeader(2)
			w.WriteTimestamp(t.Unix(), int32(t.Nanosecond()))
			_, offSec := t.Zone()
			w.WriteInt(int64(offSec / 60))
		},
	}
}

// timeOnlyConverter maps a wall-clock-only value (PrimTimeOnly) as
// nanoseconds-since-midnight, a plain shortest-form integer.
func timeOnlyConverter() Converter {
	return &funcConverter{
		read: func(ctx *Context, r *BufferedReader, rv reflect.Value) {
			ns := r.ReadInt64()
			rv.Set(reflect.ValueOf(time.Duration(ns)))
		},
		write: func(ctx *Context, w *Writer, rv reflect.Value) {
			d := rv.Interface().(time.Duration)
			w.WriteInt(int64(d))
		},
	}
}

// ---- arbitrary precision ----

// bigIntConverter maps *big.Int / big.Int through Binary holding one sign
// byte (1 for negative, 0 otherwise) followed by the big-endian magnitude
// from big.Int.Bytes() (§4.D, PrimBigInt).
func bigIntConverter() Converter {
	return &funcConverter{
		read: func(ctx *Context, r *BufferedReader, rv reflect.Value) {
			b, isNil := r.ReadBytes()
			if isNil {
				r.errorf(ErrUnexpectedNil, "big integer cannot be nil")
			}
			neg := len(b) > 0 && b[0] == 1
			mag := b[1:]
			v := new(big.Int).SetBytes(mag)
			if neg {
				v.Neg(v)
			}
			if rv.Kind() == reflect.Ptr {
				rv.Set(reflect.ValueOf(v))
			} else {
				rv.Set(reflect.ValueOf(*v))
			}
		},
		write: func(ctx *Context, w *Writer, rv reflect.Value) {
			var v *big.Int
			if rv.Kind() == reflect.Ptr {
				v = rv.Interface().(*big.Int)
			} else {
				iv := rv.Interface().(big.Int)
				v = &iv
			}
			sign := byte(0)
			if v.Sign() < 0 {
				sign = 1
			}
			mag := new(big.Int).Abs(v).Bytes()
			buf := make([]byte, 0, len(mag)+1)
			buf = append(buf, sign)
			buf = append(buf, mag...)
			w.WriteBinary(buf)
		},
	}
}

// decimalConverter maps github.com/shopspring/decimal.Decimal through its
// canonical string form (§4.D, PrimDecimal) — grounded on the pack's
// manifest-only references to shopspring/decimal as the ecosystem-standard
// arbitrary-precision decimal type (see DESIGN.md).
func decimalConverter() Converter {
	return &funcConverter{
		read: func(ctx *Context, r *BufferedReader, rv reflect.Value) {
			s, isNil := r.ReadString()
			if isNil {
				r.errorf(ErrUnexpectedNil, "decimal cannot be nil")
			}
			d, err := decimal.NewFromString(s)
			if err != nil {
				r.errorf(ErrInvalidData, "invalid decimal string %q: %v", s, err)
			}
			rv.Set(reflect.ValueOf(d))
		},
		write: func(ctx *Context, w *Writer, rv reflect.Value) {
			d := rv.Interface().(decimal.Decimal)
			w.WriteString(d.String())
		},
	}
}

// int128Converter maps a 128-bit integer held as a big.Int / *big.Int (Go
// has no native 128-bit integer type). It is bigIntConverter itself, so the
// value is written as sign-and-magnitude Binary, not as a base-10 string.
// No shape.PrimitiveKind selects it, and visitPrimitive never constructs it.
func int128Converter() Converter {
	return bigIntConverter()
}

// ---- GUID ----

// guidConverter maps github.com/google/uuid.UUID through its canonical
// 16-byte binary form (§4.D, PrimGUID) — grounded on moby-moby's direct
// dependency on google/uuid.
func guidConverter() Converter {
	return &funcConverter{
		read: func(ctx *Context, r *BufferedReader, rv reflect.Value) {
			b, isNil := r.ReadBytes()
			if isNil {
				r.errorf(ErrUnexpectedNil, "guid cannot be nil")
			}
			u, err := uuid.FromBytes(b)
			if err != nil {
				r.errorf(ErrInvalidData, "invalid guid bytes: %v", err)
			}
			rv.Set(reflect.ValueOf(u))
		},
		write: func(ctx *Context, w *Writer, rv reflect.Value) {
			u := rv.Interface().(uuid.UUID)
			b, _ := u.MarshalBinary()
			w.WriteBinary(b)
		},
	}
}

// ---- enums ----

// enumConverter dispatches between ordinal and named encoding per
// CacheOptions.SerializeEnumsByName. members is the ordered list of
// (name, ordinal) pairs the shape descriptor exposes; decode matches names
// case-insensitively unless two members collide under folding, in which
// case exact-case match is required (§4.D).
type enumConverter struct {
	byName     bool
	names      []string
	ordinals   []int64
	ambiguous  map[string]bool // case-folded names with >1 exact match
	underlying reflect.Kind
}

func newEnumConverter(byName bool, names []string, ordinals []int64, underlying reflect.Kind) *enumConverter {
	folded := map[string]int{}
	ambiguous := map[string]bool{}
	for _, n := range names {
		key := foldName(n)
		folded[key]++
		if folded[key] > 1 {
			ambiguous[key] = true
		}
	}
	return &enumConverter{byName: byName, names: names, ordinals: ordinals, ambiguous: ambiguous, underlying: underlying}
}

func foldName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}

func (c *enumConverter) PreferAsync() bool { return false }

func (c *enumConverter) Write(ctx *Context, w *Writer, rv reflect.Value) {
	ord := signedOrdinal(rv, c.underlying)
	if c.byName {
		for i, o := range c.ordinals {
			if o == ord {
				w.WriteString(c.names[i])
				return
			}
		}
		// No matching name: fall back to the numeric value, same as an
		// unnamed enum member round-tripping through an integer.
		w.WriteInt(ord)
		return
	}
	w.WriteInt(ord)
}

func (c *enumConverter) Read(ctx *Context, r *BufferedReader, rv reflect.Value) {
	switch r.PeekNextType() {
	case TokenString:
		s, _ := r.ReadString()
		if c.ambiguous[foldName(s)] {
			for i, n := range c.names {
				if n == s {
					setSignedOrdinal(rv, c.ordinals[i], c.underlying)
					return
				}
			}
		} else {
			folded := foldName(s)
			for i, n := range c.names {
				if foldName(n) == folded {
					setSignedOrdinal(rv, c.ordinals[i], c.underlying)
					return
				}
			}
		}
		r.errorf(ErrInvalidData, "unknown enum member name %q", s)
	default:
		setSignedOrdinal(rv, r.ReadInt64(), c.underlying)
	}
}

func signedOrdinal(rv reflect.Value, k reflect.Kind) int64 {
	switch {
	case k >= reflect.Int && k <= reflect.Int64:
		return rv.Int()
	default:
		return int64(rv.Uint())
	}
}

func setSignedOrdinal(rv reflect.Value, v int64, k reflect.Kind) {
	switch {
	case k >= reflect.Int && k <= reflect.Int64:
		rv.SetInt(v)
	default:
		rv.SetUint(uint64(v))
	}
}
