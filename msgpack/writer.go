// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import "math"

// defaultChunkSize is the size of each segment Writer allocates internally
// via getSpan when the caller doesn't request a larger one.
const defaultChunkSize = 1 << 10 // 1024, cf. teacher's defEncByteBufSize

// Writer is the buffered layer's output side (§4.B): a segmented output
// buffer exposing getSpan(min)/advance(n) so bulk converters (§4.C) can
// write N elements with no per-element allocation.
type Writer struct {
	chunks [][]byte
	cur    []byte // the chunk currently being filled
	used   int    // bytes already advanced into cur
	sink   ByteSink
}

// NewWriter returns a Writer that accumulates chunks in memory; call Bytes
// to collect them, or attach a sink and call FlushTo for streaming.
func NewWriter() *Writer { return &Writer{} }

// getSpan returns a writable region of at least minSize bytes, allocating a
// new chunk if the current one doesn't have room.
func (w *Writer) getSpan(minSize int) []byte {
	if w.cur == nil || len(w.cur)-w.used < minSize {
		w.commitCur()
		sz := defaultChunkSize
		if sz < minSize {
			sz = minSize
		}
		w.cur = make([]byte, sz)
		w.used = 0
	}
	return w.cur[w.used:]
}

// advance commits n bytes of the span last returned by getSpan as written.
func (w *Writer) advance(n int) {
	w.used += n
}

func (w *Writer) commitCur() {
	if w.cur != nil && w.used > 0 {
		w.chunks = append(w.chunks, w.cur[:w.used])
	}
	w.cur = nil
	w.used = 0
}

// writeRaw copies p into the buffer, using getSpan/advance.
func (w *Writer) writeRaw(p []byte) {
	span := w.getSpan(len(p))
	n := copy(span, p)
	w.advance(n)
	if n < len(p) {
		span = w.getSpan(len(p) - n)
		copy(span, p[n:])
		w.advance(len(p) - n)
	}
}

func (w *Writer) writeByte(b byte) {
	span := w.getSpan(1)
	span[0] = b
	w.advance(1)
}

// Bytes returns the full written content as one contiguous slice.
func (w *Writer) Bytes() []byte {
	w.commitCur()
	total := 0
	for _, c := range w.chunks {
		total += len(c)
	}
	out := make([]byte, 0, total)
	for _, c := range w.chunks {
		out = append(out, c...)
	}
	return out
}

// FlushTo writes all buffered content, including the chunk in progress, to
// sink and resets the buffer.
func (w *Writer) FlushTo(sink ByteSink) error {
	w.commitCur()
	for _, c := range w.chunks {
		if _, err := sink.Write(c); err != nil {
			return err
		}
	}
	w.chunks = w.chunks[:0]
	return sink.Flush()
}

// unflushedBytes reports how many written-but-not-flushed bytes are
// buffered, used by AsyncWriter to decide when to flush (§4.B).
func (w *Writer) unflushedBytes() int {
	n := w.used
	for _, c := range w.chunks {
		n += len(c)
	}
	return n
}

// ---- scalar / token writes, mirroring Reader ----

func (w *Writer) WriteNil() { w.writeByte(mpNil) }

func (w *Writer) WriteBool(v bool) {
	if v {
		w.writeByte(mpTrue)
	} else {
		w.writeByte(mpFalse)
	}
}

// WriteInt writes a signed integer using the shortest legal MessagePack
// form (§3.1 invariant, §4.A).
func (w *Writer) WriteInt(v int64) {
	switch {
	case v >= 0:
		// Non-negative values use the unsigned family, whose 1- and 2-byte
		// payloads reach 255 and 65535 where the signed ones stop at 127
		// and 32767.
		w.WriteUint(uint64(v))
	case v >= -32:
		w.writeByte(byte(int8(v)))
	case v >= math.MinInt8 && v <= math.MaxInt8:
		span := w.getSpan(2)
		span[0] = mpInt8
		span[1] = byte(int8(v))
		w.advance(2)
	case v >= math.MinInt16 && v <= math.MaxInt16:
		span := w.getSpan(3)
		span[0] = mpInt16
		putBeUint16(span[1:3], uint16(int16(v)))
		w.advance(3)
	case v >= math.MinInt32 && v <= math.MaxInt32:
		span := w.getSpan(5)
		span[0] = mpInt32
		putBeUint32(span[1:5], uint32(int32(v)))
		w.advance(5)
	default:
		span := w.getSpan(9)
		span[0] = mpInt64
		putBeUint64(span[1:9], uint64(v))
		w.advance(9)
	}
}

// WriteUint writes an unsigned integer in minimal form. Values that fit a
// signed fixint still use the unsigned family of widths above fixint range,
// as the format permits; shortest form is what's guaranteed.
func (w *Writer) WriteUint(v uint64) {
	switch {
	case v <= uint64(mpPosFixIntMax):
		w.writeByte(byte(v))
	case v <= math.MaxUint8:
		span := w.getSpan(2)
		span[0] = mpUint8
		span[1] = byte(v)
		w.advance(2)
	case v <= math.MaxUint16:
		span := w.getSpan(3)
		span[0] = mpUint16
		putBeUint16(span[1:3], uint16(v))
		w.advance(3)
	case v <= math.MaxUint32:
		span := w.getSpan(5)
		span[0] = mpUint32
		putBeUint32(span[1:5], uint32(v))
		w.advance(5)
	default:
		span := w.getSpan(9)
		span[0] = mpUint64
		putBeUint64(span[1:9], v)
		w.advance(9)
	}
}

func (w *Writer) WriteFloat32(f float32) {
	span := w.getSpan(5)
	span[0] = mpFloat32
	putBeUint32(span[1:5], math.Float32bits(f))
	w.advance(5)
}

func (w *Writer) WriteFloat64(f float64) {
	span := w.getSpan(9)
	span[0] = mpFloat64
	putBeUint64(span[1:9], math.Float64bits(f))
	w.advance(9)
}

// WriteString writes s as FixStr/Str8/Str16/Str32 per its length (§4.A).
func (w *Writer) WriteString(s string) {
	n := len(s)
	w.writeStrLenHeader(n)
	w.writeRaw([]byte(s))
}

func (w *Writer) writeStrLenHeader(n int) {
	switch {
	case n <= 31:
		w.writeByte(mpFixStrMin + byte(n))
	case n <= math.MaxUint8:
		span := w.getSpan(2)
		span[0] = mpStr8
		span[1] = byte(n)
		w.advance(2)
	case n <= math.MaxUint16:
		span := w.getSpan(3)
		span[0] = mpStr16
		putBeUint16(span[1:3], uint16(n))
		w.advance(3)
	default:
		span := w.getSpan(5)
		span[0] = mpStr32
		putBeUint32(span[1:5], uint32(n))
		w.advance(5)
	}
}

// WriteBinary writes b as Bin8/16/32 per its length.
func (w *Writer) WriteBinary(b []byte) {
	n := len(b)
	switch {
	case n <= math.MaxUint8:
		span := w.getSpan(2)
		span[0] = mpBin8
		span[1] = byte(n)
		w.advance(2)
	case n <= math.MaxUint16:
		span := w.getSpan(3)
		span[0] = mpBin16
		putBeUint16(span[1:3], uint16(n))
		w.advance(3)
	default:
		span := w.getSpan(5)
		span[0] = mpBin32
		putBeUint32(span[1:5], uint32(n))
		w.advance(5)
	}
	w.writeRaw(b)
}

// WriteArrayHeader writes an array token's length header.
func (w *Writer) WriteArrayHeader(n int) {
	switch {
	case n <= 15:
		w.writeByte(mpFixArrayMin + byte(n))
	case n <= math.MaxUint16:
		span := w.getSpan(3)
		span[0] = mpArray16
		putBeUint16(span[1:3], uint16(n))
		w.advance(3)
	default:
		span := w.getSpan(5)
		span[0] = mpArray32
		putBeUint32(span[1:5], uint32(n))
		w.advance(5)
	}
}

// WriteMapHeader writes a map token's pair-count header.
func (w *Writer) WriteMapHeader(n int) {
	switch {
	case n <= 15:
		w.writeByte(mpFixMapMin + byte(n))
	case n <= math.MaxUint16:
		span := w.getSpan(3)
		span[0] = mpMap16
		putBeUint16(span[1:3], uint16(n))
		w.advance(3)
	default:
		span := w.getSpan(5)
		span[0] = mpMap32
		putBeUint32(span[1:5], uint32(n))
		w.advance(5)
	}
}

// WriteExtension writes an extension token, choosing FixExt{1,2,4,8,16}
// when the payload length matches exactly, else Ext8/16/32 (§4.A).
func (w *Writer) WriteExtension(tag int8, payload []byte) {
	n := len(payload)
	switch n {
	case 1:
		w.writeByte(mpFixExt1)
		w.writeByte(byte(tag))
	case 2:
		w.writeByte(mpFixExt2)
		w.writeByte(byte(tag))
	case 4:
		w.writeByte(mpFixExt4)
		w.writeByte(byte(tag))
	case 8:
		w.writeByte(mpFixExt8)
		w.writeByte(byte(tag))
	case 16:
		w.writeByte(mpFixExt16)
		w.writeByte(byte(tag))
	default:
		switch {
		case n <= math.MaxUint8:
			span := w.getSpan(3)
			span[0] = mpExt8
			span[1] = byte(n)
			span[2] = byte(tag)
			w.advance(3)
		case n <= math.MaxUint16:
			span := w.getSpan(4)
			span[0] = mpExt16
			putBeUint16(span[1:3], uint16(n))
			span[3] = byte(tag)
			w.advance(4)
		default:
			span := w.getSpan(6)
			span[0] = mpExt32
			putBeUint32(span[1:5], uint32(n))
			span[5] = byte(tag)
			w.advance(6)
		}
	}
	w.writeRaw(payload)
}

// WriteRaw copies already-encoded msgpack bytes verbatim, used to replay a
// captured unused-data entry (§4.J) without re-decoding/re-encoding it.
func (w *Writer) WriteRaw(b []byte) { w.writeRaw(b) }

func putBeUint16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func putBeUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
func putBeUint64(b []byte, v uint64) {
	b[0] = byte(v >> 56)
	b[1] = byte(v >> 48)
	b[2] = byte(v >> 40)
	b[3] = byte(v >> 32)
	b[4] = byte(v >> 24)
	b[5] = byte(v >> 16)
	b[6] = byte(v >> 8)
	b[7] = byte(v)
}
