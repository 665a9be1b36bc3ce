// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import (
	"math"
)

// DecodeResult classifies the outcome of a single streaming read (§4.A).
type DecodeResult uint8

const (
	Success DecodeResult = iota
	InsufficientBuffer
	EndOfStream
	TokenMismatch
)

// Reader is the streaming layer (§4.A): it holds whatever byte segments
// have been fed to it so far and a logical cursor. Every Read*/TryReadNil/
// PeekNextType method commits the cursor only on Success; on any other
// result the cursor is left untouched so the exact same call can be retried
// once more data has been fed in via Feed. Skip is the exception: on failure
// it may leave the cursor part-way through a composite. Reader itself never calls out to a ByteSource —
// that responsibility belongs to the layer driving it (BufferedReader for
// the synchronous, fully-buffered case; the async reader for the
// suspend-at-fetch case), per §4.B.
type Reader struct {
	segs     [][]byte
	segStart []int
	total    int
	pos      int
	curSeg   int
	eof      bool
}

// NewReader returns an empty streaming reader; call Feed to supply bytes.
func NewReader() *Reader { return &Reader{} }

// Feed appends a newly fetched segment (possibly empty) and records whether
// the underlying source has reached end of stream.
func (r *Reader) Feed(segment []byte, eof bool) {
	if len(segment) > 0 {
		r.segStart = append(r.segStart, r.total)
		r.segs = append(r.segs, segment)
		r.total += len(segment)
	}
	if eof {
		r.eof = true
	}
}

// Position reports the committed logical cursor.
func (r *Reader) Position() int { return r.pos }

// AtEnd reports whether the cursor has consumed every byte the source will
// ever produce.
func (r *Reader) AtEnd() bool { return r.eof && r.pos >= r.total }

func (r *Reader) shortage() DecodeResult {
	if r.eof {
		return EndOfStream
	}
	return InsufficientBuffer
}

// locate finds which segment logical position pos falls in.
func (r *Reader) locate(pos int) (segIdx, off int, ok bool) {
	if pos < 0 || pos >= r.total {
		return 0, 0, false
	}
	i := r.curSeg
	if i >= len(r.segs) || r.segStart[i] > pos {
		i = 0
	}
	for ; i < len(r.segs); i++ {
		start := r.segStart[i]
		end := start + len(r.segs[i])
		if pos >= start && pos < end {
			r.curSeg = i
			return i, pos - start, true
		}
	}
	return 0, 0, false
}

func (r *Reader) peekByte(pos int) (byte, bool) {
	if pos >= r.total {
		return 0, false
	}
	idx, off, ok := r.locate(pos)
	if !ok {
		return 0, false
	}
	return r.segs[idx][off], true
}

// peekBytes returns a view of n bytes at logical position pos: a zero-copy
// slice when they lie within one segment, otherwise a copy into scratch
// (grown if needed). ok is false if fewer than n bytes are currently
// buffered.
func (r *Reader) peekBytes(pos, n int, scratch []byte) (out []byte, ok bool) {
	if n == 0 {
		return scratch[:0], true
	}
	if pos+n > r.total {
		return nil, false
	}
	segIdx, off, _ := r.locate(pos)
	seg := r.segs[segIdx]
	if off+n <= len(seg) {
		return seg[off : off+n], true
	}
	if cap(scratch) < n {
		scratch = make([]byte, n)
	}
	scratch = scratch[:n]
	copied := 0
	si, so := segIdx, off
	for copied < n {
		s := r.segs[si]
		avail := len(s) - so
		take := n - copied
		if take > avail {
			take = avail
		}
		copy(scratch[copied:copied+take], s[so:so+take])
		copied += take
		si++
		so = 0
	}
	return scratch, true
}

// crossesSegment reports whether [pos, pos+n) spans more than one segment
// (used by the zero-copy string/binary span reads, §4.A).
func (r *Reader) crossesSegment(pos, n int) bool {
	if n == 0 {
		return false
	}
	segIdx, off, ok := r.locate(pos)
	if !ok {
		return false
	}
	return off+n > len(r.segs[segIdx])
}

// ---- scalar reads ----

// TryReadNil reports whether the next token is Nil, consuming it if so.
// If the next token is not Nil the cursor is left untouched so the caller
// can proceed to read the real value.
func (r *Reader) TryReadNil() (isNil bool, res DecodeResult) {
	b, ok := r.peekByte(r.pos)
	if !ok {
		return false, r.shortage()
	}
	if b == mpNil {
		r.pos++
		return true, Success
	}
	return false, Success
}

func (r *Reader) ReadBool() (bool, DecodeResult) {
	b, ok := r.peekByte(r.pos)
	if !ok {
		return false, r.shortage()
	}
	switch b {
	case mpTrue:
		r.pos++
		return true, Success
	case mpFalse:
		r.pos++
		return false, Success
	default:
		return false, TokenMismatch
	}
}

// readRawInt reads the raw MessagePack integer at the cursor (any width,
// signed or unsigned) without narrowing, for internal use by the widening
// readers below.
func (r *Reader) readRawInt() (v int64, unsigned bool, u uint64, n int, ok bool, res DecodeResult) {
	b, got := r.peekByte(r.pos)
	if !got {
		return 0, false, 0, 0, false, r.shortage()
	}
	switch {
	case b <= mpPosFixIntMax:
		return int64(b), false, uint64(b), 1, true, Success
	case b >= mpNegFixIntMin:
		return int64(int8(b)), false, 0, 1, true, Success
	case b == mpUint8:
		buf, got := r.peekBytes(r.pos, 2, nil)
		if !got {
			return 0, false, 0, 0, false, r.shortage()
		}
		return 0, true, uint64(buf[1]), 2, true, Success
	case b == mpUint16:
		buf, got := r.peekBytes(r.pos, 3, nil)
		if !got {
			return 0, false, 0, 0, false, r.shortage()
		}
		return 0, true, uint64(buf[1])<<8 | uint64(buf[2]), 3, true, Success
	case b == mpUint32:
		buf, got := r.peekBytes(r.pos, 5, nil)
		if !got {
			return 0, false, 0, 0, false, r.shortage()
		}
		return 0, true, beUint32(buf[1:5]), 5, true, Success
	case b == mpUint64:
		buf, got := r.peekBytes(r.pos, 9, nil)
		if !got {
			return 0, false, 0, 0, false, r.shortage()
		}
		return 0, true, beUint64(buf[1:9]), 9, true, Success
	case b == mpInt8:
		buf, got := r.peekBytes(r.pos, 2, nil)
		if !got {
			return 0, false, 0, 0, false, r.shortage()
		}
		return int64(int8(buf[1])), false, 0, 2, true, Success
	case b == mpInt16:
		buf, got := r.peekBytes(r.pos, 3, nil)
		if !got {
			return 0, false, 0, 0, false, r.shortage()
		}
		return int64(int16(beUint16(buf[1:3]))), false, 0, 3, true, Success
	case b == mpInt32:
		buf, got := r.peekBytes(r.pos, 5, nil)
		if !got {
			return 0, false, 0, 0, false, r.shortage()
		}
		return int64(int32(beUint32(buf[1:5]))), false, 0, 5, true, Success
	case b == mpInt64:
		buf, got := r.peekBytes(r.pos, 9, nil)
		if !got {
			return 0, false, 0, 0, false, r.shortage()
		}
		return int64(beUint64(buf[1:9])), false, 0, 9, true, Success
	default:
		return 0, false, 0, 0, false, TokenMismatch
	}
}

// ReadInt64 reads an integer of any wire width and narrows it to int64,
// range-checking unsigned values that do not fit.
func (r *Reader) ReadInt64() (int64, DecodeResult) {
	v, unsigned, u, n, ok, res := r.readRawInt()
	if !ok {
		return 0, res
	}
	if unsigned {
		if u > math.MaxInt64 {
			return 0, TokenMismatch
		}
		v = int64(u)
	}
	r.pos += n
	return v, Success
}

// ReadUint64 reads an integer of any wire width and narrows it to uint64,
// rejecting negative signed values.
func (r *Reader) ReadUint64() (uint64, DecodeResult) {
	v, unsigned, u, n, ok, res := r.readRawInt()
	if !ok {
		return 0, res
	}
	if !unsigned {
		if v < 0 {
			return 0, TokenMismatch
		}
		u = uint64(v)
	}
	r.pos += n
	return u, Success
}

// narrow range-checks a fully read int64 into width bits (signed).
func narrowSignedInto(v int64, bits int) (int64, bool) {
	min := int64(-1) << (bits - 1)
	max := int64(1)<<(bits-1) - 1
	if v < min || v > max {
		return 0, false
	}
	return v, true
}

func narrowUnsignedInto(u uint64, bits int) (uint64, bool) {
	if bits >= 64 {
		return u, true
	}
	max := uint64(1)<<bits - 1
	if u > max {
		return 0, false
	}
	return u, true
}

// ReadIntSized reads an integer and narrows it to a signed width of bits
// bits (8/16/32/64), failing with TokenMismatch if out of range — this is
// what makes decoding 0xcc 0xff ("255") as an i8 fail, per §4.A.
func (r *Reader) ReadIntSized(bits int) (int64, DecodeResult) {
	start := r.pos
	v, res := r.ReadInt64()
	if res != Success {
		return 0, res
	}
	n, ok := narrowSignedInto(v, bits)
	if !ok {
		r.pos = start
		return 0, TokenMismatch
	}
	return n, Success
}

// ReadUintSized reads an integer and narrows it to an unsigned width of
// bits bits.
func (r *Reader) ReadUintSized(bits int) (uint64, DecodeResult) {
	start := r.pos
	u, res := r.ReadUint64()
	if res != Success {
		return 0, res
	}
	n, ok := narrowUnsignedInto(u, bits)
	if !ok {
		r.pos = start
		return 0, TokenMismatch
	}
	return n, Success
}

func (r *Reader) ReadFloat32() (float32, DecodeResult) {
	b, ok := r.peekByte(r.pos)
	if !ok {
		return 0, r.shortage()
	}
	switch b {
	case mpFloat32:
		buf, got := r.peekBytes(r.pos, 5, nil)
		if !got {
			return 0, r.shortage()
		}
		r.pos += 5
		return math.Float32frombits(beUint32(buf[1:5])), Success
	default:
		return 0, TokenMismatch
	}
}

// ReadFloat64 reads a Float64, or widens a Float32 into a float64 (a
// reasonable widening; the reverse narrowing is never attempted since
// float encodings are preserved verbatim on read, §3.1).
func (r *Reader) ReadFloat64() (float64, DecodeResult) {
	b, ok := r.peekByte(r.pos)
	if !ok {
		return 0, r.shortage()
	}
	switch b {
	case mpFloat64:
		buf, got := r.peekBytes(r.pos, 9, nil)
		if !got {
			return 0, r.shortage()
		}
		r.pos += 9
		return math.Float64frombits(beUint64(buf[1:9])), Success
	case mpFloat32:
		f, res := r.ReadFloat32()
		return float64(f), res
	default:
		return 0, TokenMismatch
	}
}

// readLenHeader reads a length-prefixed token's count, given the family of
// fix/8/16/32 format bytes it may appear as.
func (r *Reader) readLenHeader(fixMin, fixMax, b8, b16, b32 byte, has8 bool) (uint32, int, bool, DecodeResult) {
	b, ok := r.peekByte(r.pos)
	if !ok {
		return 0, 0, false, r.shortage()
	}
	switch {
	case b >= fixMin && b <= fixMax:
		return uint32(b - fixMin), 1, true, Success
	case has8 && b == b8:
		buf, got := r.peekBytes(r.pos, 2, nil)
		if !got {
			return 0, 0, false, r.shortage()
		}
		return uint32(buf[1]), 2, true, Success
	case b == b16:
		buf, got := r.peekBytes(r.pos, 3, nil)
		if !got {
			return 0, 0, false, r.shortage()
		}
		return uint32(beUint16(buf[1:3])), 3, true, Success
	case b == b32:
		buf, got := r.peekBytes(r.pos, 5, nil)
		if !got {
			return 0, 0, false, r.shortage()
		}
		return beUint32(buf[1:5]), 5, true, Success
	default:
		return 0, 0, false, TokenMismatch
	}
}

// ReadArrayHeader reads an array token's element count.
func (r *Reader) ReadArrayHeader() (uint32, DecodeResult) {
	n, sz, ok, res := r.readLenHeader(mpFixArrayMin, mpFixArrayMax, 0, mpArray16, mpArray32, false)
	if !ok {
		return 0, res
	}
	r.pos += sz
	return n, Success
}

// ReadMapHeader reads a map token's pair count.
func (r *Reader) ReadMapHeader() (uint32, DecodeResult) {
	n, sz, ok, res := r.readLenHeader(mpFixMapMin, mpFixMapMax, 0, mpMap16, mpMap32, false)
	if !ok {
		return 0, res
	}
	r.pos += sz
	return n, Success
}

// ReadStringOrNil reads a string token, or reports Nil without consuming a
// string (mirrors Option<String> from §4.A).
func (r *Reader) ReadStringOrNil() (s string, isNil bool, res DecodeResult) {
	if isN, r1 := r.TryReadNil(); r1 != Success {
		return "", false, r1
	} else if isN {
		return "", true, Success
	}
	n, sz, ok, res := r.readLenHeader(mpFixStrMin, mpFixStrMax, mpStr8, mpStr16, mpStr32, true)
	if !ok {
		return "", false, res
	}
	buf, got := r.peekBytes(r.pos+sz, int(n), nil)
	if !got {
		return "", false, r.shortage()
	}
	s = string(buf)
	r.pos += sz + int(n)
	return s, false, Success
}

// ReadStringSpan returns a zero-copy view of a string token's bytes when
// they lie within a single fed segment; zeroCopy is false (not an error) and
// the cursor is not advanced when the bytes straddle a segment boundary, per
// §4.A ("returns None if the bytes are split across segments").
func (r *Reader) ReadStringSpan() (span []byte, zeroCopy bool, isNil bool, res DecodeResult) {
	if isN, r1 := r.TryReadNil(); r1 != Success {
		return nil, false, false, r1
	} else if isN {
		return nil, false, true, Success
	}
	n, sz, ok, res := r.readLenHeader(mpFixStrMin, mpFixStrMax, mpStr8, mpStr16, mpStr32, true)
	if !ok {
		return nil, false, false, res
	}
	start := r.pos + sz
	if int(n) > 0 && r.crossesSegment(start, int(n)) {
		return nil, false, false, Success
	}
	buf, got := r.peekBytes(start, int(n), nil)
	if !got {
		return nil, false, false, r.shortage()
	}
	r.pos += sz + int(n)
	return buf, true, false, Success
}

// ReadBytesOrNil reads a Binary token (Bin8/16/32), or Array-of-uint8 for
// interop with producers that emit that form (§4.D dual decode).
func (r *Reader) ReadBytesOrNil() (b []byte, isNil bool, res DecodeResult) {
	if isN, r1 := r.TryReadNil(); r1 != Success {
		return nil, false, r1
	} else if isN {
		return nil, true, Success
	}
	pb, ok := r.peekByte(r.pos)
	if !ok {
		return nil, false, r.shortage()
	}
	if pb >= mpFixArrayMin && pb <= mpFixArrayMax || pb == mpArray16 || pb == mpArray32 {
		start := r.pos
		n, res := r.ReadArrayHeader()
		if res != Success {
			return nil, false, res
		}
		out := make([]byte, 0, n)
		for i := uint32(0); i < n; i++ {
			u, res := r.ReadUintSized(8)
			if res != Success {
				r.pos = start
				return nil, false, res
			}
			out = append(out, byte(u))
		}
		return out, false, Success
	}
	// Binary has no fix-length form; the empty range 1..0 matches no byte.
	n, sz, ok, res := r.readLenHeader(1, 0, mpBin8, mpBin16, mpBin32, true)
	if !ok {
		return nil, false, res
	}
	buf, got := r.peekBytes(r.pos+sz, int(n), nil)
	if !got {
		return nil, false, r.shortage()
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	r.pos += sz + int(n)
	return out, false, Success
}

// ReadExtensionHeader reads an extension token's tag and payload length.
func (r *Reader) ReadExtensionHeader() (tag int8, length uint32, res DecodeResult) {
	b, ok := r.peekByte(r.pos)
	if !ok {
		return 0, 0, r.shortage()
	}
	var fixedLen int
	switch b {
	case mpFixExt1:
		fixedLen = 1
	case mpFixExt2:
		fixedLen = 2
	case mpFixExt4:
		fixedLen = 4
	case mpFixExt8:
		fixedLen = 8
	case mpFixExt16:
		fixedLen = 16
	case mpExt8, mpExt16, mpExt32:
		fixedLen = -1
	default:
		return 0, 0, TokenMismatch
	}
	if fixedLen >= 0 {
		buf, got := r.peekBytes(r.pos, 2+fixedLen, nil)
		if !got {
			return 0, 0, r.shortage()
		}
		r.pos += 2
		return int8(buf[1]), uint32(fixedLen), Success
	}
	switch b {
	case mpExt8:
		buf, got := r.peekBytes(r.pos, 3, nil)
		if !got {
			return 0, 0, r.shortage()
		}
		r.pos += 3
		return int8(buf[2]), uint32(buf[1]), Success
	case mpExt16:
		buf, got := r.peekBytes(r.pos, 4, nil)
		if !got {
			return 0, 0, r.shortage()
		}
		r.pos += 4
		return int8(buf[3]), uint32(beUint16(buf[1:3])), Success
	default: // mpExt32
		buf, got := r.peekBytes(r.pos, 6, nil)
		if !got {
			return 0, 0, r.shortage()
		}
		r.pos += 6
		return int8(buf[5]), beUint32(buf[1:5]), Success
	}
}

// ReadRaw reads n raw payload bytes at the cursor (used after
// ReadExtensionHeader to fetch the extension's payload).
func (r *Reader) ReadRaw(n int) ([]byte, DecodeResult) {
	buf, ok := r.peekBytes(r.pos, n, nil)
	if !ok {
		return nil, r.shortage()
	}
	out := make([]byte, n)
	copy(out, buf)
	r.pos += n
	return out, Success
}

// PeekNextType classifies the upcoming token without consuming it.
func (r *Reader) PeekNextType() (TokenKind, DecodeResult) {
	b, ok := r.peekByte(r.pos)
	if !ok {
		return TokenNil, r.shortage()
	}
	return peekKind(b), Success
}

// Skip advances the cursor past exactly one value of any kind, including
// composites, via a stack-free loop tracking a scalar counter of
// "structures still owed" rather than recursion (§4.A).
func (r *Reader) Skip() DecodeResult {
	owed := 1
	for owed > 0 {
		kind, res := r.PeekNextType()
		if res != Success {
			return res
		}
		switch kind {
		case TokenNil:
			isNil, res := r.TryReadNil()
			if res != Success {
				return res
			}
			// PeekNextType also classifies the never-used format byte 0xc1
			// as Nil; TryReadNil does not consume it, so it is rejected here.
			if !isNil {
				return TokenMismatch
			}
		case TokenBool:
			if _, res := r.ReadBool(); res != Success {
				return res
			}
		case TokenInt:
			if _, res := r.ReadInt64(); res != Success {
				return res
			}
		case TokenFloat32:
			if _, res := r.ReadFloat32(); res != Success {
				return res
			}
		case TokenFloat64:
			if _, res := r.ReadFloat64(); res != Success {
				return res
			}
		case TokenString:
			if _, _, res := r.ReadStringOrNil(); res != Success {
				return res
			}
		case TokenBinary:
			if _, _, res := r.ReadBytesOrNil(); res != Success {
				return res
			}
		case TokenArray:
			n, res := r.ReadArrayHeader()
			if res != Success {
				return res
			}
			owed += int(n)
		case TokenMap:
			n, res := r.ReadMapHeader()
			if res != Success {
				return res
			}
			owed += int(n) * 2
		case TokenExtension:
			_, n, res := r.ReadExtensionHeader()
			if res != Success {
				return res
			}
			if _, res := r.ReadRaw(int(n)); res != Success {
				return res
			}
		}
		owed--
	}
	return Success
}

func beUint16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
func beUint64(b []byte) uint64 {
	return uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
}
