// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

// BufferedReader is the buffered layer (§4.A): a convenience view over a
// fully-present buffer whose reads either succeed or fail fast, built
// internally on the streaming Reader. Every method panics a *CodecError
// (recovered at Deserialize, via the panicHdl idiom in errors.go) instead
// of returning a DecodeResult, since there is nothing useful a caller can
// do with InsufficientBuffer when the whole buffer is already present.
type BufferedReader struct {
	panicHdl
	r *Reader
}

// NewBufferedReader wraps a fully in-memory buffer.
func NewBufferedReader(data []byte) *BufferedReader {
	r := NewReader()
	r.Feed(data, true)
	return &BufferedReader{r: r}
}

// NewBufferedReaderFromSource eagerly drains src (calling Fetch until eof)
// and returns a BufferedReader over the fetched segments.
func NewBufferedReaderFromSource(src ByteSource) *BufferedReader {
	r := NewReader()
	consumed := 0
	for {
		seg, eof := src.Fetch(consumed)
		r.Feed(seg, eof)
		consumed += len(seg)
		if eof {
			break
		}
	}
	return &BufferedReader{r: r}
}

// Position exposes the underlying streaming reader's logical cursor, used
// as the Offset breadcrumb when annotating errors (§7).
func (b *BufferedReader) Position() int { return b.r.Position() }

func (b *BufferedReader) fail(code ErrorCode, res DecodeResult) {
	var msg string
	switch res {
	case InsufficientBuffer, EndOfStream:
		msg = "unexpected end of msgpack data"
	case TokenMismatch:
		msg = "unexpected msgpack token"
	default:
		msg = "decode error"
	}
	ce := newCodecError(code, "%s", msg)
	ce.Offset = b.r.Position()
	panic(ce)
}

func (b *BufferedReader) ReadNil() bool {
	v, res := b.r.TryReadNil()
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return v
}

func (b *BufferedReader) ReadBool() bool {
	v, res := b.r.ReadBool()
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return v
}

func (b *BufferedReader) ReadInt64() int64 {
	v, res := b.r.ReadInt64()
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return v
}

func (b *BufferedReader) ReadUint64() uint64 {
	v, res := b.r.ReadUint64()
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return v
}

func (b *BufferedReader) ReadIntSized(bits int) int64 {
	v, res := b.r.ReadIntSized(bits)
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return v
}

func (b *BufferedReader) ReadUintSized(bits int) uint64 {
	v, res := b.r.ReadUintSized(bits)
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return v
}

func (b *BufferedReader) ReadFloat32() float32 {
	v, res := b.r.ReadFloat32()
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return v
}

func (b *BufferedReader) ReadFloat64() float64 {
	v, res := b.r.ReadFloat64()
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return v
}

// ReadString reads a string token, returning isNil if the value was Nil.
func (b *BufferedReader) ReadString() (s string, isNil bool) {
	s, isNil, res := b.r.ReadStringOrNil()
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return s, isNil
}

// ReadStringSpan returns a zero-copy view of a string token's bytes when
// they lie within one segment. A reader fed from a multi-segment source can
// hold a string that straddles segments; its bytes are then returned as a
// copy.
func (b *BufferedReader) ReadStringSpan() (span []byte, isNil bool) {
	span, zeroCopy, isNil, res := b.r.ReadStringSpan()
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	if !zeroCopy && !isNil {
		s, _ := b.ReadString()
		return []byte(s), false
	}
	return span, isNil
}

func (b *BufferedReader) ReadBytes() (data []byte, isNil bool) {
	data, isNil, res := b.r.ReadBytesOrNil()
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return data, isNil
}

func (b *BufferedReader) ReadArrayHeader() uint32 {
	n, res := b.r.ReadArrayHeader()
	if res != Success {
		b.fail(ErrArityMismatch, res)
	}
	return n
}

func (b *BufferedReader) ReadMapHeader() uint32 {
	n, res := b.r.ReadMapHeader()
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return n
}

func (b *BufferedReader) ReadExtensionHeader() (tag int8, length uint32) {
	tag, length, res := b.r.ReadExtensionHeader()
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return tag, length
}

func (b *BufferedReader) ReadRaw(n int) []byte {
	data, res := b.r.ReadRaw(n)
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return data
}

func (b *BufferedReader) PeekNextType() TokenKind {
	k, res := b.r.PeekNextType()
	if res != Success {
		b.fail(ErrInvalidData, res)
	}
	return k
}

func (b *BufferedReader) Skip() {
	if res := b.r.Skip(); res != Success {
		b.fail(ErrInvalidData, res)
	}
}

func (b *BufferedReader) AtEnd() bool { return b.r.AtEnd() }

// RawSince returns a copy of the bytes consumed between start (an earlier
// Position()) and the current cursor, used by the unused-data passthrough
// (§4.J) to capture an unknown key's raw encoded value verbatim.
func (b *BufferedReader) RawSince(start int) []byte {
	n := b.r.pos - start
	buf, ok := b.r.peekBytes(start, n, nil)
	if !ok {
		b.errorf(ErrUnspecified, "internal error: raw span [%d,%d) not retained in buffer", start, b.r.pos)
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out
}
