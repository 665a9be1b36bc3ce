// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

// AsyncReader pairs a fetch-more-bytes loop with the streaming Reader
// (§4.B): when a streaming read returns InsufficientBuffer, the loop calls
// out to the ByteSource and re-runs the same read. Every call to fetchMore
// is the only allowed suspension point (§5) — Go doesn't need a distinct
// "await" keyword for this since the call is synchronous from the
// goroutine's point of view, but the discipline (suspend only at fetch,
// never mid-token) is the same one the source ecosystem enforces with
// async/await.
type AsyncReader struct {
	panicHdl
	r        *Reader
	src      ByteSource
	consumed int
}

// NewAsyncReader returns an AsyncReader drawing from src.
func NewAsyncReader(src ByteSource) *AsyncReader {
	return &AsyncReader{r: NewReader(), src: src}
}

func (a *AsyncReader) fetchMore(ctx *Context) bool {
	ctx.checkCancelled()
	seg, eof := a.src.Fetch(a.consumed)
	a.consumed += len(seg)
	a.r.Feed(seg, eof)
	return len(seg) > 0 || eof
}

// mustBuffered drains src to completion and returns a BufferedReader over
// the same underlying cursor — the fallback syncOnlyAdapter uses so a
// Converter written only against the synchronous interface still works
// from an async caller (§3.3).
func (a *AsyncReader) mustBuffered(ctx *Context) *BufferedReader {
	for !a.r.eof {
		if !a.fetchMore(ctx) {
			break
		}
	}
	return &BufferedReader{r: a.r}
}

func (a *AsyncReader) fail(code ErrorCode, res DecodeResult) {
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
	ce.Offset = a.r.Position()
	panic(ce)
}

// retry runs attempt, fetching more bytes and re-running it whenever it
// reports InsufficientBuffer, until it succeeds or fails terminally.
func (a *AsyncReader) retry(ctx *Context, code ErrorCode, attempt func() DecodeResult) {
	for {
		res := attempt()
		if res == Success {
			return
		}
		if res == InsufficientBuffer {
			if a.fetchMore(ctx) {
				continue
			}
		}
		a.fail(code, res)
	}
}

func (a *AsyncReader) ReadNil(ctx *Context) (isNil bool) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult {
		var res DecodeResult
		isNil, res = a.r.TryReadNil()
		return res
	})
	return
}

func (a *AsyncReader) ReadBool(ctx *Context) (v bool) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult { var res DecodeResult; v, res = a.r.ReadBool(); return res })
	return
}

func (a *AsyncReader) ReadInt64(ctx *Context) (v int64) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult { var res DecodeResult; v, res = a.r.ReadInt64(); return res })
	return
}

func (a *AsyncReader) ReadUint64(ctx *Context) (v uint64) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult { var res DecodeResult; v, res = a.r.ReadUint64(); return res })
	return
}

func (a *AsyncReader) ReadIntSized(ctx *Context, bits int) (v int64) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult { var res DecodeResult; v, res = a.r.ReadIntSized(bits); return res })
	return
}

func (a *AsyncReader) ReadUintSized(ctx *Context, bits int) (v uint64) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult { var res DecodeResult; v, res = a.r.ReadUintSized(bits); return res })
	return
}

func (a *AsyncReader) ReadFloat32(ctx *Context) (v float32) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult { var res DecodeResult; v, res = a.r.ReadFloat32(); return res })
	return
}

func (a *AsyncReader) ReadFloat64(ctx *Context) (v float64) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult { var res DecodeResult; v, res = a.r.ReadFloat64(); return res })
	return
}

func (a *AsyncReader) ReadString(ctx *Context) (s string, isNil bool) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult {
		var res DecodeResult
		s, isNil, res = a.r.ReadStringOrNil()
		return res
	})
	return
}

func (a *AsyncReader) ReadBytes(ctx *Context) (data []byte, isNil bool) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult {
		var res DecodeResult
		data, isNil, res = a.r.ReadBytesOrNil()
		return res
	})
	return
}

func (a *AsyncReader) ReadArrayHeader(ctx *Context) (n uint32) {
	a.retry(ctx, ErrArityMismatch, func() DecodeResult { var res DecodeResult; n, res = a.r.ReadArrayHeader(); return res })
	return
}

func (a *AsyncReader) ReadMapHeader(ctx *Context) (n uint32) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult { var res DecodeResult; n, res = a.r.ReadMapHeader(); return res })
	return
}

func (a *AsyncReader) ReadExtensionHeader(ctx *Context) (tag int8, length uint32) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult {
		var res DecodeResult
		tag, length, res = a.r.ReadExtensionHeader()
		return res
	})
	return
}

func (a *AsyncReader) ReadRaw(ctx *Context, n int) (data []byte) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult { var res DecodeResult; data, res = a.r.ReadRaw(n); return res })
	return
}

func (a *AsyncReader) PeekNextType(ctx *Context) (k TokenKind) {
	a.retry(ctx, ErrInvalidData, func() DecodeResult { var res DecodeResult; k, res = a.r.PeekNextType(); return res })
	return
}

// Skip advances past exactly one value, including composites. It cannot
// delegate to Reader.Skip directly: that method's "structures still owed"
// counter lives on its own stack frame, and a mid-composite
// InsufficientBuffer would lose that count on retry. Instead it re-derives
// the same owed-counter loop using the async primitive readers, each of
// which already retries internally.
func (a *AsyncReader) Skip(ctx *Context) {
	owed := 1
	for owed > 0 {
		switch a.PeekNextType(ctx) {
		case TokenNil:
			a.ReadNil(ctx)
		case TokenBool:
			a.ReadBool(ctx)
		case TokenInt:
			a.ReadInt64(ctx)
		case TokenFloat32:
			a.ReadFloat32(ctx)
		case TokenFloat64:
			a.ReadFloat64(ctx)
		case TokenString:
			a.ReadString(ctx)
		case TokenBinary:
			a.ReadBytes(ctx)
		case TokenArray:
			n := a.ReadArrayHeader(ctx)
			owed += int(n)
		case TokenMap:
			n := a.ReadMapHeader(ctx)
			owed += int(n) * 2
		case TokenExtension:
			_, n := a.ReadExtensionHeader(ctx)
			a.ReadRaw(ctx, int(n))
		}
		owed--
	}
}

func (a *AsyncReader) Position() int { return a.r.Position() }
