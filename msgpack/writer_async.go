// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

// AsyncWriter batches writes in memory (via the embedded Writer) until the
// unflushed-bytes threshold from the Context is reached, then flushes to
// the underlying sink and resumes (§4.B).
type AsyncWriter struct {
	panicHdl
	inner *Writer
	sink  ByteSink
}

// NewAsyncWriter returns an AsyncWriter flushing to sink.
func NewAsyncWriter(sink ByteSink) *AsyncWriter {
	return &AsyncWriter{inner: NewWriter(), sink: sink}
}

// maybeFlush is the async loop's only suspension point on the write side
// (§5): once the buffered-but-unflushed byte count reaches ctx's
// threshold, it flushes and resumes.
func (w *AsyncWriter) maybeFlush(ctx *Context) {
	if w.inner.unflushedBytes() < ctx.UnflushedThreshold {
		return
	}
	ctx.checkCancelled()
	if err := w.inner.FlushTo(w.sink); err != nil {
		w.errorf(ErrUnspecified, "flush failed: %v", err)
	}
}

// Finish flushes any remaining buffered bytes unconditionally. Callers must
// invoke this once after the top-level async write completes.
func (w *AsyncWriter) Finish() {
	if err := w.inner.FlushTo(w.sink); err != nil {
		w.errorf(ErrUnspecified, "final flush failed: %v", err)
	}
}

func (w *AsyncWriter) WriteNil(ctx *Context) { w.inner.WriteNil(); w.maybeFlush(ctx) }
func (w *AsyncWriter) WriteBool(ctx *Context, v bool) { w.inner.WriteBool(v); w.maybeFlush(ctx) }
func (w *AsyncWriter) WriteInt(ctx *Context, v int64) { w.inner.WriteInt(v); w.maybeFlush(ctx) }
func (w *AsyncWriter) WriteUint(ctx *Context, v uint64) { w.inner.WriteUint(v); w.maybeFlush(ctx) }
func (w *AsyncWriter) WriteFloat32(ctx *Context, v float32) { w.inner.WriteFloat32(v); w.maybeFlush(ctx) }
func (w *AsyncWriter) WriteFloat64(ctx *Context, v float64) { w.inner.WriteFloat64(v); w.maybeFlush(ctx) }
func (w *AsyncWriter) WriteString(ctx *Context, s string) { w.inner.WriteString(s); w.maybeFlush(ctx) }
func (w *AsyncWriter) WriteBinary(ctx *Context, b []byte) { w.inner.WriteBinary(b); w.maybeFlush(ctx) }
func (w *AsyncWriter) WriteArrayHeader(ctx *Context, n int) { w.inner.WriteArrayHeader(n); w.maybeFlush(ctx) }
func (w *AsyncWriter) WriteMapHeader(ctx *Context, n int) { w.inner.WriteMapHeader(n); w.maybeFlush(ctx) }
func (w *AsyncWriter) WriteExtension(ctx *Context, tag int8, payload []byte) {
	w.inner.WriteExtension(tag, payload)
	w.maybeFlush(ctx)
}
func (w *AsyncWriter) WriteTimestamp(ctx *Context, sec int64, nsec int32) {
	w.inner.WriteTimestamp(sec, nsec)
	w.maybeFlush(ctx)
}
