// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import "context"

// DefaultMaxDepth is the default recursion ceiling (§3.4 invariant).
const DefaultMaxDepth = 64

// DefaultUnflushedThreshold is the default unflushed-bytes threshold
// controlling async flush cadence (§4.B). CacheOptions.MaxAsyncBuffer
// overrides it; a small value exercises partial-flush paths.
const DefaultUnflushedThreshold = 4096

// rentState tracks the single outstanding reader/writer "rental" (§4.B,
// §9): at most one of a streaming reader or a buffered reader may be
// outstanding at a time; callers must return one before creating another.
type rentState uint8

const (
	rentNone rentState = iota
	rentSync
	rentAsync
)

// Context is threaded through every read/write call (§3.4): current
// recursion depth, a cancellation signal, the unflushed-bytes threshold for
// async flush cadence, and an optional reference-preservation table. A
// Context is constructed fresh per call and is never shared across
// concurrent Serialize/Deserialize invocations (§5).
type Context struct {
	panicHdl

	Ctx context.Context // user-supplied cancellation; nil means context.Background semantics

	MaxDepth           int
	UnflushedThreshold int

	depth int
	rent  rentState

	refs *refTable // non-nil only when preserve_references is enabled (§4.I)

	emitPolicy          DefaultValuesPolicy // property emission policy, mirrored from CacheOptions (§4.E.2)
	deserializeDefaults bool                // mirrored from CacheOptions.DeserializeDefaultValues
}

// NewContext returns a Context with default depth limit and flush
// threshold. Options may further configure it (reference preservation is
// wired in by ConverterCache when preserveReferences != Off).
func NewContext(ctx context.Context) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		Ctx:                ctx,
		MaxDepth:           DefaultMaxDepth,
		UnflushedThreshold: DefaultUnflushedThreshold,
	}
}

// EnterComposite increments depth on entry to a composite value and fails
// with DepthExceeded if the configured maximum is surpassed (§3.4
// invariant). Callers must pair every EnterComposite with a deferred
// ExitComposite so depth is decremented regardless of success or failure
// (§5 "Resource safety").
func (c *Context) EnterComposite() {
	c.depth++
	if c.depth > c.MaxDepth {
		ce := newCodecError(ErrDepthExceeded, "recursion depth %d exceeds maximum %d", c.depth, c.MaxDepth)
		ce.Depth = c.depth
		panic(ce)
	}
	c.checkCancelled()
}

// ExitComposite decrements depth on exit from a composite value.
func (c *Context) ExitComposite() { c.depth-- }

// Depth reports the current recursion depth.
func (c *Context) Depth() int { return c.depth }

// checkCancelled observes the cancellation token at a structure boundary
// (§5: "the check is made ... at each top-level structure boundary (sync),
// never mid-token").
func (c *Context) checkCancelled() {
	select {
	case <-c.Ctx.Done():
		c.errorf(ErrCancelled, "serialization cancelled: %v", c.Ctx.Err())
	default:
	}
}

// BeginRental enforces the reader/writer rental discipline (§4.B, §9): only
// one of a streaming reader or a buffered reader may be outstanding at a
// time. async only records whether the rental is sync or async.
func (c *Context) BeginRental(async bool) {
	if c.rent != rentNone {
		c.errorf(ErrUnspecified, "reader/writer rental violated: a rental is already outstanding")
	}
	if async {
		c.rent = rentAsync
	} else {
		c.rent = rentSync
	}
}

// EndRental releases the current rental, allowing a new one to begin.
func (c *Context) EndRental() { c.rent = rentNone }
