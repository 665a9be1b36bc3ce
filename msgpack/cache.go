// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import (
	"context"
	"reflect"
	"sync"

	"github.com/shapemsgpack/msgpack/shape"
)

// ConverterCache is the immutable-once-published, thread-safe converter
// registry (§4.E). Options are fixed at construction; converters are built
// lazily on first request and reused for the cache's lifetime — the same
// double-checked-locking shape the teacher uses for its per-type codecFn
// cache (classicvalues-go-6/codec/encode.go's encFnInfo lookup).
type ConverterCache struct {
	opts   CacheOptions
	intern *stringIntern

	mu         sync.RWMutex
	converters map[reflect.Type]Converter
}

// NewConverterCache constructs a cache. A zero-value CacheOptions argument
// is not meaningful; call DefaultCacheOptions() first and adjust fields.
func NewConverterCache(opts CacheOptions) *ConverterCache {
	c := &ConverterCache{
		opts:       opts,
		converters: map[reflect.Type]Converter{},
	}
	if opts.InternStrings {
		c.intern = newStringIntern(opts.InternCacheSize)
	}
	return c
}

// ConverterFor returns the (possibly newly built) converter for s, publishing
// it into the cache so later calls for the same reflect.Type reuse the
// identical instance (§3.3).
func (c *ConverterCache) ConverterFor(s shape.Shape) Converter {
	t := s.Type()

	c.mu.RLock()
	if conv, ok := c.converters[t]; ok {
		c.mu.RUnlock()
		return conv
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if conv, ok := c.converters[t]; ok {
		return conv
	}

	vc := &VisitContext{cache: c, inProgress: map[reflect.Type]*deferredConverter{}}
	conv := vc.visit(s)
	c.converters[t] = conv
	return conv
}

// ConverterForType is a convenience accessor for code that already holds a
// built converter keyed by reflect.Type (e.g. a dictionary's key converter
// resolved once and reused across many entries); it returns ok=false if
// nothing has been registered for t yet.
func (c *ConverterCache) ConverterForType(t reflect.Type) (Converter, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conv, ok := c.converters[t]
	return conv, ok
}

// newContextFor builds a Context wired to this cache's reference-
// preservation setting, ready for a single top-level Serialize/Deserialize
// call (§4.I).
func (c *ConverterCache) newContextFor(userCtx context.Context) *Context {
	ctx := NewContext(userCtx)
	if c.opts.MaxDepth != 0 {
		ctx.MaxDepth = c.opts.MaxDepth
	}
	if c.opts.MaxAsyncBuffer > 0 {
		ctx.UnflushedThreshold = c.opts.MaxAsyncBuffer
	}
	ctx.emitPolicy = c.opts.SerializeDefaultValues
	ctx.deserializeDefaults = c.opts.DeserializeDefaultValues
	if c.opts.PreserveReferences != RefPreserveOff {
		ctx.refs = newRefTable(c.opts.PreserveReferences)
	}
	return ctx
}
