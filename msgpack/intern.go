// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import (
	lru "github.com/hashicorp/golang-lru"
)

// stringIntern is the shared intern table consulted during string decode
// when InternStrings is set (§4.D). It is backed by an LRU cache rather
// than an unbounded map so long-running decoders with high string
// cardinality don't leak memory — grounded on kryptco-kr/src/go.mod's
// direct use of github.com/hashicorp/golang-lru (also vendored by
// moby-moby) for exactly this kind of bounded decode-time cache.
type stringIntern struct {
	cache *lru.Cache
}

func newStringIntern(size int) *stringIntern {
	if size <= 0 {
		size = 4096
	}
	c, err := lru.New(size)
	if err != nil {
		// lru.New only errors on size <= 0, already guarded above.
		panic(err)
	}
	return &stringIntern{cache: c}
}

// Intern returns the canonical copy of s, adding it to the table on first
// sight.
func (t *stringIntern) Intern(s string) string {
	if t == nil {
		return s
	}
	if v, ok := t.cache.Get(s); ok {
		return v.(string)
	}
	t.cache.Add(s, s)
	return s
}
