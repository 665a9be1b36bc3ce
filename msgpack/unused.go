// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import "reflect"

// UnusedEntry is one captured (key, raw-encoded-value) pair an object's
// unused-data slot holds across a decode/re-encode cycle (§4.J).
type UnusedEntry struct {
	Key string
	Raw []byte
}

// UnusedData is the opaque passthrough type a struct embeds (via a field the
// shape producer exposes through shape.ObjectShape.UnusedData) to round-trip
// properties it doesn't recognize — typically because the writer is running
// a newer schema version than the reader.
type UnusedData []UnusedEntry

// unusedDataType is the reflect.Type of UnusedData, computed once. No code
// in this package reads it.
var unusedDataType = reflect.TypeOf(UnusedData(nil))
