// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

// RentSyncReader creates a BufferedReader over data and marks the rental
// active on ctx, panicking if a rental is already outstanding (§4.B, §9).
// Callers must call ReturnReader when done, typically via defer.
func RentSyncReader(ctx *Context, data []byte) *BufferedReader {
	ctx.BeginRental(false)
	return NewBufferedReader(data)
}

// RentAsyncReader creates an AsyncReader over src and marks the rental
// active.
func RentAsyncReader(ctx *Context, src ByteSource) *AsyncReader {
	ctx.BeginRental(true)
	return NewAsyncReader(src)
}

// ReturnReader releases whichever rental is outstanding. It is safe to call
// even if no rental was taken (a no-op in that case), mirroring a
// defensive `defer`.
func ReturnReader(ctx *Context) { ctx.EndRental() }
