// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

import "math"

// WriteTimestamp encodes (sec, nsec) as the timestamp extension (tag -1),
// choosing the shortest of the three wire forms per §4.A: 4 bytes when sec
// fits uint32 and nsec is zero; 8 bytes combining a 30-bit nsec with a
// 34-bit sec when sec fits that range; else the 12-byte Ext8 form.
func (w *Writer) WriteTimestamp(sec int64, nsec int32) {
	const thirtyFourBitMax = int64(1) << 34
	switch {
	case nsec == 0 && sec >= 0 && sec <= int64(math.MaxUint32):
		payload := make([]byte, 4)
		putBeUint32(payload, uint32(sec))
		w.WriteExtension(extTimestamp, payload)
	case sec >= 0 && sec < thirtyFourBitMax:
		v := (uint64(uint32(nsec)) << 34) | uint64(sec)
		payload := make([]byte, 8)
		putBeUint64(payload, v)
		w.WriteExtension(extTimestamp, payload)
	default:
		payload := make([]byte, 12)
		putBeUint32(payload[0:4], uint32(nsec))
		putBeUint64(payload[4:12], uint64(sec))
		w.WriteExtension(extTimestamp, payload)
	}
}

// ReadTimestamp reads a timestamp extension value, accepting any of the
// three wire forms (§4.A).
func (b *BufferedReader) ReadTimestamp() (sec int64, nsec int32) {
	tag, length := b.ReadExtensionHeader()
	payload := b.ReadRaw(int(length))
	if tag != extTimestamp {
		ce := newCodecError(ErrInvalidData, "expected timestamp extension (tag %d), got tag %d", extTimestamp, tag)
		ce.Offset = b.Position()
		panic(ce)
	}
	switch len(payload) {
	case 4:
		return int64(beUint32(payload)), 0
	case 8:
		v := beUint64(payload)
		return int64(v & (1<<34 - 1)), int32(v >> 34)
	case 12:
		return int64(beUint64(payload[4:12])), int32(beUint32(payload[0:4]))
	default:
		ce := newCodecError(ErrInvalidData, "invalid timestamp payload length %d", len(payload))
		ce.Offset = b.Position()
		panic(ce)
	}
}
