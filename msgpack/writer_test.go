package msgpack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTripReader(t *testing.T, data []byte) *BufferedReader {
	t.Helper()
	return NewBufferedReader(data)
}

func TestWriteReadIntRoundTrip(t *testing.T) {
	cases := []int64{0, 1, 127, -1, -32, -33, 128, 255, 256, 32767, 32768, -129, 1 << 40}
	for _, v := range cases {
		w := NewWriter()
		w.WriteInt(v)
		r := roundTripReader(t, w.Bytes())
		require.Equal(t, v, r.ReadInt64(), "round-trip %d", v)
	}
}

func TestWriteReadUint(t *testing.T) {
	cases := []uint64{0, 127, 128, 255, 256, 65535, 65536, 1 << 40}
	for _, v := range cases {
		w := NewWriter()
		w.WriteUint(v)
		r := roundTripReader(t, w.Bytes())
		require.Equal(t, v, r.ReadUint64())
	}
}

func TestWriteReadStringAndNil(t *testing.T) {
	w := NewWriter()
	w.WriteString("hello world")
	r := roundTripReader(t, w.Bytes())
	s, isNil := r.ReadString()
	require.False(t, isNil)
	require.Equal(t, "hello world", s)

	w2 := NewWriter()
	w2.WriteNil()
	r2 := roundTripReader(t, w2.Bytes())
	require.True(t, r2.ReadNil())
}

func TestWriteReadBinary(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	w := NewWriter()
	w.WriteBinary(payload)
	r := roundTripReader(t, w.Bytes())
	got, isNil := r.ReadBytes()
	require.False(t, isNil)
	require.Equal(t, payload, got)
}

func TestReadIntSizedRejectsOutOfRange(t *testing.T) {
	w := NewWriter()
	w.WriteUint(255)
	r := roundTripReader(t, w.Bytes())
	require.Panics(t, func() { r.ReadIntSized(8) })
}

func TestArrayAndMapHeaders(t *testing.T) {
	w := NewWriter()
	w.WriteArrayHeader(3)
	w.WriteInt(1)
	w.WriteInt(2)
	w.WriteInt(3)
	r := roundTripReader(t, w.Bytes())
	require.EqualValues(t, 3, r.ReadArrayHeader())
	require.Equal(t, int64(1), r.ReadInt64())
	require.Equal(t, int64(2), r.ReadInt64())
	require.Equal(t, int64(3), r.ReadInt64())

	w2 := NewWriter()
	w2.WriteMapHeader(2)
	w2.WriteString("a")
	w2.WriteInt(1)
	w2.WriteString("b")
	w2.WriteInt(2)
	r2 := roundTripReader(t, w2.Bytes())
	require.EqualValues(t, 2, r2.ReadMapHeader())
}

func TestSkipOverComposite(t *testing.T) {
	w := NewWriter()
	w.WriteArrayHeader(2)
	w.WriteMapHeader(1)
	w.WriteString("k")
	w.WriteInt(42)
	w.WriteString("tail")
	w.WriteString("next")
	r := roundTripReader(t, w.Bytes())
	r.Skip()
	s, _ := r.ReadString()
	require.Equal(t, "next", s)
}

func TestExtensionTimestampRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteTimestamp(1700000000, 123456789)
	r := roundTripReader(t, w.Bytes())
	sec, nsec := r.ReadTimestamp()
	require.EqualValues(t, 1700000000, sec)
	require.EqualValues(t, 123456789, nsec)
}
