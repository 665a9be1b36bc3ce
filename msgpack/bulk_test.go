package msgpack

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBulkInt32SliceRoundTrip(t *testing.T) {
	conv, ok := newBulkConverter(reflect.TypeOf(int32(0)))
	require.True(t, ok)

	in := []int32{1, -2, 1000000, 0, -128}
	w := NewWriter()
	conv.Write(NewContext(nil), w, reflect.ValueOf(in))

	r := NewBufferedReader(w.Bytes())
	out := reflect.New(reflect.TypeOf([]int32(nil))).Elem()
	conv.Read(NewContext(nil), r, out)
	require.Equal(t, in, out.Interface().([]int32))
}

func TestBulkFloat64ArrayRoundTrip(t *testing.T) {
	conv, ok := newBulkConverter(reflect.TypeOf(float64(0)))
	require.True(t, ok)

	in := [3]float64{1.5, -2.25, 0}
	w := NewWriter()
	conv.Write(NewContext(nil), w, reflect.ValueOf(in))

	r := NewBufferedReader(w.Bytes())
	out := reflect.New(reflect.TypeOf([3]float64{})).Elem()
	conv.Read(NewContext(nil), r, out)
	require.Equal(t, in, out.Interface().([3]float64))
}

func TestBulkConverterRejectsNonFixedWidthElement(t *testing.T) {
	_, ok := newBulkConverter(reflect.TypeOf(""))
	require.False(t, ok)
}

func TestBulkArrayReadRejectsOverflow(t *testing.T) {
	conv, _ := newBulkConverter(reflect.TypeOf(uint8(0)))
	w := NewWriter()
	w.WriteArrayHeader(4)
	for i := 0; i < 4; i++ {
		w.WriteUint(uint64(i))
	}
	r := NewBufferedReader(w.Bytes())
	out := reflect.New(reflect.TypeOf([2]uint8{})).Elem()
	require.Panics(t, func() { conv.Read(NewContext(nil), r, out) })
}
