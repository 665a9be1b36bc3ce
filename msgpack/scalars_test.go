package msgpack

import (
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestGuidConverterRoundTrip(t *testing.T) {
	conv := guidConverter()
	u := uuid.New()

	w := NewWriter()
	conv.Write(NewContext(nil), w, reflect.ValueOf(u))

	r := NewBufferedReader(w.Bytes())
	out := reflect.New(reflect.TypeOf(uuid.UUID{})).Elem()
	conv.Read(NewContext(nil), r, out)
	require.Equal(t, u, out.Interface().(uuid.UUID))
}

func TestDecimalConverterRoundTrip(t *testing.T) {
	conv := decimalConverter()
	d := decimal.RequireFromString("123.456000")

	w := NewWriter()
	conv.Write(NewContext(nil), w, reflect.ValueOf(d))

	r := NewBufferedReader(w.Bytes())
	out := reflect.New(reflect.TypeOf(decimal.Decimal{})).Elem()
	conv.Read(NewContext(nil), r, out)
	require.True(t, d.Equal(out.Interface().(decimal.Decimal)))
}

func TestTimestampConverterRoundTrip(t *testing.T) {
	conv := timestampExtConverter()
	now := time.Unix(1700000000, 500000000).UTC()

	w := NewWriter()
	conv.Write(NewContext(nil), w, reflect.ValueOf(now))

	r := NewBufferedReader(w.Bytes())
	out := reflect.New(reflect.TypeOf(time.Time{})).Elem()
	conv.Read(NewContext(nil), r, out)
	require.True(t, now.Equal(out.Interface().(time.Time)))
}

func TestEnumConverterOrdinalAndName(t *testing.T) {
	names := []string{"Red", "Green", "Blue"}
	ordinals := []int64{0, 1, 2}

	ord := newEnumConverter(false, names, ordinals, reflect.Int)
	w := NewWriter()
	src := reflect.New(reflect.TypeOf(int(0))).Elem()
	src.SetInt(1)
	ord.Write(NewContext(nil), w, src)

	r := NewBufferedReader(w.Bytes())
	out := reflect.New(reflect.TypeOf(int(0))).Elem()
	ord.Read(NewContext(nil), r, out)
	require.EqualValues(t, 1, out.Int())

	byName := newEnumConverter(true, names, ordinals, reflect.Int)
	w2 := NewWriter()
	byName.Write(NewContext(nil), w2, src)
	r2 := NewBufferedReader(w2.Bytes())
	out2 := reflect.New(reflect.TypeOf(int(0))).Elem()
	byName.Read(NewContext(nil), r2, out2)
	require.EqualValues(t, 1, out2.Int())
}

func TestBigIntConverterRoundTripsNegative(t *testing.T) {
	conv := bigIntConverter()
	v := *big.NewInt(-123456789012345)

	w := NewWriter()
	conv.Write(NewContext(nil), w, reflect.ValueOf(v))

	r := NewBufferedReader(w.Bytes())
	out := reflect.New(reflect.TypeOf(big.Int{})).Elem()
	conv.Read(NewContext(nil), r, out)
	require.Equal(t, v.String(), out.Interface().(big.Int).String())
}
