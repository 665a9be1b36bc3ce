package msgpack

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shapemsgpack/msgpack/shape"
)

type widget struct {
	Name  string
	Extra UnusedData
}

func widgetShape() *shape.ObjectShape {
	t := reflect.TypeOf(widget{})
	return &shape.ObjectShape{
		Typ: t,
		Properties: []shape.PropertyShape{
			{
				Name: "name",
				Type: &shape.PrimitiveShape{PKind: shape.PrimString, Typ: reflect.TypeOf("")},
				Get:  func(obj reflect.Value) reflect.Value { return obj.FieldByName("Name") },
				Set:  func(obj reflect.Value, v reflect.Value) { obj.FieldByName("Name").Set(v) },
			},
		},
		UnusedData: &shape.UnusedDataField{
			Get: func(obj reflect.Value) reflect.Value { return obj.FieldByName("Extra") },
			Set: func(obj reflect.Value, v reflect.Value) { obj.FieldByName("Extra").Set(v) },
		},
	}
}

// TestUnusedDataRoundTripsUnrecognizedProperty simulates decoding a payload
// written by a newer schema version that added a "color" property this
// reader's shape doesn't know about, then re-encoding: the unrecognized
// property must reappear byte-for-byte.
func TestUnusedDataRoundTripsUnrecognizedProperty(t *testing.T) {
	s := widgetShape()
	cache := NewConverterCache(DefaultCacheOptions())

	w := NewWriter()
	w.WriteMapHeader(2)
	w.WriteString("name")
	w.WriteString("gadget")
	w.WriteString("color")
	w.WriteString("red")

	var out widget
	require.NoError(t, Deserialize(cache, w.Bytes(), s, &out))
	require.Equal(t, "gadget", out.Name)
	require.Len(t, out.Extra, 1)
	require.Equal(t, "color", out.Extra[0].Key)

	data, err := Serialize(cache, out, s)
	require.NoError(t, err)

	r := NewBufferedReader(data)
	require.EqualValues(t, 2, r.ReadMapHeader())
	k, _ := r.ReadString()
	require.Equal(t, "name", k)
	v, _ := r.ReadString()
	require.Equal(t, "gadget", v)
	k2, _ := r.ReadString()
	require.Equal(t, "color", k2)
	v2, _ := r.ReadString()
	require.Equal(t, "red", v2)
}
