package msgpack

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shapemsgpack/msgpack/shape"
)

type person struct {
	Name string
	Age  int32
}

func personShape() *shape.ObjectShape {
	t := reflect.TypeOf(person{})
	return &shape.ObjectShape{
		Typ: t,
		Properties: []shape.PropertyShape{
			{
				Name: "name",
				Type: &shape.PrimitiveShape{PKind: shape.PrimString, Typ: reflect.TypeOf("")},
				Get:  func(obj reflect.Value) reflect.Value { return obj.FieldByName("Name") },
				Set:  func(obj reflect.Value, v reflect.Value) { obj.FieldByName("Name").Set(v) },
			},
			{
				Name: "age",
				Type: &shape.PrimitiveShape{PKind: shape.PrimInt32, Typ: reflect.TypeOf(int32(0))},
				Get:  func(obj reflect.Value) reflect.Value { return obj.FieldByName("Age") },
				Set:  func(obj reflect.Value, v reflect.Value) { obj.FieldByName("Age").Set(v) },
			},
		},
	}
}

func TestMapLayoutObjectRoundTrip(t *testing.T) {
	s := personShape()
	cache := NewConverterCache(DefaultCacheOptions())

	in := person{Name: "Ada", Age: 36}
	data, err := Serialize(cache, in, s)
	require.NoError(t, err)

	var out person
	require.NoError(t, Deserialize(cache, data, s, &out))
	require.Equal(t, in, out)
}

func TestArrayLayoutObjectRoundTrip(t *testing.T) {
	s := personShape()
	k0, k1 := 0, 1
	s.Properties[0].Key = &k0
	s.Properties[1].Key = &k1

	cache := NewConverterCache(DefaultCacheOptions())
	in := person{Name: "Grace", Age: 85}
	data, err := Serialize(cache, in, s)
	require.NoError(t, err)

	var out person
	require.NoError(t, Deserialize(cache, data, s, &out))
	require.Equal(t, in, out)
}

func TestArrayLayoutAllDefaultEncodesAsEmptyArrayUnderSerializeNever(t *testing.T) {
	s := personShape()
	k0, k1 := 0, 1
	s.Properties[0].Key = &k0
	s.Properties[1].Key = &k1

	opts := DefaultCacheOptions()
	opts.SerializeDefaultValues = SerializeNever
	cache := NewConverterCache(opts)
	data, err := Serialize(cache, person{}, s)
	require.NoError(t, err)

	r := NewBufferedReader(data)
	require.Equal(t, TokenArray, r.PeekNextType())
	require.EqualValues(t, 0, r.ReadArrayHeader())
}

func TestArrayLayoutAllDefaultEncodesFullLengthUnderSerializeAlways(t *testing.T) {
	s := personShape()
	k0, k1 := 0, 1
	s.Properties[0].Key = &k0
	s.Properties[1].Key = &k1

	cache := NewConverterCache(DefaultCacheOptions())
	data, err := Serialize(cache, person{}, s)
	require.NoError(t, err)

	r := NewBufferedReader(data)
	require.Equal(t, TokenArray, r.PeekNextType())
	require.EqualValues(t, 2, r.ReadArrayHeader())
}

func TestMapLayoutMissingRequiredPropertyErrors(t *testing.T) {
	s := personShape()
	s.Properties[0].Required = true

	cache := NewConverterCache(DefaultCacheOptions())
	w := NewWriter()
	w.WriteMapHeader(1)
	w.WriteString("age")
	w.WriteInt(10)

	var out person
	err := Deserialize(cache, w.Bytes(), s, &out)
	require.Error(t, err)
	require.Equal(t, ErrMissingRequiredProperty, CodeOf(err))
}

func TestIgnoreKeyAttributesForcesMapLayout(t *testing.T) {
	s := personShape()
	k0, k1 := 0, 1
	s.Properties[0].Key = &k0
	s.Properties[1].Key = &k1

	opts := DefaultCacheOptions()
	opts.IgnoreKeyAttributes = true
	cache := NewConverterCache(opts)

	in := person{Name: "Ada", Age: 36}
	data, err := Serialize(cache, in, s)
	require.NoError(t, err)

	r := NewBufferedReader(data)
	require.Equal(t, TokenMap, r.PeekNextType())

	var out person
	require.NoError(t, Deserialize(cache, data, s, &out))
	require.Equal(t, in, out)
}

func TestPropertyNamingPolicyAppliesToInferredNamesOnly(t *testing.T) {
	s := personShape()
	s.Properties[1].Name = "Age"
	s.Properties[1].NameExplicit = true

	opts := DefaultCacheOptions()
	opts.PropertyNamingPolicy = strings.ToUpper
	cache := NewConverterCache(opts)

	in := person{Name: "Ada", Age: 36}
	data, err := Serialize(cache, in, s)
	require.NoError(t, err)

	r := NewBufferedReader(data)
	require.EqualValues(t, 2, r.ReadMapHeader())
	k1, _ := r.ReadString()
	r.Skip()
	k2, _ := r.ReadString()
	r.Skip()
	require.ElementsMatch(t, []string{"NAME", "Age"}, []string{k1, k2})

	var out person
	require.NoError(t, Deserialize(cache, data, s, &out))
	require.Equal(t, in, out)
}

func TestMapLayoutSerializeNeverOmitsDefaults(t *testing.T) {
	s := personShape()
	opts := DefaultCacheOptions()
	opts.SerializeDefaultValues = SerializeNever
	cache := NewConverterCache(opts)

	data, err := Serialize(cache, person{Name: "", Age: 0}, s)
	require.NoError(t, err)

	r := NewBufferedReader(data)
	require.EqualValues(t, 0, r.ReadMapHeader())
}
