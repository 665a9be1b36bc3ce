package msgpack

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shapemsgpack/msgpack/shape"
)

type shapeBase struct {
	Kind string
}

type circleShape struct {
	Radius float64
}

type squareShape struct {
	Side float64
}

func circleObjectShape() *shape.ObjectShape {
	t := reflect.TypeOf(circleShape{})
	return &shape.ObjectShape{
		Typ: t,
		Properties: []shape.PropertyShape{
			{
				Name: "radius",
				Type: &shape.PrimitiveShape{PKind: shape.PrimFloat64, Typ: reflect.TypeOf(float64(0))},
				Get:  func(obj reflect.Value) reflect.Value { return obj.FieldByName("Radius") },
				Set:  func(obj reflect.Value, v reflect.Value) { obj.FieldByName("Radius").Set(v) },
			},
		},
	}
}

func squareObjectShape() *shape.ObjectShape {
	t := reflect.TypeOf(squareShape{})
	return &shape.ObjectShape{
		Typ: t,
		Properties: []shape.PropertyShape{
			{
				Name: "side",
				Type: &shape.PrimitiveShape{PKind: shape.PrimFloat64, Typ: reflect.TypeOf(float64(0))},
				Get:  func(obj reflect.Value) reflect.Value { return obj.FieldByName("Side") },
				Set:  func(obj reflect.Value, v reflect.Value) { obj.FieldByName("Side").Set(v) },
			},
		},
	}
}

// shapeUnionBase declares shapeBase as the union's own base type, with
// circleShape/squareShape registered as subtypes. Values whose dynamic type
// is shapeBase itself (not one of the registered subtypes) exercise the
// Nil-discriminator base case (§4.H).
func shapeUnionBase() *shape.ObjectShape {
	base := &shape.ObjectShape{
		Typ: reflect.TypeOf(shapeBase{}),
		Properties: []shape.PropertyShape{
			{
				Name: "kind",
				Type: &shape.PrimitiveShape{PKind: shape.PrimString, Typ: reflect.TypeOf("")},
				Get:  func(obj reflect.Value) reflect.Value { return obj.FieldByName("Kind") },
				Set:  func(obj reflect.Value, v reflect.Value) { obj.FieldByName("Kind").Set(v) },
			},
		},
	}
	base.Unions = []shape.UnionCase{
		{SubType: reflect.TypeOf(circleShape{}), SubShape: circleObjectShape(), IsInt: true, IntAlias: 1},
		{SubType: reflect.TypeOf(squareShape{}), SubShape: squareObjectShape(), IsInt: true, IntAlias: 2},
	}
	return base
}

func TestUnionDispatchRoundTrip(t *testing.T) {
	s := shapeUnionBase()
	cache := NewConverterCache(DefaultCacheOptions())
	conv := cache.ConverterFor(s)

	w := NewWriter()
	ctx := cache.newContextFor(nil)
	conv.Write(ctx, w, reflect.ValueOf(circleShape{Radius: 2.5}))

	r := NewBufferedReader(w.Bytes())
	var out interface{}
	rv := reflect.New(reflect.TypeOf((*interface{})(nil)).Elem()).Elem()
	conv.Read(cache.newContextFor(nil), r, rv)
	out = rv.Interface()
	require.Equal(t, circleShape{Radius: 2.5}, out)
}

func TestUnionBaseTypeRoundTrip(t *testing.T) {
	s := shapeUnionBase()
	cache := NewConverterCache(DefaultCacheOptions())
	conv := cache.ConverterFor(s)

	w := NewWriter()
	ctx := cache.newContextFor(nil)
	conv.Write(ctx, w, reflect.ValueOf(shapeBase{Kind: "generic"}))

	// The base case must still wrap in a 2-element array with Nil as the
	// discriminator, per §4.H.
	r := NewBufferedReader(w.Bytes())
	require.EqualValues(t, 2, r.ReadArrayHeader())
	require.True(t, r.ReadNil())
	require.EqualValues(t, 1, r.ReadMapHeader())
	key, _ := r.ReadString()
	require.Equal(t, "kind", key)
	val, _ := r.ReadString()
	require.Equal(t, "generic", val)

	r2 := NewBufferedReader(w.Bytes())
	var out interface{}
	rv := reflect.New(reflect.TypeOf((*interface{})(nil)).Elem()).Elem()
	conv.Read(cache.newContextFor(nil), r2, rv)
	out = rv.Interface()
	require.Equal(t, shapeBase{Kind: "generic"}, out)
}

func TestUnionUnknownAliasErrors(t *testing.T) {
	s := shapeUnionBase()
	cache := NewConverterCache(DefaultCacheOptions())
	conv := cache.ConverterFor(s)

	w := NewWriter()
	w.WriteArrayHeader(2)
	w.WriteInt(99)
	w.WriteNil()

	r := NewBufferedReader(w.Bytes())
	rv := reflect.New(reflect.TypeOf((*interface{})(nil)).Elem()).Elem()
	err := func() (err error) {
		defer recoverError(&err)
		conv.Read(cache.newContextFor(nil), r, rv)
		return nil
	}()
	require.Error(t, err)
	require.Equal(t, ErrUnknownAlias, CodeOf(err))
}
