package msgpack

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shapemsgpack/msgpack/shape"
)

func stringSliceShape() *shape.EnumerableShape {
	t := reflect.TypeOf([]string(nil))
	return &shape.EnumerableShape{
		Typ:     t,
		Element: &shape.PrimitiveShape{PKind: shape.PrimString, Typ: reflect.TypeOf("")},
		NewIterator: func(container reflect.Value) shape.Iterator {
			return &sliceIter{v: container, i: -1}
		},
		NewBuilder: func() (reflect.Value, func(reflect.Value, reflect.Value) reflect.Value, func(reflect.Value) reflect.Value) {
			state := reflect.MakeSlice(t, 0, 0)
			appendFn := func(s, elem reflect.Value) reflect.Value { return reflect.Append(s, elem) }
			finish := func(s reflect.Value) reflect.Value { return s }
			return state, appendFn, finish
		},
	}
}

type sliceIter struct {
	v reflect.Value
	i int
}

func (s *sliceIter) Next() bool {
	s.i++
	return s.i < s.v.Len()
}

func (s *sliceIter) Value() reflect.Value { return s.v.Index(s.i) }

func TestEnumerableStringSliceRoundTrip(t *testing.T) {
	s := stringSliceShape()
	cache := NewConverterCache(DefaultCacheOptions())

	in := []string{"alpha", "beta", "gamma"}
	data, err := Serialize(cache, in, s)
	require.NoError(t, err)

	var out []string
	require.NoError(t, Deserialize(cache, data, s, &out))
	require.Equal(t, in, out)
}

func stringIntMapShape() *shape.DictionaryShape {
	t := reflect.TypeOf(map[string]int(nil))
	return &shape.DictionaryShape{
		Typ:   t,
		Key:   &shape.PrimitiveShape{PKind: shape.PrimString, Typ: reflect.TypeOf("")},
		Value: &shape.PrimitiveShape{PKind: shape.PrimInt64, Typ: reflect.TypeOf(int(0))},
		NewIterator: func(container reflect.Value) shape.DictIterator {
			return &mapIter{keys: container.MapKeys(), v: container, i: -1}
		},
		Constructor: func(entries []shape.DictEntry) reflect.Value {
			m := reflect.MakeMapWithSize(t, len(entries))
			for _, e := range entries {
				m.SetMapIndex(e.Key, e.Value)
			}
			return m
		},
	}
}

type mapIter struct {
	keys []reflect.Value
	v    reflect.Value
	i    int
}

func (m *mapIter) Next() bool {
	m.i++
	return m.i < len(m.keys)
}

func (m *mapIter) Key() reflect.Value   { return m.keys[m.i] }
func (m *mapIter) Value() reflect.Value { return m.v.MapIndex(m.keys[m.i]) }

func TestDictionaryStringIntMapRoundTrip(t *testing.T) {
	s := stringIntMapShape()
	cache := NewConverterCache(DefaultCacheOptions())

	in := map[string]int{"one": 1, "two": 2, "three": 3}
	data, err := Serialize(cache, in, s)
	require.NoError(t, err)

	var out map[string]int
	require.NoError(t, Deserialize(cache, data, s, &out))
	require.Equal(t, in, out)
}
