package shape

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgStateSetGet(t *testing.T) {
	a := NewArgState(3)
	require.Equal(t, 3, a.Len())

	_, filled := a.Get(0)
	require.False(t, filled)

	a.Set(1, reflect.ValueOf(42))
	v, filled := a.Get(1)
	require.True(t, filled)
	require.Equal(t, 42, v.Interface())

	_, filled = a.Get(2)
	require.False(t, filled)
}

func TestArgStateGetOutOfRange(t *testing.T) {
	a := NewArgState(1)
	_, filled := a.Get(-1)
	require.False(t, filled)
	_, filled = a.Get(5)
	require.False(t, filled)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "object", KindObject.String())
	require.Equal(t, "primitive", KindPrimitive.String())
	require.Equal(t, "unknown", Kind(99).String())
}
