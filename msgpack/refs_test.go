package msgpack

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type refNode struct{ Val int64 }

func ptrFieldConverter() Converter {
	return &funcConverter{
		write: func(ctx *Context, w *Writer, rv reflect.Value) { w.WriteInt(rv.Elem().Field(0).Int()) },
		read:  func(ctx *Context, r *BufferedReader, rv reflect.Value) { rv.Elem().Field(0).SetInt(r.ReadInt64()) },
	}
}

func TestRefPreservingConverterDedupesSharedIdentity(t *testing.T) {
	rc := &refPreservingConverter{inner: ptrFieldConverter()}
	shared := &refNode{Val: 42}

	encodeCtx := NewContext(nil)
	encodeCtx.refs = newRefTable(RefPreserveAllowCycles)
	w := NewWriter()
	rc.Write(encodeCtx, w, reflect.ValueOf(shared))
	rc.Write(encodeCtx, w, reflect.ValueOf(shared))

	r := NewBufferedReader(w.Bytes())
	decodeCtx := NewContext(nil)
	decodeCtx.refs = newRefTable(RefPreserveAllowCycles)

	var out1Ptr *refNode
	out1 := reflect.ValueOf(&out1Ptr).Elem()
	out1.Set(reflect.New(reflect.TypeOf(refNode{})))
	rc.Read(decodeCtx, r, out1)
	require.Equal(t, int64(42), out1Ptr.Val)

	var out2Ptr *refNode
	out2 := reflect.ValueOf(&out2Ptr).Elem()
	rc.Read(decodeCtx, r, out2)
	require.True(t, out2Ptr == out1Ptr, "second sighting must resolve to the same Go value")
}

func TestRefPreservingConverterRejectsCycle(t *testing.T) {
	var rc *refPreservingConverter
	cyclic := &funcConverter{
		write: func(ctx *Context, w *Writer, rv reflect.Value) { rc.Write(ctx, w, rv) },
	}
	rc = &refPreservingConverter{inner: cyclic}

	ctx := NewContext(nil)
	ctx.refs = newRefTable(RefPreserveRejectCycles)
	node := &refNode{Val: 1}

	err := func() (err error) {
		defer recoverError(&err)
		rc.Write(ctx, NewWriter(), reflect.ValueOf(node))
		return nil
	}()
	require.Error(t, err)
	require.Equal(t, ErrUnspecified, CodeOf(err))
}
