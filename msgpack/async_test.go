package msgpack

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeAsyncDeserializeAsyncRoundTrip(t *testing.T) {
	s := personShape()
	opts := DefaultCacheOptions()
	opts.MaxAsyncBuffer = 8 // flush threshold below the payload size, so the write flushes before Finish
	cache := NewConverterCache(opts)

	in := person{Name: "Hopper", Age: 85}
	var buf bytes.Buffer
	require.NoError(t, SerializeAsync(context.Background(), cache, in, s, &buf))

	var out person
	require.NoError(t, DeserializeAsync(context.Background(), cache, &buf, s, &out))
	require.Equal(t, in, out)
}

func TestDeserializeAsyncCancellation(t *testing.T) {
	s := personShape()
	cache := NewConverterCache(DefaultCacheOptions())

	in := person{Name: "Lovelace", Age: 27}
	var buf bytes.Buffer
	require.NoError(t, SerializeAsync(context.Background(), cache, in, s, &buf))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out person
	err := DeserializeAsync(ctx, cache, &buf, s, &out)
	require.Error(t, err)
	require.Equal(t, ErrCancelled, CodeOf(err))
}
