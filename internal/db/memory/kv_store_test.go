package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Handlecache/internal/core/prefetch"
)

func TestKVStore_GetMissingNamespace(t *testing.T) {
	s := NewKVStore()

	mapping, err := s.Get(context.Background(), "didHandleCache")
	require.NoError(t, err)
	assert.Nil(t, mapping)
}

func TestKVStore_SetThenGet(t *testing.T) {
	s := NewKVStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "didHandleCache", prefetch.Mapping{"did:plc:abc": "alice.example"}))

	mapping, err := s.Get(ctx, "didHandleCache")
	require.NoError(t, err)
	assert.Equal(t, prefetch.Mapping{"did:plc:abc": "alice.example"}, mapping)

	other, err := s.Get(ctx, "otherNamespace")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestKVStore_CopiesOnReadAndWrite(t *testing.T) {
	s := NewKVStore()
	ctx := context.Background()

	written := prefetch.Mapping{"did:plc:abc": "alice.example"}
	require.NoError(t, s.Set(ctx, "ns", written))
	written["did:plc:def"] = "bob.example"

	read, err := s.Get(ctx, "ns")
	require.NoError(t, err)
	read["did:plc:ghi"] = "carol.example"

	again, err := s.Get(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, prefetch.Mapping{"did:plc:abc": "alice.example"}, again)
}

func TestKVStore_CancelledContext(t *testing.T) {
	s := NewKVStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "ns")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, "ns", prefetch.Mapping{}), context.Canceled)
}

func TestKVStore_ConcurrentAccess(t *testing.T) {
	s := NewKVStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, "ns", prefetch.Mapping{"did:plc:abc": "alice.example"})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Get(ctx, "ns")
		}()
	}
	wg.Wait()

	mapping, err := s.Get(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, "alice.example", mapping["did:plc:abc"])
}
