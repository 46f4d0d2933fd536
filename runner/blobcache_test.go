package runner

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

// trivialBlob is the smallest valid program_blob: an empty outer header
// (ro_len, rw_len, stack_size, heap_zero_pages all 0) wrapping the smallest
// valid §4.1 preimage (jump_table_length=0, element_size=4, code_length=0).
func trivialBlob() []byte {
	return []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x04, 0x00}
}

func TestBlobCacheDecodesOnMiss(t *testing.T) {
	cache, err := NewBlobCache(4)
	require.NoError(t, err)

	blob := trivialBlob()
	hash := sha256.Sum256(blob)

	db, err := cache.GetOrDecode(hash, blob)
	require.NoError(t, err)
	require.NotNil(t, db)
	require.Equal(t, 1, cache.Len())
}

func TestBlobCacheHitsOnSecondCall(t *testing.T) {
	cache, err := NewBlobCache(4)
	require.NoError(t, err)

	blob := trivialBlob()
	hash := sha256.Sum256(blob)

	first, err := cache.GetOrDecode(hash, blob)
	require.NoError(t, err)
	second, err := cache.GetOrDecode(hash, nil)
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestBlobCacheDedupsConcurrentMisses(t *testing.T) {
	cache, err := NewBlobCache(4)
	require.NoError(t, err)

	blob := trivialBlob()
	hash := sha256.Sum256(blob)

	const concurrency = 8
	results := make(chan any, concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			db, err := cache.GetOrDecode(hash, blob)
			require.NoError(t, err)
			results <- db
		}()
	}
	var first any
	for i := 0; i < concurrency; i++ {
		got := <-results
		if first == nil {
			first = got
		} else {
			require.Same(t, first, got)
		}
	}
	require.Equal(t, 1, cache.Len())
}
