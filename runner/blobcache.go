package runner

import (
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/jamvm/pvm/pvm"
)

// BlobCache caches decoded program blobs by content hash so the CLI does
// not re-run the decoder when replaying the same blob across many
// invocations (e.g. a gas-limit sweep, or the `serve` subcommand handling
// concurrent requests for the same program). Grounded on hashicorp/golang-lru,
// present in the teacher's dependency stack for exactly this shape of cache.
type BlobCache struct {
	lru   *lru.Cache
	group singleflight.Group
}

// NewBlobCache builds a cache holding at most entries decoded blobs.
func NewBlobCache(entries int) (*BlobCache, error) {
	c, err := lru.New(entries)
	if err != nil {
		return nil, err
	}
	return &BlobCache{lru: c}, nil
}

// GetOrDecode returns the cached DecodedBlob for hash, decoding blob and
// populating the cache on a miss. Concurrent misses for the same hash are
// collapsed into a single decode via singleflight, so a burst of requests
// for a blob the cache has not yet seen does not each pay the decode cost.
func (c *BlobCache) GetOrDecode(hash [32]byte, blob []byte) (*pvm.DecodedBlob, error) {
	if v, ok := c.lru.Get(hash); ok {
		return v.(*pvm.DecodedBlob), nil
	}
	v, err, _ := c.group.Do(string(hash[:]), func() (any, error) {
		if v, ok := c.lru.Get(hash); ok {
			return v.(*pvm.DecodedBlob), nil
		}
		db, err := pvm.DecodeProgramBlob(blob)
		if err != nil {
			return nil, err
		}
		c.lru.Add(hash, db)
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pvm.DecodedBlob), nil
}

// Len reports the number of entries currently cached.
func (c *BlobCache) Len() int { return c.lru.Len() }
