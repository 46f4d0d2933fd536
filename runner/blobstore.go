package runner

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/jamvm/pvm/internal/plog"
)

// BlobStore persists program blobs keyed by hash. The CLI's `serve`
// subcommand writes each blob through to it on first use (see
// Session.InvokeCached); serve still reads every requested blob from the
// filesystem, and nothing reads the store back to warm the decode cache.
// Grounded on goleveldb, the teacher's canonical key-value store.
type BlobStore struct {
	db  *leveldb.DB
	log *plog.Logger
}

// OpenBlobStore opens (or creates) a LevelDB database at path.
func OpenBlobStore(path string) (*BlobStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &BlobStore{db: db, log: plog.Root().New("component", "blobstore")}, nil
}

// Put stores a preimage under its hash.
func (s *BlobStore) Put(hash [32]byte, preimage []byte) error {
	if err := s.db.Put(hash[:], preimage, nil); err != nil {
		s.log.Error("put failed", "hash", hash, "err", err)
		return err
	}
	return nil
}

// Get retrieves a preimage by hash. It returns leveldb.ErrNotFound if
// absent.
func (s *BlobStore) Get(hash [32]byte) ([]byte, error) {
	return s.db.Get(hash[:], nil)
}

// Close releases the underlying database handle.
func (s *BlobStore) Close() error { return s.db.Close() }
