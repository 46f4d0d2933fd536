package runner

import (
	"github.com/google/uuid"

	"github.com/jamvm/pvm/pvm"
)

// Session carries a UUID identifying one CLI session (the `serve`
// subcommand attaches it to its log context). The UUID is generated once per
// session, not per invocation or instruction, and is not recorded in trace
// records.
type Session struct {
	ID    uuid.UUID
	Cache *BlobCache
	Store *BlobStore
}

// NewSession creates a session with a fresh random UUID and the given
// cache/store (either may be nil).
func NewSession(cache *BlobCache, store *BlobStore) *Session {
	return &Session{ID: uuid.New(), Cache: cache, Store: store}
}

// Invoke runs one program through pvm.Invoke directly, bypassing the
// decode cache. Used when a caller has no stable content hash to key on.
func (s *Session) Invoke(programBlob []byte, initialPC, gasLimit uint64, args []byte, ctx any, mutator pvm.ContextMutator, sink pvm.TraceSink) pvm.InvokeResult {
	return pvm.Invoke(programBlob, initialPC, gasLimit, args, ctx, mutator, sink)
}

// InvokeCached runs one program through the session's decode cache: a hit
// skips DecodeProgramBlob entirely, and a miss decodes once and populates
// both the cache and (if present) the persistent blob store. This is the
// path the `serve` subcommand uses for repeated invocations of the same
// program, which is the whole point of carrying a cache and a store.
func (s *Session) InvokeCached(hash [32]byte, programBlob []byte, initialPC, gasLimit uint64, args []byte, ctx any, mutator pvm.ContextMutator, sink pvm.TraceSink) (pvm.InvokeResult, error) {
	if s.Cache == nil {
		return s.Invoke(programBlob, initialPC, gasLimit, args, ctx, mutator, sink), nil
	}
	db, err := s.Cache.GetOrDecode(hash, programBlob)
	if err != nil {
		return pvm.InvokeResult{}, err
	}
	if s.Store != nil {
		if _, err := s.Store.Get(hash); err != nil {
			// Not yet persisted (or a transient read error): best-effort
			// write-through of the blob. Nothing reads it back into the
			// cache; a restarted serve process decodes each blob afresh.
			_ = s.Store.Put(hash, programBlob)
		}
	}
	return pvm.InvokeDecoded(db, initialPC, gasLimit, args, ctx, mutator, sink), nil
}
