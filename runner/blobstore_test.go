package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/cp"
	"github.com/stretchr/testify/require"
)

// fixturePreimages holds golden preimage files used by the blob store
// integration tests; staged into a scratch directory per test, the same
// cespare/cp.CopyAll pattern the teacher's cmd/gprobe tests use.
var fixturePreimages = "testdata/preimages"

func stageFixtures(t *testing.T) string {
	t.Helper()
	if _, err := os.Stat(fixturePreimages); os.IsNotExist(err) {
		t.Skip("no fixture preimages checked in")
	}
	dir := t.TempDir()
	require.NoError(t, cp.CopyAll(dir, fixturePreimages))
	return dir
}

func TestBlobStoreLoadsFixtureCorpus(t *testing.T) {
	dir := stageFixtures(t)

	store, err := OpenBlobStore(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer store.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		var hash [32]byte
		copy(hash[:], e.Name())
		require.NoError(t, store.Put(hash, data))
	}
}

func TestBlobStorePutGet(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenBlobStore(filepath.Join(dir, "db"))
	require.NoError(t, err)
	defer store.Close()

	var hash [32]byte
	hash[0] = 0xAB
	pre := []byte{0x00, 0x04, 0x00}

	require.NoError(t, store.Put(hash, pre))

	got, err := store.Get(hash)
	require.NoError(t, err)
	require.Equal(t, pre, got)
}
