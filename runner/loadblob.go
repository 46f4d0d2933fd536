package runner

import (
	"crypto/sha256"
	"os"

	"github.com/edsrzf/mmap-go"
)

// LoadBlobFile memory-maps a program preimage file instead of reading it
// fully into a []byte, returning the mapped bytes, their SHA-256 hash, and a
// function that unmaps and closes the file. No CLI subcommand calls it.
// Grounded on edsrzf/mmap-go, present in the teacher's dependency stack.
func LoadBlobFile(path string) (data []byte, hash [32]byte, closeFn func() error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, hash, nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, hash, nil, err
	}
	hash = sha256.Sum256(m)
	closeFn = func() error {
		if err := m.Unmap(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return []byte(m), hash, closeFn, nil
}
