package dedup

import (
	"crypto/md5"
	"hash"
	"io"
	"os"

	"github.com/pkg/errors"
)

// digestSize is the length in bytes of the MD5 digest used as the match
// engine's cheap pre-filter. It is never exchanged with an external system
// and a byte comparison always has the final word, so MD5's cryptographic
// weaknesses are immaterial here.
const digestSize = md5.Size

// hashBufferSize is the chunk size used when streaming a file into a
// hash.Hash.
const hashBufferSize = 32 * 1024

// Hasher streams a file and produces its MD5 digest. It can be reused across
// files via Reset.
type Hasher struct {
	h      hash.Hash
	buffer []byte
}

// NewHasher constructs a ready-to-use Hasher.
func NewHasher() *Hasher {
	return &Hasher{h: md5.New(), buffer: make([]byte, hashBufferSize)}
}

// Reset clears any accumulated state so the Hasher can be reused.
func (h *Hasher) Reset() {
	h.h.Reset()
}

// Update feeds a chunk of data into the running digest.
func (h *Hasher) Update(chunk []byte) {
	h.h.Write(chunk)
}

// Finalize returns the accumulated digest. The Hasher must be Reset before
// reuse.
func (h *Hasher) Finalize() []byte {
	return h.h.Sum(nil)
}

// Digest streams the file at path and returns its MD5 digest.
func (h *Hasher) Digest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open file for hashing")
	}
	defer f.Close()

	h.Reset()
	if _, err := io.CopyBuffer(h.h, f, h.buffer); err != nil {
		return nil, errors.Wrap(err, "unable to hash file contents")
	}
	return h.Finalize(), nil
}

// Digest is a package-level convenience wrapper around a throwaway Hasher,
// used where no Hasher is already in scope to reuse.
func Digest(path string) ([]byte, error) {
	return NewHasher().Digest(path)
}
