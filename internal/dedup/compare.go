package dedup

import (
	"bytes"
	"crypto/md5"
	"hash"
	"io"
	"os"

	"github.com/pkg/errors"
)

// compareChunkSize is the size of the read buffer used by the byte
// comparator, kept between 4 KiB and 64 KiB.
const compareChunkSize = 64 * 1024

// Equal streams the files at a and b in fixed-size chunks and reports
// whether their contents are byte-identical. It returns false (without an
// error) if either file cannot be opened: a file that cannot be opened
// cannot be matched. A genuine mid-stream read failure is returned as an
// error since it leaves the comparison result unreliable.
func Equal(a, b string) (bool, error) {
	fa, err := os.Open(a)
	if err != nil {
		return false, nil
	}
	defer fa.Close()

	fb, err := os.Open(b)
	if err != nil {
		return false, nil
	}
	defer fb.Close()

	return compareStreams(fa, fb, nil, nil)
}

// compareAndDigest reads the files at a and b in lockstep, comparing their
// contents and optionally accumulating an MD5 digest for either stream in
// the same pass. It lets the first hash computation of a reference entry
// double as the authoritative byte comparison against the current source
// file, so that entry is never read twice for the same candidate evaluation.
//
// digestA and digestB are nil unless the corresponding want flag is set.
func compareAndDigest(a, b string, wantDigestA, wantDigestB bool) (equal bool, digestA, digestB []byte, err error) {
	fa, errA := os.Open(a)
	fb, errB := os.Open(b)
	defer func() {
		if fa != nil {
			fa.Close()
		}
		if fb != nil {
			fb.Close()
		}
	}()
	if errA != nil || errB != nil {
		return false, nil, nil, nil
	}

	var ha, hb hash.Hash
	if wantDigestA {
		ha = md5.New()
	}
	if wantDigestB {
		hb = md5.New()
	}

	equal, err = compareStreams(fa, fb, ha, hb)
	if err != nil {
		return false, nil, nil, err
	}
	if ha != nil {
		digestA = ha.Sum(nil)
	}
	if hb != nil {
		digestB = hb.Sum(nil)
	}
	return equal, digestA, digestB, nil
}

// compareStreams performs the actual chunked read-and-compare, feeding each
// stream into its optional hash.Hash as it goes. Both readers are consumed
// to completion (or until a difference is found) so that a requested digest
// is always fully accumulated, even once inequality is known, as long as no
// read error intervenes. This keeps digest computation and byte comparison
// confined to a single pass over each file.
func compareStreams(ra, rb io.Reader, ha, hb hash.Hash) (bool, error) {
	bufA := make([]byte, compareChunkSize)
	bufB := make([]byte, compareChunkSize)
	equal := true

	for {
		na, errA := io.ReadFull(ra, bufA)
		if errA != nil && errA != io.EOF && errA != io.ErrUnexpectedEOF {
			return false, errors.Wrap(errA, "error reading first file")
		}
		nb, errB := io.ReadFull(rb, bufB)
		if errB != nil && errB != io.EOF && errB != io.ErrUnexpectedEOF {
			return false, errors.Wrap(errB, "error reading second file")
		}

		if ha != nil && na > 0 {
			ha.Write(bufA[:na])
		}
		if hb != nil && nb > 0 {
			hb.Write(bufB[:nb])
		}

		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			equal = false
			// If neither digest is wanted we can stop as soon as a
			// difference is found; otherwise keep draining both streams so
			// the requested digests remain complete.
			if ha == nil && hb == nil {
				return false, nil
			}
		}

		atEOFA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		atEOFB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if atEOFA || atEOFB {
			if atEOFA != atEOFB {
				equal = false
			}
			if ha == nil && hb == nil {
				return equal, nil
			}
			// Drain whichever stream has not yet reached EOF so its digest
			// is complete.
			if !atEOFA && ha != nil {
				if _, err := io.Copy(ha, ra); err != nil {
					return false, errors.Wrap(err, "error reading first file")
				}
			}
			if !atEOFB && hb != nil {
				if _, err := io.Copy(hb, rb); err != nil {
					return false, errors.Wrap(err, "error reading second file")
				}
			}
			return equal, nil
		}
	}
}
