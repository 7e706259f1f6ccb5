package dedup

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/ldebyl/cpdd/internal/cli"
)

// SrcProbe is the transient descriptor of the current source file being
// matched. Its digest is reused across every candidate comparison for that
// one source, and computed at most once.
type SrcProbe struct {
	Path      string
	Size      int64
	digest    []byte
	hasDigest bool
}

// Engine is the match engine (C4): given a source file, it finds a reference
// entry whose content is bit-identical.
type Engine struct {
	Index   *RefIndex
	Verbose int
}

// NewEngine constructs a match engine over the given reference index.
func NewEngine(index *RefIndex, verbose int) *Engine {
	return &Engine{Index: index, Verbose: verbose}
}

// FindMatch returns the first reference entry in catalog order whose
// content is bit-identical to the file at srcPath, or nil if none matches.
// The byte comparison is always the final authority; digest agreement alone
// never constitutes a match.
func (e *Engine) FindMatch(srcPath string) (*RefEntry, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		cli.Warning(fmt.Sprintf("cannot stat source file %s: %v", srcPath, err))
		return nil, nil
	}

	probe := &SrcProbe{Path: srcPath, Size: info.Size()}
	candidates := e.Index.Candidates(probe.Size)
	if len(candidates) == 0 {
		return nil, nil
	}

	for _, ref := range candidates {
		matched, err := e.tryCandidate(probe, ref)
		if err != nil {
			cli.Warning(fmt.Sprintf("comparing %s against reference %s: %v", srcPath, ref.Path, err))
			continue
		}
		if matched {
			if e.Verbose >= 1 {
				log.Printf("match found: %s matches %s", srcPath, ref.Path)
			}
			return ref, nil
		}
	}
	return nil, nil
}

// tryCandidate applies the size/digest/byte-compare decision table for a
// single candidate.
func (e *Engine) tryCandidate(probe *SrcProbe, ref *RefEntry) (bool, error) {
	if !ref.NeedsDigest {
		// Size-unique in the reference: no hashing is ever useful for this
		// entry, so go straight to the byte comparator.
		return Equal(probe.Path, ref.Path)
	}

	if !ref.HasDigest {
		// First time this reference entry has been encountered by any
		// source file in the run. Compare and (if needed) digest both
		// files in the same pass, so this entry is read exactly once for
		// the purpose of computing its digest, and the comparison result
		// falls out of the same read rather than requiring a second one.
		wantSrcDigest := !probe.hasDigest
		equal, digestSrc, digestRef, err := compareAndDigest(probe.Path, ref.Path, wantSrcDigest, true)
		if err != nil {
			return false, err
		}
		if digestRef == nil {
			// One of the files could not be opened, so nothing was read and
			// no digest is cached for either side.
			return false, nil
		}
		ref.Digest = digestRef
		ref.HasDigest = true
		if wantSrcDigest {
			probe.digest = digestSrc
			probe.hasDigest = true
		}
		if e.Verbose >= 1 && !equal && bytes.Equal(probe.digest, ref.Digest) {
			log.Printf("MD5 matched but content differs: %s and %s", probe.Path, ref.Path)
		}
		return equal, nil
	}

	// The reference entry already carries a finalized digest from an
	// earlier source file's probe. Compute the source digest once (if not
	// already cached for this source) and use digest disagreement to skip
	// this candidate without touching the reference file again.
	if !probe.hasDigest {
		digest, err := Digest(probe.Path)
		if err != nil {
			return false, err
		}
		probe.digest = digest
		probe.hasDigest = true
	}
	if !bytes.Equal(probe.digest, ref.Digest) {
		return false, nil
	}

	equal, err := Equal(probe.Path, ref.Path)
	if err != nil {
		return false, err
	}
	if e.Verbose >= 1 && !equal {
		log.Printf("MD5 matched but content differs: %s and %s", probe.Path, ref.Path)
	}
	return equal, nil
}
