package dedup

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// RefEntry describes one regular file discovered in a reference tree. Its
// Digest/HasDigest pair is mutated in place by the match engine as entries
// are lazily hashed; the Size/NeedsDigest pair is fixed once the index is
// built.
type RefEntry struct {
	// Path is usable directly for link, symlink, or open.
	Path string
	// Size is the entry's byte count.
	Size int64
	// NeedsDigest is true iff at least one other entry in the index shares
	// Size. Size-unique entries never carry a digest.
	NeedsDigest bool
	// Digest is the entry's MD5 digest. Valid only when HasDigest is true.
	Digest []byte
	// HasDigest is true once Digest has been lazily computed.
	HasDigest bool
}

// RefIndex is the size-sorted catalog built by scanning one or more
// reference trees. It is built once before any copy begins and is
// read-mostly thereafter; only Digest/HasDigest mutate during the walk.
type RefIndex struct {
	entries []*RefEntry
}

// Len returns the number of cataloged reference entries.
func (idx *RefIndex) Len() int {
	return len(idx.entries)
}

// BuildRefIndex scans each reference root in order and returns the resulting
// catalog, sorted by size ascending. Directories are descended
// unconditionally, symlinks are skipped, and other special files are
// skipped. A root that cannot be opened at all contributes zero entries; a
// warning is logged and the build continues with the remaining roots.
// verbose controls how much tracing is emitted: -v reports a running scan
// count, -vvv adds a line per cataloged entry.
func BuildRefIndex(refDirs []string, verbose int, status StatusPrinter) (*RefIndex, error) {
	idx := &RefIndex{}
	total := 0

	for _, root := range refDirs {
		if _, err := os.Lstat(root); err != nil {
			log.Printf("warning: unreadable reference root %s: %v", root, err)
			continue
		}
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				log.Printf("warning: skipping %s: %v", path, err)
				return nil
			}
			name := d.Name()
			if name == "." || name == ".." {
				return nil
			}
			if d.Type()&os.ModeSymlink != 0 {
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				log.Printf("warning: cannot stat %s: %v", path, err)
				return nil
			}
			idx.entries = append(idx.entries, &RefEntry{Path: path, Size: info.Size()})
			total++
			if verbose >= 3 {
				log.Printf("adding reference file: %s (size: %d bytes)", path, info.Size())
			}
			if verbose >= 1 && status != nil {
				status.Print("scanned " + strconv.Itoa(total) + " reference files in " + root)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "unable to walk reference root %s", root)
		}
	}

	idx.finalize()
	return idx, nil
}

// finalize sorts the catalog by size and marks which entries share a size
// with a neighbor.
func (idx *RefIndex) finalize() {
	sort.SliceStable(idx.entries, func(i, j int) bool {
		return idx.entries[i].Size < idx.entries[j].Size
	})
	n := len(idx.entries)
	for i, e := range idx.entries {
		e.NeedsDigest = (i > 0 && idx.entries[i-1].Size == e.Size) ||
			(i < n-1 && idx.entries[i+1].Size == e.Size)
	}
}

// Candidates returns every entry whose size equals the given size, in
// catalog order, via a binary search for the leftmost match followed by a
// linear scan while the size holds.
func (idx *RefIndex) Candidates(size int64) []*RefEntry {
	n := len(idx.entries)
	left := sort.Search(n, func(i int) bool {
		return idx.entries[i].Size >= size
	})
	if left == n || idx.entries[left].Size != size {
		return nil
	}
	right := left
	for right < n && idx.entries[right].Size == size {
		right++
	}
	return idx.entries[left:right]
}
