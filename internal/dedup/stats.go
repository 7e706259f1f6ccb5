package dedup

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Stats accumulates the cumulative counters for a run. It is passed by
// reference and mutated in place; since the engine is single-threaded, no
// locking is required.
type Stats struct {
	FilesCopied     uint64
	FilesHardLinked uint64
	FilesSymlinked  uint64
	FilesSkipped    uint64

	BytesCopied     uint64
	BytesHardLinked uint64
	BytesSymlinked  uint64
}

// AddCopied records a plain copy of n bytes.
func (s *Stats) AddCopied(n uint64) {
	s.FilesCopied++
	s.BytesCopied += n
}

// AddHardLinked records a hard-link placement of n bytes.
func (s *Stats) AddHardLinked(n uint64) {
	s.FilesHardLinked++
	s.BytesHardLinked += n
}

// AddSymlinked records a symbolic-link placement of n bytes.
func (s *Stats) AddSymlinked(n uint64) {
	s.FilesSymlinked++
	s.BytesSymlinked += n
}

// AddSkipped records a file skipped due to overwrite policy.
func (s *Stats) AddSkipped() {
	s.FilesSkipped++
}

// TotalFiles returns the count of every regular file the dispatcher reached
// a terminal decision for: copied, linked (either kind), or skipped.
func (s *Stats) TotalFiles() uint64 {
	return s.FilesCopied + s.FilesHardLinked + s.FilesSymlinked + s.FilesSkipped
}

// TotalBytes returns the sum of bytes copied and linked (skipped files
// contribute no bytes).
func (s *Stats) TotalBytes() uint64 {
	return s.BytesCopied + s.BytesHardLinked + s.BytesSymlinked
}

func formatBytes(n uint64, humanReadable bool) string {
	if humanReadable {
		return humanize.Bytes(n)
	}
	return fmt.Sprintf("%d", n)
}

// Summary renders a multi-line statistics report, formatting byte counts in
// SI-style units when humanReadable is set.
func (s *Stats) Summary(humanReadable bool) string {
	return fmt.Sprintf(
		"Statistics:\n"+
			"  Files copied:      %d (%s)\n"+
			"  Files hard linked: %d (%s)\n"+
			"  Files soft linked: %d (%s)\n"+
			"  Files skipped:     %d\n"+
			"  Total files:       %d (%s)\n",
		s.FilesCopied, formatBytes(s.BytesCopied, humanReadable),
		s.FilesHardLinked, formatBytes(s.BytesHardLinked, humanReadable),
		s.FilesSymlinked, formatBytes(s.BytesSymlinked, humanReadable),
		s.FilesSkipped,
		s.TotalFiles(), formatBytes(s.TotalBytes(), humanReadable),
	)
}

// StatusLine renders a single-line summary suitable for a redrawn status
// line.
func (s *Stats) StatusLine(humanReadable bool) string {
	return fmt.Sprintf(
		"Files: %d copied, %d linked, %d skipped | Total: %d files (%s)",
		s.FilesCopied, s.FilesHardLinked+s.FilesSymlinked, s.FilesSkipped,
		s.TotalFiles(), formatBytes(s.TotalBytes(), humanReadable),
	)
}
