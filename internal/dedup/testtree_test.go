package dedup

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// syntheticTreeCharset is the character pool used for generated file
// content.
const syntheticTreeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789 \n\t.,!?-_"

// syntheticTreeSpec parameterizes a generated test tree: numFiles regular
// files spread across a directory tree of numDirs nested subdirectory chains,
// duplicatePercent of which are exact copies of earlier "reference" content
// rather than fresh random bytes.
type syntheticTreeSpec struct {
	numFiles         int
	numDirs          int
	duplicatePercent int
	sizeP50          int
	sizeP95          int
	sizeP100         int
}

// syntheticTree is the result of generating a tree: its root, the full list
// of regular file paths created, and the subset of those paths whose
// content was duplicated from another entry (rather than unique).
type syntheticTree struct {
	root        string
	files       []string
	duplicates  map[string]bool
	fileContent map[string][]byte
}

// generateFileSize reproduces a Box-Muller percentile-based size
// distribution: p50 and p95 anchor a normal distribution's mean and
// standard deviation, clamped to [p50*0.1, p100].
func generateFileSize(rng *rand.Rand, p50, p95, p100 int) int {
	u := rng.Float64()*0.99 + 0.005
	v := rng.Float64()*0.99 + 0.005
	mag := math.Sqrt(-2.0 * math.Log(u))
	normal := mag * math.Sin(2.0*math.Pi*v)

	mu := float64(p50)
	sigma := float64(p95-p50) / 1.645
	size := mu + sigma*math.Abs(normal)

	if min := float64(p50) * 0.1; size < min {
		size = min
	}
	if size > float64(p100) {
		size = float64(p100)
	}
	return int(size)
}

// generateRandomContent fills size bytes drawn from syntheticTreeCharset.
func generateRandomContent(rng *rand.Rand, size int) []byte {
	content := make([]byte, size)
	for i := range content {
		content[i] = syntheticTreeCharset[rng.Intn(len(syntheticTreeCharset))]
	}
	return content
}

// generateRandomFilename mirrors the original generator's
// "<prefix>_%08x_%04x.txt" pattern.
func generateRandomFilename(rng *rand.Rand, prefix string) string {
	return fmt.Sprintf("%s_%08x_%04x.txt", prefix, rng.Uint32(), rng.Intn(10000))
}

// buildDirectoryTree creates numDirs chains of nested subdirectories under
// root, each chain of random depth 1 to 3 (so between numDirs and 3*numDirs
// directories in all), and returns every directory path created, including
// root itself.
func buildDirectoryTree(t *testing.T, rng *rand.Rand, root string, numDirs int) []string {
	t.Helper()
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("MkdirAll %s: %v", root, err)
	}
	dirs := []string{root}

	for i := 0; i < numDirs; i++ {
		depth := rng.Intn(3) + 1
		path := root
		for d := 0; d < depth; d++ {
			path = filepath.Join(path, fmt.Sprintf("dir_%d_%d", i, d))
			if err := os.MkdirAll(path, 0o755); err != nil {
				t.Fatalf("MkdirAll %s: %v", path, err)
			}
			dirs = append(dirs, path)
		}
	}
	return dirs
}

// generateSyntheticTree deterministically builds a directory tree of
// regular files under root, seeded so the same seed always reproduces the
// same shape and content. A duplicatePercent share of files are exact
// copies of another file's content instead of fresh random bytes.
func generateSyntheticTree(t *testing.T, root string, seed int64, spec syntheticTreeSpec) *syntheticTree {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	dirs := buildDirectoryTree(t, rng, root, spec.numDirs)

	tree := &syntheticTree{
		root:        root,
		duplicates:  make(map[string]bool),
		fileContent: make(map[string][]byte),
	}

	numDuplicates := (spec.numFiles * spec.duplicatePercent) / 100

	for i := 0; i < spec.numFiles; i++ {
		dir := dirs[rng.Intn(len(dirs))]
		name := generateRandomFilename(rng, "src")
		path := filepath.Join(dir, name)

		var content []byte
		if i < numDuplicates && len(tree.files) > 0 {
			source := tree.files[rng.Intn(len(tree.files))]
			content = tree.fileContent[source]
			tree.duplicates[path] = true
		} else {
			size := generateFileSize(rng, spec.sizeP50, spec.sizeP95, spec.sizeP100)
			content = generateRandomContent(rng, size)
		}

		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatalf("WriteFile %s: %v", path, err)
		}
		tree.files = append(tree.files, path)
		tree.fileContent[path] = content
	}

	return tree
}

// TestGenerateSyntheticTreeIsReproducible confirms the same seed produces
// an identical tree shape and file content across two independent runs.
func TestGenerateSyntheticTreeIsReproducible(t *testing.T) {
	spec := syntheticTreeSpec{numFiles: 40, numDirs: 8, duplicatePercent: 25, sizeP50: 512, sizeP95: 4096, sizeP100: 8192}

	rootA := filepath.Join(t.TempDir(), "tree")
	rootB := filepath.Join(t.TempDir(), "tree")
	treeA := generateSyntheticTree(t, rootA, 42, spec)
	treeB := generateSyntheticTree(t, rootB, 42, spec)

	if len(treeA.files) != len(treeB.files) {
		t.Fatalf("file count mismatch: %d vs %d", len(treeA.files), len(treeB.files))
	}

	for i, pathA := range treeA.files {
		pathB := treeB.files[i]
		relA, _ := filepath.Rel(rootA, pathA)
		relB, _ := filepath.Rel(rootB, pathB)
		if relA != relB {
			t.Fatalf("file %d path mismatch: %q vs %q", i, relA, relB)
		}
		if string(treeA.fileContent[pathA]) != string(treeB.fileContent[pathB]) {
			t.Fatalf("file %d content mismatch for %q", i, relA)
		}
	}
}

// TestWalkerOverSyntheticTreeLinksAllDuplicates generates a synthetic
// source tree with a known duplicate share, indexes each duplicated file's
// content as a reference entry, and confirms the full walk/match/dispatch
// pipeline reaches a terminal decision for every file with no losses and
// hard-links every duplicate.
func TestWalkerOverSyntheticTreeLinksAllDuplicates(t *testing.T) {
	srcRoot := filepath.Join(t.TempDir(), "src")
	refRoot := filepath.Join(t.TempDir(), "ref")
	destDir := t.TempDir()

	spec := syntheticTreeSpec{numFiles: 60, numDirs: 10, duplicatePercent: 40, sizeP50: 256, sizeP95: 2048, sizeP100: 4096}
	tree := generateSyntheticTree(t, srcRoot, 7, spec)

	if err := os.MkdirAll(refRoot, 0o755); err != nil {
		t.Fatalf("MkdirAll %s: %v", refRoot, err)
	}
	seenContent := make(map[string]bool)
	refIndex := 0
	for _, path := range tree.files {
		if !tree.duplicates[path] {
			continue
		}
		content := tree.fileContent[path]
		if seenContent[string(content)] {
			continue
		}
		seenContent[string(content)] = true
		refPath := filepath.Join(refRoot, fmt.Sprintf("ref_%04d.txt", refIndex))
		refIndex++
		if err := os.WriteFile(refPath, content, 0o644); err != nil {
			t.Fatalf("WriteFile %s: %v", refPath, err)
		}
	}

	opts := &Options{
		Sources:     []string{srcRoot},
		Destination: filepath.Join(destDir, "out"),
		RefDirs:     []string{refRoot},
		LinkMode:    LinkModeHard,
		Recursive:   true,
	}
	idx, err := BuildRefIndex(opts.RefDirs, 0, nil)
	if err != nil {
		t.Fatalf("BuildRefIndex: %v", err)
	}
	engine := NewEngine(idx, 0)
	stats := &Stats{}
	dispatcher := NewDispatcher(opts, stats, nil, nil)
	walker := NewWalker(opts, engine, dispatcher)

	if err := walker.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if walker.Failed() {
		t.Error("did not expect any per-entry failures")
	}

	if got, want := stats.TotalFiles(), uint64(len(tree.files)); got != want {
		t.Errorf("TotalFiles = %d, want %d (no file should be lost)", got, want)
	}
	if got, want := stats.FilesHardLinked, uint64(len(tree.duplicates)); got < want {
		t.Errorf("FilesHardLinked = %d, want at least %d (every duplicate's content is in the reference tree)", got, want)
	}
}
