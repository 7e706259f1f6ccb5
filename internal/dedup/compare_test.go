package dedup

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestEqualIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.txt", []byte("hello\n"))
	b := writeTempFile(t, dir, "b.txt", []byte("hello\n"))

	equal, err := Equal(a, b)
	if err != nil {
		t.Fatalf("Equal returned error: %v", err)
	}
	if !equal {
		t.Error("expected identical files to compare equal")
	}
}

func TestEqualDifferentContent(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.txt", []byte("AAAA"))
	b := writeTempFile(t, dir, "b.txt", []byte("BBBB"))

	equal, err := Equal(a, b)
	if err != nil {
		t.Fatalf("Equal returned error: %v", err)
	}
	if equal {
		t.Error("expected different content to compare unequal")
	}
}

func TestEqualDifferentLength(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.txt", []byte("short"))
	b := writeTempFile(t, dir, "b.txt", []byte("a much longer string"))

	equal, err := Equal(a, b)
	if err != nil {
		t.Fatalf("Equal returned error: %v", err)
	}
	if equal {
		t.Error("expected different-length content to compare unequal")
	}
}

func TestEqualEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.txt", nil)
	b := writeTempFile(t, dir, "b.txt", nil)

	equal, err := Equal(a, b)
	if err != nil {
		t.Fatalf("Equal returned error: %v", err)
	}
	if !equal {
		t.Error("expected two empty files to compare equal")
	}
}

func TestEqualMissingFile(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.txt", []byte("content"))
	missing := filepath.Join(dir, "does-not-exist")

	equal, err := Equal(a, missing)
	if err != nil {
		t.Fatalf("Equal should not error on an unopenable file, got: %v", err)
	}
	if equal {
		t.Error("a file that cannot be opened must never compare equal")
	}
}

func TestCompareAndDigestProducesBothDigestsAndComparison(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.txt", []byte("payload"))
	b := writeTempFile(t, dir, "b.txt", []byte("payload"))

	equal, digestA, digestB, err := compareAndDigest(a, b, true, true)
	if err != nil {
		t.Fatalf("compareAndDigest returned error: %v", err)
	}
	if !equal {
		t.Error("expected identical content to compare equal")
	}
	if len(digestA) != digestSize || len(digestB) != digestSize {
		t.Fatalf("expected %d-byte digests, got %d and %d", digestSize, len(digestA), len(digestB))
	}
	if !bytes.Equal(digestA, digestB) {
		t.Error("expected identical content to produce identical digests")
	}

	expected, err := Digest(a)
	if err != nil {
		t.Fatalf("Digest returned error: %v", err)
	}
	if !bytes.Equal(digestA, expected) {
		t.Errorf("compareAndDigest's digest (%x) does not match independent hashing (%x)", digestA, expected)
	}
}

func TestCompareAndDigestDifferingContentStillDigests(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.txt", []byte("AAAA"))
	b := writeTempFile(t, dir, "b.txt", []byte("BBBB"))

	equal, digestA, digestB, err := compareAndDigest(a, b, true, true)
	if err != nil {
		t.Fatalf("compareAndDigest returned error: %v", err)
	}
	if equal {
		t.Error("expected different content to compare unequal")
	}
	if bytes.Equal(digestA, digestB) {
		t.Error("expected different content to produce different digests")
	}
}

func TestCompareAndDigestNoDigestsWanted(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.txt", []byte("same"))
	b := writeTempFile(t, dir, "b.txt", []byte("same"))

	equal, digestA, digestB, err := compareAndDigest(a, b, false, false)
	if err != nil {
		t.Fatalf("compareAndDigest returned error: %v", err)
	}
	if !equal {
		t.Error("expected identical content to compare equal")
	}
	if digestA != nil || digestB != nil {
		t.Error("expected nil digests when neither was requested")
	}
}

func TestCompareAndDigestMissingFile(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.txt", []byte("content"))
	missing := filepath.Join(dir, "does-not-exist")

	equal, digestA, digestB, err := compareAndDigest(a, missing, true, true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if equal || digestA != nil || digestB != nil {
		t.Error("expected a failed open to report no match and no digests")
	}
}
