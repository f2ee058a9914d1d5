package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/frankiebaffa/arcana/pkg/fsutil"
)

func TestWriteFileCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "out.txt")
	if err := fsutil.WriteFile(path, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestCopyDirRecursive(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "a.txt"), []byte("A"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "b.txt"), []byte("B"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "copy")
	if err := fsutil.CopyDir(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(dst, "sub", "b.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "B" {
		t.Errorf("got %q, want %q", got, "B")
	}
}

func TestListDirAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.md", "b.txt", "c.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	entries, err := fsutil.ListDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Fatalf("ListDir returned %d entries, want 4", len(entries))
	}

	files := fsutil.OnlyFiles(entries)
	if len(files) != 3 {
		t.Errorf("OnlyFiles returned %d, want 3", len(files))
	}

	md := fsutil.FilterExt(files, []string{"md"})
	if len(md) != 2 {
		t.Errorf("FilterExt(md) returned %d, want 2", len(md))
	}
}

func TestReverse(t *testing.T) {
	entries := []fsutil.Entry{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	rev := fsutil.Reverse(entries)
	if rev[0].Name != "c" || rev[2].Name != "a" {
		t.Errorf("Reverse() = %v", rev)
	}
	if entries[0].Name != "a" {
		t.Errorf("Reverse mutated its input")
	}
}

func TestStem(t *testing.T) {
	if got := fsutil.Stem("/a/b/report.final.md"); got != "report.final" {
		t.Errorf("Stem() = %q, want %q", got, "report.final")
	}
}

func TestReadFileNotFound(t *testing.T) {
	_, err := fsutil.ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
