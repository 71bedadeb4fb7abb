package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("---\ntitle: \"Hello\"\n---\nWorld\n")
	if err := s.Write("post.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("post.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("2024/03/deep.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("2024/03/deep.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("a.md", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.md" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("leftover entries: %v", names)
	}
}

func TestList_OnlyMarkdown(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("a.md", []byte("alpha"))
	_ = s.Write("sub/b.md", []byte("beta"))
	if err := os.WriteFile(filepath.Join(s.Root(), "image.png"), []byte{1, 2}, 0o644); err != nil {
		t.Fatal(err)
	}

	metas, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("len = %d, want 2", len(metas))
	}
	for _, m := range metas {
		if m.Checksum == "" {
			t.Errorf("%s: empty checksum", m.Path)
		}
		if filepath.IsAbs(m.Path) {
			t.Errorf("%s: path should be relative", m.Path)
		}
	}
}

func TestList_UnreadableFileReportedNotFatal(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("good.md", []byte("alpha"))
	// Dangling symlink: listed as .md but unreadable for hashing.
	if err := os.Symlink(filepath.Join(s.Root(), "missing"), filepath.Join(s.Root(), "ghost.md")); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	metas, err := s.List("")
	if err != nil {
		t.Fatalf("List must not fail for one unreadable file: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("len = %d, want 2", len(metas))
	}
	byPath := make(map[string]bool, len(metas))
	for _, m := range metas {
		byPath[m.Path] = m.Err != nil
	}
	if byPath["ghost.md"] != true {
		t.Error("ghost.md should carry an error")
	}
	if byPath["good.md"] != false {
		t.Error("good.md should have no error")
	}
}

func TestSafePath_RejectsTraversal(t *testing.T) {
	s := tempRoot(t)
	if _, err := s.Read("../outside.md"); err == nil {
		t.Error("expected traversal rejection")
	}
	if err := s.Write("../../evil.md", []byte("x")); err == nil {
		t.Error("expected traversal rejection on write")
	}
}

func TestNewFS_MissingDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "static", "images", "src.png")
	if err := os.WriteFile(src, []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "png-bytes" {
		t.Errorf("copied content = %q", got)
	}
}
