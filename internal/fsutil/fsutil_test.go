package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "DDraw.dll")
	dst := filepath.Join(dir, "out", "DDraw.dll")

	if err := os.WriteFile(src, []byte("patched ddraw"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	mtime := time.Date(2001, 3, 4, 5, 6, 7, 0, time.UTC)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile() error: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "patched ddraw" {
		t.Errorf("destination content = %q, want source content", data)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), mtime)
	}

	entries, _ := os.ReadDir(filepath.Dir(dst))
	if len(entries) != 1 {
		t.Errorf("expected only the destination file, found %d entries", len(entries))
	}
}

func TestCopyFile_Overwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "new")
	dst := filepath.Join(dir, "old")
	os.WriteFile(src, []byte("new"), 0644)
	os.WriteFile(dst, []byte("old content that is longer"), 0644)

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile() error: %v", err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "new" {
		t.Errorf("dst = %q, want %q", data, "new")
	}
}

func TestCopyFile_Errors(t *testing.T) {
	dir := t.TempDir()

	if err := CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "dst")); err == nil {
		t.Error("expected error for missing source")
	}
	if err := CopyFile(dir, filepath.Join(dir, "dst")); err == nil {
		t.Error("expected error for directory source")
	}

	src := filepath.Join(dir, "src")
	os.WriteFile(src, []byte("x"), 0644)
	if err := CopyFile(src, filepath.Join(dir, "no", "such", "dir", "dst")); err == nil {
		t.Error("expected error for missing destination directory")
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	os.WriteFile(file, nil, 0644)

	if !Exists(file) {
		t.Error("Exists(file) = false")
	}
	if Exists(dir) {
		t.Error("Exists(dir) = true, want false for directories")
	}
	if Exists(filepath.Join(dir, "missing")) {
		t.Error("Exists(missing) = true")
	}
}
