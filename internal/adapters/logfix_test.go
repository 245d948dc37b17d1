package adapters

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFixLogFile_ReplacesMarkerAndBacksUpOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.log")
	original := "connect to [REDACTED] timed out\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatalf("seed log file: %v", err)
	}

	if err := FixLogFile(path, "10.0.0.1"); err != nil {
		t.Fatalf("FixLogFile: %v", err)
	}

	fixed, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixed file: %v", err)
	}
	if string(fixed) != "connect to 10.0.0.1 timed out\n" {
		t.Fatalf("unexpected fixed contents: %q", fixed)
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("read backup file: %v", err)
	}
	if string(backup) != original {
		t.Fatalf("backup does not match original: %q", backup)
	}
}

func TestFixLogFile_MultipleOccurrences(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.log")
	if err := os.WriteFile(path, []byte("[REDACTED] and [REDACTED] again"), 0o644); err != nil {
		t.Fatalf("seed log file: %v", err)
	}

	if err := FixLogFile(path, "203.0.113.9"); err != nil {
		t.Fatalf("FixLogFile: %v", err)
	}

	fixed, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixed file: %v", err)
	}
	want := "203.0.113.9 and 203.0.113.9 again"
	if string(fixed) != want {
		t.Fatalf("got %q, want %q", fixed, want)
	}
}
