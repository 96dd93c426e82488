package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseIntDefault(t *testing.T) {
	if ParseIntDefault("", 7) != 7 || ParseIntDefault("x", 7) != 7 || ParseIntDefault("42", 7) != 42 {
		t.Fatalf("unexpected ParseIntDefault result")
	}
}

func TestFirstExisting(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "model.json")
	if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, ok := FirstExisting([]string{filepath.Join(dir, "missing.json"), "", p})
	if !ok || got != p {
		t.Fatalf("got %q %v", got, ok)
	}
	if _, ok := FirstExisting([]string{filepath.Join(dir, "nope")}); ok {
		t.Fatalf("expected not found")
	}
}

func TestNormalizeText(t *testing.T) {
	if got := NormalizeText("  Greater London "); got != "GREATER LONDON" {
		t.Fatalf("got %q", got)
	}
}
