package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpen_MissingFileYieldsEmptyStore(t *testing.T) {
	s, err := Open[string](filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", s.Len())
	}
}

func TestStore_FlushAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata", "song_metadata.json")

	s, err := Open[*float64](path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	length := 210.5
	s.Set("Track1", &length)
	s.Set("Unknown Track", nil)

	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	got, err := Open[*float64](path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", got.Len())
	}

	v, ok := got.Get("Track1")
	if !ok || v == nil || *v != 210.5 {
		t.Errorf("Track1: got %v ok=%v, want 210.5", v, ok)
	}

	// Null values are kept: a present key with nil means "known to be absent".
	v, ok = got.Get("Unknown Track")
	if !ok {
		t.Error("nil-valued key was dropped on round trip")
	}
	if v != nil {
		t.Errorf("expected nil value, got %v", *v)
	}
}

func TestStore_DeleteAndKeys(t *testing.T) {
	s, err := Open[int](filepath.Join(t.TempDir(), "s.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	s.Set("b", 2)
	s.Set("a", 1)
	s.Delete("b")
	s.Delete("never-existed")

	keys := s.Keys()
	if len(keys) != 1 || keys[0] != "a" {
		t.Errorf("unexpected keys %v", keys)
	}
	if s.Has("b") {
		t.Error("deleted key still present")
	}
}

func TestStore_FlushIsPrettyPrintedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	s, err := Open[string](path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Set("Boards of Canada", "idm, downtempo")
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(raw), "\n  ") {
		t.Errorf("expected indented JSON, got %q", raw)
	}

	var parsed map[string]string
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("file is not valid JSON: %v", err)
	}
	if parsed["Boards of Canada"] != "idm, downtempo" {
		t.Errorf("unexpected content %v", parsed)
	}
}

func TestStore_FlushLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := Open[int](filepath.Join(dir, "s.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Set("k", 1)
	if err := s.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "s.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only s.json, got %v", names)
	}
}
