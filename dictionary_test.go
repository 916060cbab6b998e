// dictionary_test.go
//
// Copyright (C) 2025 Tom Verbeek
//
// Tests for dictionary discovery and caching

package boggle

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDict(t *testing.T, dir, name, content string) {
	t.Helper()
	fname := filepath.Join(dir, name+dictExtension)
	if err := os.WriteFile(fname, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", fname, err)
	}
}

func TestListDictionaries(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, dir, "words-nl", "BOOM\n")
	writeDict(t, dir, "words-en", "TREE\n")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := ListDictionaries(dir)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(names) != 2 || names[0] != "words-en" || names[1] != "words-nl" {
		t.Errorf("got %v, want [words-en words-nl]", names)
	}
}

func TestLoadDictionaryNormalises(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, dir, "mixed", "tlegi\nDGIÉÎHLFLO\n\n  AQULGE  \n")

	dict, err := LoadDictionary(dir, "mixed")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	for _, want := range []string{"TLEGI", "DGIEIHLFLO", "AQULGE"} {
		if !dict.Contains(want) {
			t.Errorf("dictionary must contain %q", want)
		}
	}
	if len(dict) != 3 {
		t.Errorf("got %d entries, want 3", len(dict))
	}
}

func TestDictionaryCache(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, dir, "cached", "WORD\n")

	cache := NewDictionaryCache(dir, 4)
	first, err := cache.Get("cached")
	if err != nil {
		t.Fatalf("first load: %v", err)
	}

	// remove the file; the cached parse must still serve
	if err := os.Remove(filepath.Join(dir, "cached"+dictExtension)); err != nil {
		t.Fatal(err)
	}
	second, err := cache.Get("cached")
	if err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if !second.Contains("WORD") || len(first) != len(second) {
		t.Errorf("cache returned a different dictionary")
	}

	if _, err := cache.Get("missing"); err == nil {
		t.Errorf("missing dictionary must error")
	}
}

func TestNilDictionaryContains(t *testing.T) {
	var dict Dictionary
	if dict.Contains("ANYTHING") {
		t.Errorf("nil dictionary must not contain words")
	}
}
