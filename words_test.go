// words_test.go
//
// Copyright (C) 2025 Tom Verbeek
//
// Tests for word normalisation

package boggle

import (
	"strings"
	"testing"
)

func TestCleanWord(t *testing.T) {
	cases := []struct {
		raw, want string
	}{
		{"hello", "HELLO"},
		{"DGIÉÎHLFLO", "DGIEIHLFLO"},
		{"über", "UBER"},
		{"AQULGE", "AQULGE"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CleanWord(c.raw); got != c.want {
			t.Errorf("CleanWord(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestCleanWordIdempotent(t *testing.T) {
	words := []string{"DGIÉÎHLFLO", "qulge", "Großes", "ALGEIG"}
	for _, w := range words {
		once := CleanWord(w)
		if twice := CleanWord(once); twice != once {
			t.Errorf("CleanWord not idempotent on %q: %q != %q", w, twice, once)
		}
	}
}

func TestQNormal(t *testing.T) {
	cases := []struct {
		display, want string
	}{
		{"AQULGE", "AQLGE"},
		{"QULGE", "QLGE"},
		{"QLGE", "QLGE"},
		{"QUQU", "QQ"},
		{"HELLO", "HELLO"},
	}
	for _, c := range cases {
		if got := QNormal(c.display); got != c.want {
			t.Errorf("QNormal(%q) = %q, want %q", c.display, got, c.want)
		}
	}
}

func TestBoggleWordCollapse(t *testing.T) {
	// QULGE and QLGE are the same word on the board
	a := NewBoggleWord("QULGE")
	b := NewBoggleWord("qlge")
	if a.Key != b.Key {
		t.Errorf("expected equal keys, got %q and %q", a.Key, b.Key)
	}
	if a.Display == b.Display {
		t.Errorf("display forms should differ: %q", a.Display)
	}
}

func TestTruncateName(t *testing.T) {
	long := strings.Repeat("é", MaxNameLength+10)
	got := TruncateName(long)
	if n := len([]rune(got)); n != MaxNameLength {
		t.Errorf("truncated name has %d runes, want %d", n, MaxNameLength)
	}
	if TruncateName("short") != "short" {
		t.Errorf("short names must pass through unchanged")
	}
}
