// paths_test.go
//
// Copyright (C) 2025 Tom Verbeek
//
// Tests for the grid path solver, on the fixed reference board
//
//	A Q L T
//	O L E O
//	F D G I
//	L H I E

package boggle

import (
	"fmt"
	"testing"
)

func referenceBoard() *Board {
	return NewBoard(
		[]string{"A", "Q", "L", "T"},
		[]string{"O", "L", "E", "O"},
		[]string{"F", "D", "G", "I"},
		[]string{"L", "H", "I", "E"},
	)
}

func pathSet(t *testing.T, word string) map[string]bool {
	t.Helper()
	set := make(map[string]bool)
	for _, path := range NewPathfinder(referenceBoard()).All(word) {
		set[fmt.Sprint(path)] = true
	}
	return set
}

func TestPathsOnReferenceBoard(t *testing.T) {
	paths := pathSet(t, "ALGE")
	want := map[string]bool{
		fmt.Sprint([]Cell{{0, 0}, {1, 1}, {2, 2}, {3, 3}}): true,
		fmt.Sprint([]Cell{{0, 0}, {1, 1}, {2, 2}, {1, 2}}): true,
	}
	if len(paths) != len(want) {
		t.Fatalf("ALGE: got %d paths, want %d: %v", len(paths), len(want), paths)
	}
	for p := range want {
		if !paths[p] {
			t.Errorf("ALGE: missing path %v", p)
		}
	}

	if n := len(pathSet(t, "ALGEI")); n != 3 {
		t.Errorf("ALGEI: got %d paths, want 3", n)
	}
	if n := len(pathSet(t, "ALGEIG")); n != 0 {
		t.Errorf("ALGEIG: got %d paths, want none", n)
	}
	if n := len(pathSet(t, "DGIEIHLFLO")); n != 1 {
		t.Errorf("DGIEIHLFLO: got %d paths, want exactly 1", n)
	}
	if n := len(pathSet(t, "BLHIE")); n != 0 {
		t.Errorf("BLHIE: got %d paths, want none", n)
	}
}

func TestPathLengthGates(t *testing.T) {
	// too short
	if paths := pathSet(t, "B"); len(paths) != 0 {
		t.Errorf("single letter must yield no paths")
	}
	if paths := pathSet(t, "AL"); len(paths) != 0 {
		t.Errorf("two letters must yield no paths")
	}
	// too long (17 letters cannot fit a 16-cell board anyway, but
	// the gate fires before the search does)
	long := "ALGEALGEALGEALGEA"
	if paths := pathSet(t, long); len(paths) != 0 {
		t.Errorf("17-letter word must yield no paths")
	}
}

func TestPathsValid(t *testing.T) {
	// every reported path must trace the word over 8-connected,
	// non-repeating cells
	board := referenceBoard()
	for _, word := range []string{"ALGE", "ALGEI", "DGIEIHLFLO", "TLEGI"} {
		for _, path := range NewPathfinder(board).All(word) {
			if len(path) != len(word) {
				t.Fatalf("%s: path length %d != word length", word, len(path))
			}
			seen := make(map[Cell]bool)
			for i, cell := range path {
				if board.At(cell[0], cell[1]) != string(word[i]) {
					t.Errorf("%s: cell %v holds %q, want %q", word, cell,
						board.At(cell[0], cell[1]), string(word[i]))
				}
				if seen[cell] {
					t.Errorf("%s: cell %v repeats in path %v", word, cell, path)
				}
				seen[cell] = true
				if i > 0 {
					prev := path[i-1]
					di, dj := cell[0]-prev[0], cell[1]-prev[1]
					if di < -1 || di > 1 || dj < -1 || dj > 1 || (di == 0 && dj == 0) {
						t.Errorf("%s: cells %v and %v are not adjacent", word, prev, cell)
					}
				}
			}
		}
	}
}

func TestFirstStopsEarly(t *testing.T) {
	pf := NewPathfinder(referenceBoard())
	if pf.First("ALGE") == nil {
		t.Errorf("First must find a path for ALGE")
	}
	if pf.First("ALGEIG") != nil {
		t.Errorf("First must return nil for untracable words")
	}
	// the solver is reusable after an early stop
	if pf.First("TLEGI") == nil {
		t.Errorf("solver must stay usable after a stopped search")
	}
}

func TestQCellMatchesQOnly(t *testing.T) {
	// the Q cell at (0,1) participates as the single letter Q of
	// the equality form
	paths := NewPathfinder(referenceBoard()).All("AQLGE")
	if len(paths) == 0 {
		t.Fatalf("AQLGE (equality form of AQULGE) must trace")
	}
	for _, path := range paths {
		if path[1] != (Cell{0, 1}) {
			t.Errorf("expected the Q at (0,1), got %v", path[1])
		}
	}
	if len(paths[0]) != 5 {
		t.Errorf("equality-form path has %d cells, want 5", len(paths[0]))
	}
}
