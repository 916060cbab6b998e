// paths.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements the grid path solver: a depth-first search
// that decides whether a word (in equality form) can be traced on
// the board by stepping between 8-adjacent cells without revisiting
// any cell. Paths are produced through a callback so that callers
// who only need one path stop the search immediately.

package boggle

// Cell is a (row, col) board coordinate. It marshals to a JSON
// two-element array, which is the wire format for paths.
type Cell [2]int

// Word-length gates for path finding. Shorter words are not legal
// Boggle words; longer ones cannot fit on a 4x4 board.
const (
	minPathWord = 3
	maxPathWord = 16
)

// Pathfinder finds paths for words on one fixed board
type Pathfinder struct {
	board   *Board
	visited [][]bool
	path    []Cell
}

// NewPathfinder prepares a solver for the given board
func NewPathfinder(b *Board) *Pathfinder {
	visited := make([][]bool, b.Rows)
	for i := range visited {
		visited[i] = make([]bool, b.Cols)
	}
	return &Pathfinder{
		board:   b,
		visited: visited,
		path:    make([]Cell, 0, maxPathWord),
	}
}

// Walk runs the DFS for word (equality form), invoking emit for every
// complete path found. The path slice passed to emit is reused between
// calls; emit must copy it if it wants to keep it. Returning false
// from emit stops the search.
func (pf *Pathfinder) Walk(word string, emit func(path []Cell) bool) {
	if len(word) < minPathWord || len(word) > maxPathWord {
		return
	}
	first := string(word[0])
	for i := 0; i < pf.board.Rows; i++ {
		for j := 0; j < pf.board.Cols; j++ {
			if pf.board.At(i, j) == first {
				if !pf.step(word, 1, i, j, emit) {
					return
				}
			}
		}
	}
}

// step extends the current path with (i, j) and recurses on the
// remaining letters. Returns false once emit has asked to stop.
func (pf *Pathfinder) step(word string, next, i, j int, emit func([]Cell) bool) bool {
	pf.visited[i][j] = true
	pf.path = append(pf.path, Cell{i, j})
	cont := true
	if next == len(word) {
		cont = emit(pf.path)
	} else {
		want := string(word[next])
		for di := -1; cont && di <= 1; di++ {
			for dj := -1; cont && dj <= 1; dj++ {
				if di == 0 && dj == 0 {
					continue
				}
				ni, nj := i+di, j+dj
				if ni < 0 || ni >= pf.board.Rows || nj < 0 || nj >= pf.board.Cols {
					continue
				}
				if pf.visited[ni][nj] || pf.board.At(ni, nj) != want {
					continue
				}
				cont = pf.step(word, next+1, ni, nj, emit)
			}
		}
	}
	pf.path = pf.path[:len(pf.path)-1]
	pf.visited[i][j] = false
	return cont
}

// First returns one path for the word, or nil if none exists
func (pf *Pathfinder) First(word string) []Cell {
	var found []Cell
	pf.Walk(word, func(path []Cell) bool {
		found = append([]Cell(nil), path...)
		return false
	})
	return found
}

// All returns every path for the word. Only used by tests; the
// scorer never needs more than the first path.
func (pf *Pathfinder) All(word string) [][]Cell {
	var paths [][]Cell
	pf.Walk(word, func(path []Cell) bool {
		paths = append(paths, append([]Cell(nil), path...))
		return true
	})
	return paths
}
