// board.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements the deterministic board generator. A board is
// rolled from an opaque seed and an ordered set of dice: the dice are
// permuted, one face is picked from each, and the faces are laid out
// row-major. The same (seed, dice, dims) input always yields the same
// board, which is what lets the scoring worker regenerate the exact
// board a player saw without storing it.

package boggle

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"strconv"
)

// Die is a single Boggle die: a string whose characters are the
// face labels. A 'Q' face stands for "QU".
type Die = string

// DiceConfig is an ordered set of dice, as read from a .dice file
type DiceConfig []Die

// Board is an R x C grid of single-letter face labels
type Board struct {
	Rows  int
	Cols  int
	Cells [][]string
}

// At returns the face label at (row, col)
func (b *Board) At(row, col int) string {
	return b.Cells[row][col]
}

// String renders the board row by row, mostly for logs and tests
func (b *Board) String() string {
	s := ""
	for i, row := range b.Cells {
		if i > 0 {
			s += " / "
		}
		for j, cell := range row {
			if j > 0 {
				s += " "
			}
			s += cell
		}
	}
	return s
}

// NewBoard builds a Board directly from rows of face labels.
// Real boards come from Roll; this is for fixtures.
func NewBoard(rows ...[]string) *Board {
	return &Board{
		Rows:  len(rows),
		Cols:  len(rows[0]),
		Cells: rows,
	}
}

// seedSource reduces opaque seed bytes to a PRNG source. SHA-256
// keeps the full seed entropy in play regardless of seed length.
func seedSource(seed []byte) rand.Source {
	sum := sha256.Sum256(seed)
	return rand.NewSource(int64(binary.BigEndian.Uint64(sum[:8])))
}

// Roll produces a board from seed bytes and a dice configuration.
// If rows and cols are both zero, the dice count must be a perfect
// square and the board is square. Otherwise rows*cols must equal
// the number of dice.
func Roll(seed []byte, dice DiceConfig, rows, cols int) (*Board, error) {
	numDice := len(dice)
	if numDice == 0 {
		return nil, fmt.Errorf("empty dice configuration")
	}
	if rows == 0 && cols == 0 {
		sq := int(math.Round(math.Sqrt(float64(numDice))))
		if sq*sq != numDice {
			return nil, fmt.Errorf(
				"dice count %d is not a perfect square; provide board dimensions",
				numDice,
			)
		}
		rows, cols = sq, sq
	} else if rows*cols != numDice {
		return nil, fmt.Errorf(
			"board dimensions (%d,%d) not compatible with %d dice",
			rows, cols, numDice,
		)
	}

	rng := rand.New(seedSource(seed))

	// Permute the dice, then pick one face from each
	perm := rng.Perm(numDice)
	flat := make([]string, numDice)
	for i, p := range perm {
		die := dice[p]
		flat[i] = string(die[rng.Intn(len(die))])
	}

	cells := make([][]string, rows)
	for r := 0; r < rows; r++ {
		cells[r] = flat[r*cols : (r+1)*cols]
	}
	return &Board{Rows: rows, Cols: cols, Cells: cells}, nil
}

// RoundSeed derives the board seed for one round of one session.
// Mixing in the server key means a fresh process (which also wipes
// all sessions) can never reproduce an old board by accident.
func RoundSeed(roundNo int, pepper string, serverKey []byte) []byte {
	seed := []byte(strconv.Itoa(roundNo) + pepper)
	return append(seed, serverKey...)
}
