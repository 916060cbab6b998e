// score.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements the scoring engine. ScorePlayers assigns the
// raw per-word results (base score, path, duplicate flag, dictionary
// flag) across all players of a round, mutating the Word rows in
// place so that the worker can bulk-persist them. EffectiveScores is
// the client-facing projection: it applies dictionary gating,
// duplicate suppression and the longest-word bonus on top of the
// stored raw results, in either the basic or the mild variant.

package boggle

import (
	"encoding/json"
	"sort"
)

// BaseScores maps display-form word lengths to base scores.
// Lengths at or below LowerLim score LowerLimScore; the next
// len(Mid) lengths score the corresponding Mid entry; everything
// beyond scores UpperLimScore.
type BaseScores struct {
	LowerLim      int
	LowerLimScore int
	UpperLimScore int
	Mid           []int
}

// StandardScoring is the classic Boggle table:
// len <= 4 -> 1, 5 -> 2, 6 -> 3, 7 -> 5, >= 8 -> 11
var StandardScoring = BaseScores{
	LowerLim:      4,
	LowerLimScore: 1,
	UpperLimScore: 11,
	Mid:           []int{2, 3, 5},
}

// ForLength returns the base score for a display-form word length
func (bs BaseScores) ForLength(length int) int {
	if length <= bs.LowerLim {
		return bs.LowerLimScore
	}
	idx := length - bs.LowerLim - 1
	if idx >= len(bs.Mid) {
		return bs.UpperLimScore
	}
	return bs.Mid[idx]
}

// Dictionary is a set of display-form words
type Dictionary map[string]struct{}

// Contains reports whether the display form is in the dictionary
func (d Dictionary) Contains(word string) bool {
	_, ok := d[word]
	return ok
}

// ScorePlayers scores one round's submissions in place. groups holds
// each player's Word rows; board is the round's board; dict may be
// nil, in which case every word is dictionary-valid. The stored score
// is the raw score: the base score when the word traces on the board,
// zero otherwise. Duplicate and dictionary flags are stored untouched
// by the scoring variant, so that mild scoring and manual approval
// can be applied at read time.
func ScorePlayers(groups []PlayerWords, board *Board, dict Dictionary, table BaseScores) {
	// A word is a cross-player duplicate when its equality form
	// shows up more than once overall; within one submission the
	// store's unique constraint has already collapsed repeats.
	counts := make(map[string]int)
	for _, g := range groups {
		for _, w := range g.Words {
			counts[QNormal(w.Word)]++
		}
	}

	pf := NewPathfinder(board)
	noDict := dict == nil

	for _, g := range groups {
		for _, w := range g.Words {
			display := w.Word
			key := QNormal(display)

			score := 0
			path := pf.First(key)
			if path != nil {
				// Scoring length counts the QU digraphs in full
				score = table.ForLength(len(display))
			}

			dup := counts[key] > 1
			valid := noDict || dict.Contains(display)

			w.Score = &score
			w.Duplicate = &dup
			w.DictionaryValid = &valid
			w.PathJSON = marshalPath(path)
		}
	}
}

func marshalPath(path []Cell) *string {
	if path == nil {
		return nil
	}
	raw, err := json.Marshal(path)
	if err != nil {
		return nil
	}
	s := string(raw)
	return &s
}

// PlayerJSON identifies a player in responses
type PlayerJSON struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
}

// ScoredWordJSON is the per-word scores payload
type ScoredWordJSON struct {
	Word            string `json:"word"`
	Score           int    `json:"score"`
	Path            []Cell `json:"path"`
	Duplicate       bool   `json:"duplicate"`
	DictionaryValid bool   `json:"dictionary_valid"`
	LongestBonus    bool   `json:"longest_bonus"`
	InGrid          bool   `json:"in_grid"`
}

// PlayerScoreJSON groups one player's scored words
type PlayerScoreJSON struct {
	Player PlayerJSON       `json:"player"`
	Words  []ScoredWordJSON `json:"words"`
}

// EffectiveScores projects stored raw scores into the client-visible
// results. Dictionary-invalid words score zero (until approved). In
// the basic variant duplicates score zero and the uniquely longest
// valid word doubles; in the mild variant duplicates keep their base
// score and the bonus triples instead.
func EffectiveScores(groups []PlayerWords, mild bool) []PlayerScoreJSON {
	out := make([]PlayerScoreJSON, len(groups))

	// First pass: effective base scores per word
	for gi, g := range groups {
		words := make([]ScoredWordJSON, len(g.Words))
		for wi, w := range g.Words {
			entry := ScoredWordJSON{Word: w.Word}
			if w.Score != nil {
				entry.Score = *w.Score
			}
			if w.Duplicate != nil {
				entry.Duplicate = *w.Duplicate
			}
			if w.DictionaryValid != nil {
				entry.DictionaryValid = *w.DictionaryValid
			}
			if w.PathJSON != nil {
				entry.InGrid = true
				if err := json.Unmarshal([]byte(*w.PathJSON), &entry.Path); err != nil {
					entry.Path = nil
				}
			}
			if !entry.DictionaryValid {
				entry.Score = 0
			}
			if entry.Duplicate && !mild {
				entry.Score = 0
			}
			words[wi] = entry
		}
		out[gi] = PlayerScoreJSON{
			Player: PlayerJSON{PlayerID: g.PlayerID, Name: g.Name},
			Words:  words,
		}
	}

	applyLongestBonus(out, mild)

	for gi := range out {
		words := out[gi].Words
		sort.Slice(words, func(i, j int) bool {
			return words[i].Word < words[j].Word
		})
	}
	return out
}

// applyLongestBonus finds the maximum display length among words that
// still score after gating, and when exactly one player holds words
// of that length, multiplies those words' scores. A tie on the
// longest length suppresses the bonus entirely.
func applyLongestBonus(scores []PlayerScoreJSON, mild bool) {
	maxLen := 0
	owner := -1
	unique := true
	for gi := range scores {
		for _, w := range scores[gi].Words {
			if w.Score <= 0 {
				continue
			}
			switch {
			case len(w.Word) > maxLen:
				maxLen = len(w.Word)
				owner = gi
				unique = true
			case len(w.Word) == maxLen && gi != owner:
				unique = false
			}
		}
	}
	if maxLen == 0 || !unique {
		return
	}
	factor := 2
	if mild {
		factor = 3
	}
	words := scores[owner].Words
	for wi := range words {
		if words[wi].Score > 0 && len(words[wi].Word) == maxLen {
			words[wi].Score *= factor
			words[wi].LongestBonus = true
		}
	}
}
