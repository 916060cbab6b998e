// words.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements word normalisation for Boggle submissions.
// Every incoming word has two derived forms: the display form
// (diacritics stripped, uppercased) that is stored and shown to
// players, and the equality form (QU collapsed to Q) that is used
// for duplicate detection and for tracing paths on the board,
// since a die face labelled Q stands for QU.

package boggle

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxNameLength bounds player names, in runes
const MaxNameLength = 250

// MaxWordLength bounds stored words. Longer words can never trace a
// path on the board anyway, so they are dropped at ingress.
const MaxWordLength = 20

// asciiFold decomposes to NFD, drops the combining marks and
// recomposes, so that e.g. "DGIÉÎHLFLO" becomes "DGIEIHLFLO"
var asciiFold = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// CleanWord returns the display form of a raw submission string:
// diacritics stripped, uppercased
func CleanWord(raw string) string {
	folded, _, err := transform.String(asciiFold, raw)
	if err != nil {
		// Fall back to the raw string; uppercasing still applies
		folded = raw
	}
	return strings.ToUpper(folded)
}

// QNormal converts a display form to the equality form by
// collapsing every QU digraph into a single Q
func QNormal(display string) string {
	return strings.ReplaceAll(display, "QU", "Q")
}

// BoggleWord carries both derived forms of a submitted word.
// Equality and hashing go through Key; Display is what gets stored.
type BoggleWord struct {
	Display string
	Key     string
}

// NewBoggleWord normalises a raw submission string
func NewBoggleWord(raw string) BoggleWord {
	display := CleanWord(raw)
	return BoggleWord{Display: display, Key: QNormal(display)}
}

// TruncateName clips a player name to MaxNameLength runes
func TruncateName(name string) string {
	r := []rune(name)
	if len(r) > MaxNameLength {
		r = r[:MaxNameLength]
	}
	return string(r)
}
