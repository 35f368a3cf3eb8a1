// Package lexicon holds the table of antagonistic terms used to detect
// directly contradicting instructions. Tables are plain data: they can be
// loaded from YAML, swapped at runtime through a Holder, and reloaded from
// disk by a Watcher.
package lexicon

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MatchMode selects how a term is located in instruction text.
type MatchMode string

const (
	// MatchSubstring uses plain containment, so "formally" matches
	// "formal". It is the default.
	MatchSubstring MatchMode = "substring"
	// MatchWord requires the term to be bounded by non-letter, non-digit
	// characters.
	MatchWord MatchMode = "word"
)

var (
	ErrEmptyTable   = errors.New("lexicon has no pairs")
	ErrInvalidPair  = errors.New("lexicon pair is invalid")
	ErrInvalidMatch = errors.New("lexicon match must be word or substring")
)

// Pair is two terms whose presence on opposite sides of an instruction pair
// marks a direct contradiction.
type Pair struct {
	Left  string `yaml:"left" json:"left"`
	Right string `yaml:"right" json:"right"`
}

func (p Pair) String() string {
	return p.Left + "/" + p.Right
}

// Table is an ordered set of antagonistic pairs. Pairs are checked in order
// and the first pair that matches wins. In both modes, occurrences of a
// longer antagonist that contains the term are masked first, so "must not"
// is never read as "must".
type Table struct {
	Match MatchMode `yaml:"match" json:"match"`
	Pairs []Pair    `yaml:"pairs" json:"pairs"`
}

// Normalize lower-cases and trims every term and fills in the default match mode.
func (t *Table) Normalize() {
	if t.Match == "" {
		t.Match = MatchSubstring
	}
	t.Match = MatchMode(strings.ToLower(string(t.Match)))
	for i := range t.Pairs {
		t.Pairs[i].Left = normalize(t.Pairs[i].Left)
		t.Pairs[i].Right = normalize(t.Pairs[i].Right)
	}
}

// Validate reports whether the table can be used for detection.
func (t *Table) Validate() error {
	if t.Match != MatchWord && t.Match != MatchSubstring {
		return fmt.Errorf("%w: %q", ErrInvalidMatch, t.Match)
	}
	if len(t.Pairs) == 0 {
		return ErrEmptyTable
	}
	for i, p := range t.Pairs {
		if p.Left == "" || p.Right == "" {
			return fmt.Errorf("%w: pair %d has an empty term", ErrInvalidPair, i)
		}
		if p.Left == p.Right {
			return fmt.Errorf("%w: pair %d repeats %q", ErrInvalidPair, i, p.Left)
		}
	}
	return nil
}

// Contradiction returns the first pair whose sides appear on opposite texts,
// in either orientation. The result does not depend on argument order.
func (t *Table) Contradiction(a, b string) (Pair, bool) {
	a, b = normalize(a), normalize(b)
	for _, p := range t.Pairs {
		if t.has(a, p.Left, p.Right) && t.has(b, p.Right, p.Left) {
			return p, true
		}
		if t.has(a, p.Right, p.Left) && t.has(b, p.Left, p.Right) {
			return p, true
		}
	}
	return Pair{}, false
}

func (t *Table) has(text, term, antagonist string) bool {
	if t.Match == MatchWord {
		if len(antagonist) > len(term) && containsWord(antagonist, term) {
			text = maskWord(text, antagonist)
		}
		return containsWord(text, term)
	}
	if len(antagonist) > len(term) && strings.Contains(antagonist, term) {
		text = strings.ReplaceAll(text, antagonist, strings.Repeat(" ", len(antagonist)))
	}
	return strings.Contains(text, term)
}

// containsWord reports whether term occurs in text with word boundaries on
// both sides.
func containsWord(text, term string) bool {
	for offset := 0; offset <= len(text)-len(term); {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

func maskWord(text, term string) string {
	var b strings.Builder
	for {
		i := indexWord(text, term)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i])
		b.WriteString(strings.Repeat(" ", len(term)))
		text = text[i+len(term):]
	}
}

func indexWord(text, term string) int {
	for offset := 0; offset <= len(text)-len(term); {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return -1
		}
		start := offset + i
		if boundaryBefore(text, start) && boundaryAfter(text, start+len(term)) {
			return start
		}
		offset = start + 1
	}
	return -1
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

func normalize(s string) string {
	return apostrophes.Replace(strings.ToLower(strings.TrimSpace(s)))
}
