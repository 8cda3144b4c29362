// Package textstats cleans free-text survey answers and counts the words in
// them.
package textstats

import (
	_ "embed"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"advisingdash/internal/stats"
)

//go:embed english_stopwords.txt
var englishStopwords string

// customStopwords are filler words common to advising requests that would
// otherwise dominate every frequency table.
var customStopwords = []string{
	"course", "courses", "planning", "plan", "class", "classes", "quarter",
	"graduation", "minor", "major", "school", "year",
	"i", "my", "in", "to", "for", "and", "the", "a", "about",
}

var (
	nonWord    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// CleanTopic lower-cases s, turns punctuation into spaces and collapses
// whitespace.
func CleanTopic(s string) string {
	s = strings.ToLower(s)
	s = nonWord.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokens splits cleaned text on whitespace.
func Tokens(text string) []string {
	return strings.Fields(text)
}

// Stopwords is a set of words excluded from frequency counts.
type Stopwords map[string]struct{}

// NewStopwords builds a set from words, lower-cased.
func NewStopwords(words ...string) Stopwords {
	s := make(Stopwords, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

// DefaultStopwords returns the English stopword list plus the advising
// filler words.
func DefaultStopwords() Stopwords {
	s := NewStopwords(strings.Split(englishStopwords, "\n")...)
	for _, w := range customStopwords {
		s[w] = struct{}{}
	}
	return s
}

// With returns a copy of s extended with words.
func (s Stopwords) With(words ...string) Stopwords {
	out := make(Stopwords, len(s)+len(words))
	for w := range s {
		out[w] = struct{}{}
	}
	for w := range NewStopwords(words...) {
		out[w] = struct{}{}
	}
	return out
}

// Contains reports whether word is a stopword.
func (s Stopwords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// WordFrequencies counts tokens across texts, skipping stopwords and tokens
// of minLen runes or fewer. The result is ordered by count, then word.
func WordFrequencies(texts []string, stop Stopwords, minLen int) stats.Counts {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, tok := range Tokens(text) {
			if utf8.RuneCountInString(tok) <= minLen || stop.Contains(tok) {
				continue
			}
			counts[tok]++
		}
	}

	out := make(stats.Counts, 0, len(counts))
	for w, n := range counts {
		out = append(out, stats.Count{Label: w, Value: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}
