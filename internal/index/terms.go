package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTerm turns one whitespace-delimited word into an index term.
// The word is NFKC-normalized, lowercased and trimmed, and every rune that is
// neither a letter nor a digit is removed. The result may be empty.
func NormalizeTerm(word string) string {
	word = strings.ToLower(strings.TrimSpace(norm.NFKC.String(word)))
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, word)
}

// Terms splits text on whitespace and normalizes each word.
// Words that normalize to the empty string are dropped. Duplicates are kept.
func Terms(text string) []string {
	fields := strings.Fields(text)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := NormalizeTerm(f); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// UniqueTerms returns the distinct terms of text in order of first occurrence.
func UniqueTerms(text string) []string {
	return dedupe(Terms(text))
}

func dedupe(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	unique := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	return unique
}
