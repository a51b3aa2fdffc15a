// Package tokenizer provides text tokenisation for the search engine.
// It lower-cases input, strips punctuation, splits on whitespace, removes
// stop-words, and can optionally apply a simple suffix-based stemmer.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var stopWords = map[string]struct{}{
	// articles
	"a": {}, "an": {}, "the": {},
	// pronouns
	"i": {}, "me": {}, "you": {}, "he": {}, "him": {}, "she": {}, "her": {},
	"it": {}, "we": {}, "us": {}, "they": {}, "them": {}, "my": {}, "your": {},
	"his": {}, "its": {}, "our": {}, "their": {}, "this": {}, "that": {},
	"these": {}, "those": {},
	// prepositions
	"in": {}, "on": {}, "at": {}, "by": {}, "for": {}, "from": {}, "with": {},
	"to": {}, "of": {}, "into": {}, "over": {}, "under": {}, "between": {},
	"through": {}, "during": {}, "before": {}, "after": {},
	// conjunctions
	"and": {}, "or": {}, "but": {}, "so": {},
	// auxiliaries
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "am": {}, "been": {},
	"has": {}, "have": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"as": {}, "if": {}, "than": {}, "then": {}, "also": {}, "just": {},
}

// Token represents a single normalised term and its position in the
// original text.
type Token struct {
	Term     string
	Position int
}

// Options controls normalisation beyond the fixed lowercase, punctuation
// and stop-word steps.
type Options struct {
	// MinTermLength drops shorter tokens; values below 1 are treated as 1.
	MinTermLength int
	Stem          bool
}

type Tokenizer struct {
	minLen int
	stem   bool
}

func New(opts Options) *Tokenizer {
	minLen := opts.MinTermLength
	if minLen < 1 {
		minLen = 1
	}
	return &Tokenizer{minLen: minLen, stem: opts.Stem}
}

// Default is the tokenizer with default options.
var Default = New(Options{})

// Tokenize breaks text into lowercased Tokens with stop-words removed.
// Punctuation is deleted rather than treated as a separator, so "don't"
// becomes "dont".
func (t *Tokenizer) Tokenize(text string) []Token {
	words := strings.Fields(clean(text))
	tokens := make([]Token, 0, len(words))
	pos := 0
	for _, word := range words {
		if _, isStop := stopWords[word]; isStop {
			continue
		}
		if t.stem {
			word = stem(word)
		}
		if utf8.RuneCountInString(word) < t.minLen {
			continue
		}
		tokens = append(tokens, Token{
			Term:     word,
			Position: pos,
		})
		pos++
	}
	return tokens
}

// Terms returns only the normalised terms of text.
func (t *Tokenizer) Terms(text string) []string {
	tokens := t.Tokenize(text)
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		terms = append(terms, tok.Term)
	}
	return terms
}

// Tokenize uses the Default tokenizer.
func Tokenize(text string) []Token {
	return Default.Tokenize(text)
}

// Normalize lowercases and trims a single term without tokenising it.
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func clean(text string) string {
	text = strings.ToLower(text)
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, text)
}

// stem applies a simple suffix-stripping stemmer to the given word.
func stem(word string) string {
	for _, rule := range suffixes {
		if strings.HasSuffix(word, rule.suffix) {
			newWord := word[:len(word)-len(rule.suffix)] + rule.replacement
			if len(newWord) >= rule.minLen {
				return newWord
			}
		}
	}
	return word
}

var suffixes = []struct {
	suffix      string
	replacement string
	minLen      int
}{
	{"ational", "ate", 2},
	{"tional", "tion", 2},
	{"encies", "ence", 2},
	{"ances", "ance", 2},
	{"ments", "ment", 2},
	{"izing", "ize", 2},
	{"ating", "ate", 2},
	{"iness", "y", 2},
	{"ously", "ous", 2},
	{"ively", "ive", 2},
	{"eness", "ene", 2},
	{"tion", "t", 3},
	{"sion", "s", 3},
	{"ying", "y", 2},
	{"ling", "l", 3},
	{"ies", "y", 2},
	{"ing", "", 3},
	{"ers", "er", 2},
	{"est", "", 3},
	{"ful", "", 3},
	{"ous", "", 3},
	{"ess", "", 3},
	{"ble", "", 3},
	{"ed", "", 3},
	{"er", "", 3},
	{"ly", "", 3},
	{"es", "", 3},
	{"ss", "ss", 2},
	{"s", "", 3},
}
