package tokenizer

import (
	"slices"
	"testing"
)

func TestTerms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases", "Data SCIENCE", []string{"data", "science"}},
		{"strips punctuation", "Hello, world! (really?)", []string{"hello", "world", "really"}},
		{"joins contractions", "don't stop", []string{"dont", "stop"}},
		{"drops stopwords", "the cat and the hat is on a mat", []string{"cat", "hat", "mat"}},
		{"keeps single characters", "x y z", []string{"x", "y", "z"}},
		{"keeps digits", "go 1.22 release", []string{"go", "122", "release"}},
		{"empty", "", []string{}},
		{"whitespace only", " \t\n ", []string{}},
		{"only stopwords", "the and of", []string{}},
		{"symbols removed", "c++ $100 a+b", []string{"c", "100", "ab"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Default.Terms(tt.in)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Terms(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens := Tokenize("the quick brown fox")
	want := []Token{{"quick", 0}, {"brown", 1}, {"fox", 2}}
	if !slices.Equal(tokens, want) {
		t.Errorf("Tokenize() = %v, want %v", tokens, want)
	}
}

func TestMinTermLength(t *testing.T) {
	tk := New(Options{MinTermLength: 3})
	got := tk.Terms("go is a fun language ok")
	if want := []string{"fun", "language"}; !slices.Equal(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
}

func TestStemming(t *testing.T) {
	tk := New(Options{Stem: true})
	got := tk.Terms("running searches quickly")
	if want := []string{"runn", "search", "quick"}; !slices.Equal(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
	if got := Default.Terms("running"); !slices.Equal(got, []string{"running"}) {
		t.Errorf("default tokenizer stemmed: %v", got)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  RuN "); got != "run" {
		t.Errorf("Normalize() = %q", got)
	}
}
