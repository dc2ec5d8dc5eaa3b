package wordgrid

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: []string{}},
		{name: "no_letters", text: "123 -- 456!", want: []string{}},
		{name: "lowercases", text: "Red BLUE red", want: []string{"red", "blue", "red"}},
		{name: "punctuation_splits", text: "in Just-spring when the world is mud-luscious", want: []string{"in", "just", "spring", "when", "the", "world", "is", "mud", "luscious"}},
		{name: "digits_split", text: "abc123def", want: []string{"abc", "def"}},
		{name: "non_ascii_splits", text: "café naïve", want: []string{"caf", "na", "ve"}},
		{name: "apostrophe", text: "don't", want: []string{"don", "t"}},
		{name: "whitespace_runs", text: "\n\tgreen\n\n  gold ", want: []string{"green", "gold"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Tokenize(test.text)
			if !reflect.DeepEqual(got, test.want) {
				t.Fatalf("Tokenize(%q) = %#v, want %#v", test.text, got, test.want)
			}
		})
	}
}

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{word: "", want: ""},
		{word: "red", want: "red"},
		{word: "thirteenchars", want: "thirteenchars"},
		{word: "fourteenletter", want: "fourteenle..."},
		{word: "abcdefghijklmnop", want: "abcdefghij..."},
	}

	for _, test := range tests {
		if got := DisplayLabel(test.word); got != test.want {
			t.Fatalf("DisplayLabel(%q) = %q, want %q", test.word, got, test.want)
		}
	}
}
