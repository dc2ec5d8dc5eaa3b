package wordgrid

import (
	"regexp"
	"strings"
)

const (
	maxLabelLength     = 13
	truncatedLabelKeep = 10
	labelEllipsis      = "..."
)

var letterRunRegex = regexp.MustCompile(`[A-Za-z]+`)

// Tokenize extracts maximal runs of ASCII letters from rawText and lowercases them.
// Digits, punctuation, whitespace and non-ASCII runes all act as separators.
func Tokenize(rawText string) []string {
	runs := letterRunRegex.FindAllString(rawText, -1)
	words := make([]string, 0, len(runs))
	for _, run := range runs {
		words = append(words, strings.ToLower(run))
	}
	return words
}

// DisplayLabel returns the axis label for a word. Words longer than 13 characters are
// cut to their first 10 characters followed by "...".
func DisplayLabel(word string) string {
	if len(word) > maxLabelLength {
		return word[:truncatedLabelKeep] + labelEllipsis
	}
	return word
}
