package textproc

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	asciiPunctPattern = regexp.MustCompile(`[[:punct:]]+`)
	digitPattern      = regexp.MustCompile(`\p{Nd}+`)
	allPunctPattern   = regexp.MustCompile(`[\p{P}\p{S}]+`)
)

// RemoveNoise strips ASCII punctuation and decimal digits. Full-width
// punctuation is left in place; the segmenter filters it later.
func RemoveNoise(text string) string {
	text = asciiPunctPattern.ReplaceAllString(text, "")
	return digitPattern.ReplaceAllString(text, "")
}

// RemoveAllPunctuation is RemoveNoise widened to every Unicode punctuation
// and symbol rune, CJK marks included.
func RemoveAllPunctuation(text string) string {
	text = allPunctPattern.ReplaceAllString(text, "")
	return digitPattern.ReplaceAllString(text, "")
}

// NormalizeWhitespace drops every whitespace rune, line breaks included.
func NormalizeWhitespace(text string) string {
	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(text)
}
