package samplegen

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	directionRe = regexp.MustCompile(`\[[^\]]*\]`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// Clean strips bracketed stage directions, quotes and ellipses so that only
// the spoken words are synthesized.
func Clean(text string) string {
	text = directionRe.ReplaceAllString(text, " ")
	text = strings.NewReplacer(`"`, "", "“", "", "”", "", "...", " ", "…", " ").Replace(text)
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Chunk splits text into pieces of at most max runes, preferring to break
// after sentence punctuation, then at spaces. Words longer than max are cut.
func Chunk(text string, max int) []string {
	text = strings.TrimSpace(text)
	if max <= 0 || text == "" {
		return nil
	}

	var chunks []string
	for utf8.RuneCountInString(text) > max {
		cut := breakPoint(text, max)
		if piece := strings.TrimSpace(text[:cut]); piece != "" {
			chunks = append(chunks, piece)
		}
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// breakPoint returns a byte offset within the first max runes of text.
func breakPoint(text string, max int) int {
	limit, n := len(text), 0
	for i := range text {
		if n == max {
			limit = i
			break
		}
		n++
	}

	punct, space := -1, -1
	for i, r := range text[:limit] {
		switch {
		case strings.ContainsRune(".!?,;:،؛؟", r):
			punct = i + utf8.RuneLen(r)
		case unicode.IsSpace(r):
			space = i
		}
	}
	switch {
	case punct > 0:
		return punct
	case space > 0:
		return space
	default:
		return limit
	}
}
