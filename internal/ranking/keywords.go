package ranking

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "in": {},
	"on": {}, "for": {}, "with": {}, "and": {}, "to": {}, "of": {},
}

// ExtractKeywords returns the distinct significant words of text in order of
// first appearance. Text is lower-cased, characters other than ASCII letters,
// digits, underscore and whitespace are removed, and words of two characters
// or less or listed as stop words are dropped.
func ExtractKeywords(text string) []string {
	if text == "" {
		return []string{}
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || isWordChar(r) {
			return r
		}
		return -1
	}, strings.ToLower(text))

	seen := make(map[string]struct{})
	keywords := make([]string, 0)
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}

	return keywords
}

func isWordChar(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
