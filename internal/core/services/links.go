package services

import "regexp"

// Matches http/https URLs up to whitespace or a closing parenthesis, so links
// written as "(https://example.com)" come out clean.
var linkPattern = regexp.MustCompile(`https?://[^\s)]+`)

// ExtractLinks returns every URL in text in order of appearance. Duplicates
// are preserved. Never nil: results serialize with a "links" array even when
// empty.
func ExtractLinks(text string) []string {
	links := linkPattern.FindAllString(text, -1)
	if links == nil {
		return []string{}
	}
	return links
}
