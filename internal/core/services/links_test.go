package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLinks(t *testing.T) {
	text := "See https://a.com/x and (https://b.org/y) also https://a.com/x"

	links := ExtractLinks(text)

	assert.Equal(t, []string{"https://a.com/x", "https://b.org/y", "https://a.com/x"}, links)
}

func TestExtractLinks_NoLinks(t *testing.T) {
	links := ExtractLinks("nothing to see here")
	assert.NotNil(t, links, "empty result must still serialize as an array")
	assert.Empty(t, links)
}

func TestExtractLinks_HTTPAndTrailingText(t *testing.T) {
	links := ExtractLinks("plain http://example.com/path?q=1 end")
	assert.Equal(t, []string{"http://example.com/path?q=1"}, links)
}
