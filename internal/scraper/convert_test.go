package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkdownConverterATXHeadings(t *testing.T) {
	converter := NewMarkdownConverter()

	markdown, err := converter.Convert("<h1>Title</h1><p>Body</p>")
	require.NoError(t, err)
	require.Contains(t, markdown, "# Title")
	require.Contains(t, markdown, "Body")
}

func TestMarkdownConverterTrimsOutput(t *testing.T) {
	converter := NewMarkdownConverter()

	markdown, err := converter.Convert("<p>hello</p>")
	require.NoError(t, err)
	require.Equal(t, markdown, strings.TrimSpace(markdown))
	require.NotEmpty(t, markdown)
}

func TestMarkdownConverterNestedHeadings(t *testing.T) {
	converter := NewMarkdownConverter()

	markdown, err := converter.Convert("<h2>Section</h2><ul><li>one</li><li>two</li></ul>")
	require.NoError(t, err)
	require.Contains(t, markdown, "## Section")
	require.Contains(t, markdown, "one")
	require.Contains(t, markdown, "two")
}
