package scraper

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// MarkdownConverter converts rendered HTML to Markdown with ATX-style
// headings.
type MarkdownConverter struct{}

// NewMarkdownConverter returns a Converter backed by html-to-markdown.
func NewMarkdownConverter() *MarkdownConverter {
	return &MarkdownConverter{}
}

// Convert implements Converter.
func (*MarkdownConverter) Convert(html string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}
