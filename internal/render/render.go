// Package render turns review bodies into HTML and list excerpts.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ExcerptWords is the word limit for list excerpts.
const ExcerptWords = 80

var md = goldmark.New(
	goldmark.WithExtensions(extension.Typographer, extension.Linkify),
)

// HTML renders a review body as Markdown. Raw HTML in the body is omitted.
func HTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}

// Excerpt returns the first n words of text, followed by "..." when text
// was cut. Whitespace is collapsed.
func Excerpt(text string, n int) string {
	words := strings.Fields(text)
	if n <= 0 || len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}

// Paragraphs splits text on blank lines, dropping empty paragraphs.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
