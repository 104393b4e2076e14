package dashboard

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdownConverter = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		// Raw HTML in the source is dropped; html.WithUnsafe is not set.
		html.WithHardWraps(),
	),
)

// MarkdownToHTML converts a markdown report body into the HTML stored as report content.
func MarkdownToHTML(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	var b bytes.Buffer
	if err := markdownConverter.Convert([]byte(src), &b); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
