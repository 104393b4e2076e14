package dashboard

import (
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// PreviewRunes is the card preview length before the ellipsis.
const PreviewRunes = 150

var textOnly = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// PlainText strips markup from report HTML and collapses whitespace.
func PlainText(content string) string {
	stripped := html.UnescapeString(textOnly.Sanitize(content))
	return strings.Join(strings.Fields(stripped), " ")
}

// Preview is the short plain-text excerpt shown on report cards.
func Preview(content string) string {
	text := PlainText(content)
	r := []rune(text)
	if len(r) <= PreviewRunes {
		return text
	}
	return string(r[:PreviewRunes]) + "..."
}

// TagChips returns the first two tags plus a "+N" overflow marker.
func TagChips(tags []string) []string {
	if len(tags) <= 2 {
		return append([]string{}, tags...)
	}
	out := append([]string{}, tags[:2]...)
	return append(out, "+"+strconv.Itoa(len(tags)-2))
}
