package dashboard

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	rendererMu sync.Mutex
	// Keyed by style + wrap width. A fixed style avoids glamour's terminal background query.
	renderers = map[string]*glamour.TermRenderer{}
)

// RenderContent renders report HTML for a terminal of the given width.
// Output falls back to plain text when rendering fails.
func RenderContent(content string, width int) string {
	md := HTMLToMarkdown(content)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}
	style := contentStyle()
	key := style + ":" + strconv.Itoa(width)

	rendererMu.Lock()
	r := renderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			rendererMu.Unlock()
			return md
		}
		renderers[key] = rr
		r = rr
	}
	rendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func contentStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("REPORTDESK_MD_STYLE"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	case "notty", "plain":
		return "notty"
	}
	if termenv.EnvNoColor() {
		return "notty"
	}
	return "dark"
}

type mdWriter struct {
	b     strings.Builder
	quote bool
}

func (w *mdWriter) blockBreak() {
	cur := w.b.String()
	if w.quote {
		switch {
		case cur == "":
			w.b.WriteString("> ")
		case cur == "> " || strings.HasSuffix(cur, "\n> "):
		default:
			w.b.WriteString("\n\n> ")
		}
		return
	}
	if cur == "" || strings.HasSuffix(cur, "\n\n") {
		return
	}
	w.b.WriteString("\n\n")
}

func (w *mdWriter) text(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	lead := s[0] == ' ' || s[0] == '\n' || s[0] == '\t'
	trail := strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\n")
	s = strings.Join(strings.Fields(s), " ")
	cur := w.b.String()
	if lead && cur != "" && !strings.HasSuffix(cur, " ") && !strings.HasSuffix(cur, "\n") {
		w.b.WriteByte(' ')
	}
	w.b.WriteString(s)
	if trail {
		w.b.WriteByte(' ')
	}
}

// HTMLToMarkdown converts the subset of HTML report bodies use (headings,
// paragraphs, lists, emphasis, quotes, code) into markdown. Unknown tags are dropped.
func HTMLToMarkdown(src string) string {
	z := xhtml.NewTokenizer(strings.NewReader(src))
	w := &mdWriter{}
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			return tidyMarkdown(w.b.String())
		case xhtml.TextToken:
			w.text(string(z.Text()))
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				w.blockBreak()
				w.b.WriteString(strings.Repeat("#", int(name[1]-'0')) + " ")
			case atom.P, atom.Div, atom.Ul, atom.Ol, atom.Pre:
				w.blockBreak()
			case atom.Li:
				w.b.WriteString("\n- ")
			case atom.Br:
				w.b.WriteString("  \n")
			case atom.Strong, atom.B:
				w.b.WriteString("**")
			case atom.Em, atom.I:
				w.b.WriteString("*")
			case atom.Code:
				w.b.WriteString("`")
			case atom.Blockquote:
				w.quote = true
				w.blockBreak()
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.P, atom.Div, atom.Ul, atom.Ol, atom.Pre:
				w.blockBreak()
			case atom.Strong, atom.B:
				w.b.WriteString("**")
			case atom.Em, atom.I:
				w.b.WriteString("*")
			case atom.Code:
				w.b.WriteString("`")
			case atom.Blockquote:
				w.quote = false
				w.blockBreak()
			}
		}
	}
}

func tidyMarkdown(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" || ln == ">" {
			blank++
			if blank > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blank = 0
		out = append(out, ln)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
