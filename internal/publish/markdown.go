package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"reportdesk/internal/dashboard"
	"reportdesk/internal/model"
)

type RenderOptions struct {
	// IncludeActivity appends the report's activity log.
	IncludeActivity bool
	// IncludeSummary appends the AI summary when the report has one.
	IncludeSummary bool
}

// RenderReportMarkdown renders one report as a standalone markdown page.
func RenderReportMarkdown(r model.Report, acts []model.Activity, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(r.Title))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + r.ID)
	writeLn("- Status: " + string(r.Status))
	if r.AIGenerated {
		writeLn("- AI generated: true")
	}
	if strings.TrimSpace(r.CreatedBy) != "" {
		writeLn("- Created by: " + r.CreatedBy)
	}
	if tags := cleanTags(r.Tags); len(tags) > 0 {
		writeLn("- Tags: " + strings.Join(tags, ", "))
	}
	writeLn("- Created: " + r.CreatedAt.UTC().Format(time.RFC3339))
	writeLn("- Updated: " + r.UpdatedAt.UTC().Format(time.RFC3339))

	if body := dashboard.HTMLToMarkdown(r.Content); body != "" {
		writeLn("")
		writeLn("## Content")
		writeLn("")
		writeLn(demoteHeadings(body))
	}

	if opt.IncludeSummary && r.AISummary != nil {
		if s := dashboard.HTMLToMarkdown(*r.AISummary); s != "" {
			writeLn("")
			writeLn("## Summary")
			writeLn("")
			writeLn(demoteHeadings(s))
		}
	}

	if opt.IncludeActivity && len(acts) > 0 {
		writeLn("")
		writeLn("## Activity")
		writeLn("")
		for _, a := range acts {
			line := "- " + a.Timestamp.UTC().Format(time.RFC3339) + " " + dashboard.ActivityText(a.Action)
			if strings.TrimSpace(a.UserID) != "" {
				line += " (" + a.UserID + ")"
			}
			if a.Details != nil && strings.TrimSpace(*a.Details) != "" {
				line += ": " + strings.TrimSpace(*a.Details)
			}
			writeLn(line)
		}
	}
	return buf.String()
}

// RenderIndexMarkdown lists reports in the given order with links to their pages.
func RenderIndexMarkdown(title string, list []model.Report) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", title)
	if len(list) == 0 {
		buf.WriteString("(no reports)\n")
		return buf.String()
	}
	for _, r := range list {
		fmt.Fprintf(&buf, "- [%s](reports/%s.md) (%s)", strings.TrimSpace(r.Title), r.ID, r.Status)
		if p := dashboard.Preview(r.Content); p != "" {
			buf.WriteString(": " + p)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// demoteHeadings pushes body headings below the page's own "##" sections.
func demoteHeadings(md string) string {
	lines := strings.Split(md, "\n")
	for i, ln := range lines {
		if strings.HasPrefix(ln, "#") {
			n := len(ln) - len(strings.TrimLeft(ln, "#"))
			if n+2 <= 6 {
				lines[i] = "##" + ln
			}
		}
	}
	return strings.Join(lines, "\n")
}
