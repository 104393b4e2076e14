// Package publish writes reports out as markdown pages for sharing outside the tool.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"reportdesk/internal/model"
	"reportdesk/internal/reports"
)

type WriteOptions struct {
	RenderOptions
	// Status limits output to one status; empty writes every report.
	Status    model.ReportStatus
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteReport writes <toDir>/reports/<id>.md for a single report.
func WriteReport(st *reports.Store, reportID string, toDir string, opt WriteOptions) (WriteResult, error) {
	reportID = strings.TrimSpace(reportID)
	if reportID == "" {
		return WriteResult{}, errors.New("missing report id")
	}
	toDir, err := cleanDir(toDir)
	if err != nil {
		return WriteResult{}, err
	}
	r, ok := st.FindReport(reportID)
	if !ok {
		return WriteResult{}, reports.NotFoundError{Kind: "report", ID: reportID}
	}
	outDir := filepath.Join(toDir, "reports")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	p := filepath.Join(outDir, r.ID+".md")
	md := RenderReportMarkdown(r, st.ActivitiesForReport(r.ID), opt.RenderOptions)
	if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{p}}, nil
}

// WriteAll writes an index.md in stored order plus one page per report.
func WriteAll(st *reports.Store, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir, err := cleanDir(toDir)
	if err != nil {
		return WriteResult{}, err
	}
	all := []model.Report{}
	for _, r := range st.Reports() {
		if opt.Status != "" && r.Status != opt.Status {
			continue
		}
		all = append(all, r)
	}

	itemsDir := filepath.Join(toDir, "reports")
	if err := os.MkdirAll(itemsDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderIndexMarkdown("Reports", all)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	// Stops at the first failing page.
	written := []string{indexPath}
	for _, r := range all {
		p := filepath.Join(itemsDir, r.ID+".md")
		md := RenderReportMarkdown(r, st.ActivitiesForReport(r.ID), opt.RenderOptions)
		if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

func cleanDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", errors.New("missing --to")
	}
	return filepath.Clean(dir), nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
