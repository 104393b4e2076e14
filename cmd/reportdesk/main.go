package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"reportdesk/internal/cli"
)

const reportIDPrefix = "rep-"

func isReportID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, reportIDPrefix) && len(s) > len(reportIDPrefix)
}

// rewriteDirectReportLookupArgs turns `reportdesk <report-id>` into `reportdesk reports show <report-id>`.
// Cobra treats the first positional token as a subcommand, so argv is rewritten before parsing.
// Persistent flags may come first, so the first positional token is located rather than argv[1].
func rewriteDirectReportLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}
	valueFlags := map[string]bool{
		"--dir":       true,
		"--backend":   true,
		"--format":    true,
		"--log-level": true,
		"--env-file":  true,
	}
	insertAt := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "reports", "show")
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isReportID(argv[i+1]) {
				return insertAt(i)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			// Unknown flags are skipped without consuming a value so the id is never swallowed.
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isReportID(a) {
			return insertAt(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectReportLookupArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
