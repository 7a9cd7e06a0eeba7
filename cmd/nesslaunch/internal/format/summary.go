// cmd/nesslaunch/internal/format/summary.go
// Package format renders CLI output for batch results.
package format

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Summary represents one batch's per-scan results for display.
type Summary struct {
	Launched int           // Scans that launched successfully
	Failed   int           // Scans that exhausted their retries
	Faulted  int           // Tasks that did not run to completion
	Errors   []ErrorDetail // One entry per failed scan
}

// ErrorDetail represents a single failed scan with context.
type ErrorDetail struct {
	ScanID uint32
	Error  string
}

const maxErrorsToShow = 5 // Maximum errors to display before truncating

// PrintBatchSummary writes a human-readable batch summary.
// Example output:
//
//	Summary:
//	  ✓ Launched: 2 scans
//	  ✗ Failed:   1 scan
//
//	Failed scans:
//	  - 8: scan 8 launch failed with status 403
func PrintBatchSummary(w io.Writer, s Summary, colorize bool) error {
	green := sprintFunc(color.FgGreen, colorize)
	red := sprintFunc(color.FgRed, colorize)

	if _, err := fmt.Fprintln(w, "Summary:"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %s Launched: %d %s\n", green("✓"), s.Launched, pluralScans(s.Launched)); err != nil {
		return err
	}
	if s.Failed > 0 {
		if _, err := fmt.Fprintf(w, "  %s Failed:   %d %s\n", red("✗"), s.Failed, pluralScans(s.Failed)); err != nil {
			return err
		}
	}
	if s.Faulted > 0 {
		if _, err := fmt.Fprintf(w, "  %s Faulted:  %d %s\n", red("✗"), s.Faulted, pluralTasks(s.Faulted)); err != nil {
			return err
		}
	}

	if len(s.Errors) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w, "\nFailed scans:"); err != nil {
		return err
	}
	shown := s.Errors
	if len(shown) > maxErrorsToShow {
		shown = shown[:maxErrorsToShow]
	}
	for _, e := range shown {
		if _, err := fmt.Fprintf(w, "  - %d: %s\n", e.ScanID, e.Error); err != nil {
			return err
		}
	}
	if truncated := len(s.Errors) - len(shown); truncated > 0 {
		if _, err := fmt.Fprintf(w, "  ... and %d more\n", truncated); err != nil {
			return err
		}
	}

	return nil
}

func sprintFunc(attr color.Attribute, colorize bool) func(a ...interface{}) string {
	if !colorize {
		return fmt.Sprint
	}
	return color.New(attr).SprintFunc()
}

func pluralScans(n int) string {
	if n == 1 {
		return "scan"
	}
	return "scans"
}

func pluralTasks(n int) string {
	if n == 1 {
		return "task"
	}
	return "tasks"
}
