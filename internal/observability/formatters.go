// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/jobtracker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// PrintRunResult outputs the outcome and item counts of one scrape run.
func (p *Printer) PrintRunResult(result *types.RunResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	status := "succeeded"
	switch {
	case result.Skipped:
		status = "skipped (too soon since last scrape)"
	case !result.Success:
		status = "failed"
	}
	sb.WriteString(fmt.Sprintf("Status:   %s\n", status))
	if result.Duration != "" {
		sb.WriteString(fmt.Sprintf("Duration: %s\n", result.Duration))
	}
	if result.Error != "" {
		sb.WriteString(fmt.Sprintf("Error:    %s\n", result.Error))
	}

	s := result.Stats
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Pages:      %d listing, %d detail\n", s.ListingPages, s.DetailPages))
	sb.WriteString(fmt.Sprintf("Extracted:  %d\n", s.Extracted))
	sb.WriteString(fmt.Sprintf("Dropped:    %d duplicate, %d invalid\n", s.Duplicates, s.Invalid))
	sb.WriteString(fmt.Sprintf("Saved:      %d created, %d updated\n", s.Created, s.Updated))
	sb.WriteString(fmt.Sprintf("Failed:     %d", s.Failed))

	p.printBox("SCRAPE RUN: "+result.Source, sb.String())
}

// PrintJob outputs a human-readable summary of a stored job.
func (p *Printer) PrintJob(job *types.Job) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", job.Title))
	sb.WriteString(fmt.Sprintf("ID:       %s\n", job.ExternalID))
	if job.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s (%s)\n", job.Location, job.RemoteType))
	}
	sb.WriteString(fmt.Sprintf("Type:     %s\n", job.JobType))
	sb.WriteString(fmt.Sprintf("Salary:   %s\n", job.SalaryDisplay()))
	sb.WriteString(fmt.Sprintf("Posted:   %s (%d days ago)\n", job.PostedDate.Format("2006-01-02"), job.AgeInDays(time.Now().UTC())))

	writeList(&sb, "Tags", job.Tags)
	writeList(&sb, "Skills", job.Skills)

	p.printBox("JOB", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobs prints the first few jobs and a count of the rest.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintJobs(jobs []types.Job) {
	count := min(len(jobs), maxItemsToShow)
	for i := 0; i < count; i++ {
		p.PrintJob(&jobs[i])
	}
	if len(jobs) > maxItemsToShow {
		fmt.Fprintf(p.out, "... and %d more jobs\n", len(jobs)-maxItemsToShow)
	}
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	count := min(len(items), maxItemsToShow)
	sb.WriteString(fmt.Sprintf("%s: %s", label, strings.Join(items[:count], ", ")))
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf(" (+%d more)", len(items)-maxItemsToShow))
	}
	sb.WriteString("\n")
}
