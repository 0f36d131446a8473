package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jonathan/jobtracker/internal/orchestrator"
	"github.com/jonathan/jobtracker/internal/types"
)

func printSources(w io.Writer, sources []types.JobSource) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tACTIVE\tINTERVAL\tJOBS\tLAST SCRAPED")
	for _, s := range sources {
		last := "never"
		if s.LastScraped != nil {
			last = s.LastScraped.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\t%d\t%s\n", s.Name, s.IsActive, s.Interval(), s.TotalJobsScraped, last)
	}
	_ = tw.Flush()
}

func printResults(w io.Writer, results []types.RunResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tSTATUS\tCREATED\tUPDATED\tDUPLICATES\tINVALID\tFAILED\tDURATION")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n", r.Source, resultStatus(&r),
			r.Stats.Created, r.Stats.Updated, r.Stats.Duplicates, r.Stats.Invalid, r.Stats.Failed, r.Duration)
	}
	_ = tw.Flush()
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "%s: %s\n", r.Source, r.Error)
		}
	}
}

func resultStatus(r *types.RunResult) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Success:
		return "ok"
	default:
		return "failed"
	}
}

func printJobs(w io.Writer, jobs []types.Job) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EXTERNAL ID\tTITLE\tLOCATION\tTYPE\tSALARY\tURL")
	for i := range jobs {
		j := &jobs[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", j.ExternalID, j.Title, j.Location, j.JobType, j.SalaryDisplay(), j.URL)
	}
	_ = tw.Flush()
}

func printStatus(w io.Writer, status *orchestrator.Status) {
	fmt.Fprintf(w, "Jobs: %d total, %d active\n\n", status.TotalJobs, status.ActiveJobs)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tACTIVE\tJOBS\tLAST RUN\tFINISHED\tERROR")
	for _, s := range status.Sources {
		run, finished, errText := "-", "-", ""
		if s.LastRun != nil {
			run = resultStatus(s.LastRun)
			finished = s.LastRun.FinishedAt.Format(time.RFC3339)
			errText = s.LastRun.Error
		}
		fmt.Fprintf(tw, "%s\t%t\t%d\t%s\t%s\t%s\n", s.Source.Name, s.Source.IsActive, s.Source.TotalJobsScraped, run, finished, errText)
	}
	_ = tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
