// Package reporter renders scan and clean results for the CLI.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/winjanitor/winjanitor/internal/cleaner"
	"github.com/winjanitor/winjanitor/internal/scanner"
)

// Format selects the output rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Reporter writes results to a stream in one format.
type Reporter struct {
	w      io.Writer
	format Format
}

// New builds a Reporter.
func New(w io.Writer, format Format) *Reporter {
	return &Reporter{w: w, format: format}
}

type scanReportJSON struct {
	Categories    map[string]categoryJSON `json:"categories"`
	TotalCount    int                     `json:"total_count"`
	TotalSize     int64                   `json:"total_size"`
	DurationMS    int64                   `json:"duration_ms"`
	Errors        []string                `json:"errors,omitempty"`
	RequiresAdmin bool                    `json:"requires_admin"`
	Inaccessible  []string                `json:"inaccessible_categories,omitempty"`
}

type categoryJSON struct {
	Count int   `json:"count"`
	Size  int64 `json:"size"`
}

// ScanReport renders a scan result.
func (r *Reporter) ScanReport(res *scanner.ScanResult) error {
	if r.format == FormatJSON {
		out := scanReportJSON{
			Categories:    make(map[string]categoryJSON),
			TotalCount:    res.TotalCount,
			TotalSize:     res.TotalSize,
			DurationMS:    res.Duration.Milliseconds(),
			Errors:        res.Errors,
			RequiresAdmin: res.RequiresAdmin,
		}
		for cat, files := range res.Categories {
			var size int64
			for _, f := range files {
				size += f.Size
			}
			out.Categories[cat.String()] = categoryJSON{Count: len(files), Size: size}
		}
		for _, cat := range res.Inaccessible {
			out.Inaccessible = append(out.Inaccessible, cat.String())
		}
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tFILES\tSIZE")
	for _, cat := range scanner.AllCategories() {
		files, ok := res.Categories[cat]
		if !ok {
			continue
		}
		var size int64
		for _, f := range files {
			size += f.Size
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", cat.Label(), len(files), FormatBytes(size))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(r.w, "\nTotal: %d files, %s (%s)\n",
		res.TotalCount, FormatBytes(res.TotalSize), res.Duration.Round(durationRound))
	if res.RequiresAdmin {
		fmt.Fprintln(r.w, "Some categories need administrator privileges; run elevated to scan them:")
		for _, cat := range res.Inaccessible {
			fmt.Fprintf(r.w, "  - %s\n", cat.Label())
		}
	}
	for _, e := range res.Errors {
		fmt.Fprintf(r.w, "warning: %s\n", e)
	}
	return nil
}

type cleanReportJSON struct {
	SuccessCount int              `json:"success_count"`
	FailedCount  int              `json:"failed_count"`
	FreedBytes   int64            `json:"freed_bytes"`
	DurationMS   int64            `json:"duration_ms"`
	FailedFiles  []failedFileJSON `json:"failed_files,omitempty"`
}

type failedFileJSON struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// CleanReport renders a clean result.
func (r *Reporter) CleanReport(res *cleaner.CleanResult) error {
	if r.format == FormatJSON {
		out := cleanReportJSON{
			SuccessCount: res.SuccessCount,
			FailedCount:  res.FailedCount,
			FreedBytes:   res.FreedBytes,
			DurationMS:   res.Duration.Milliseconds(),
		}
		for _, f := range res.FailedFiles {
			out.FailedFiles = append(out.FailedFiles, failedFileJSON{Path: f.Path, Reason: f.Reason})
		}
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(r.w, "Deleted %d files, freed %s (%s)\n",
		res.SuccessCount, FormatBytes(res.FreedBytes), res.Duration.Round(durationRound))
	if res.FailedCount > 0 {
		fmt.Fprintf(r.w, "%d files could not be deleted:\n", res.FailedCount)
		for _, f := range res.FailedFiles {
			fmt.Fprintf(r.w, "  %s: %s\n", f.Path, f.Reason)
		}
	}
	return nil
}
