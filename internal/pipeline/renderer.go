package pipeline

import (
	"fmt"
	"os"

	"cibrief/internal/report"
)

// Renderer persists reviewed reports. It refuses to write anything for a
// result whose verdict failed; a report with violations never reaches
// disk.
type Renderer struct {
	verbose bool
}

// NewRenderer creates a renderer.
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{verbose: verbose}
}

func (r *Renderer) gate(res *Result) error {
	if !res.Verdict.Passed {
		return fmt.Errorf("report %s failed review with %d violations, refusing to render",
			res.Report.ID, len(res.Verdict.Violations))
	}
	return nil
}

// RenderJSON writes the machine-readable sidecar.
func (r *Renderer) RenderJSON(res *Result, path string) error {
	if err := r.gate(res); err != nil {
		return err
	}
	data, err := report.Sidecar(res.Report)
	if err != nil {
		return fmt.Errorf("render JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("render JSON: %w", err)
	}
	if r.verbose {
		fmt.Printf("✓ Wrote JSON: %s\n", path)
	}
	return nil
}

// RenderMarkdown writes the human-readable brief.
func (r *Renderer) RenderMarkdown(res *Result, path string) error {
	if err := r.gate(res); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(res.Report.Markdown), 0o644); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	if r.verbose {
		fmt.Printf("✓ Wrote Markdown: %s\n", path)
	}
	return nil
}

// RenderSummary prints a one-screen result to stdout. Unlike the file
// renderers it also reports failed verdicts, so operators see what the
// critic objected to.
func (r *Renderer) RenderSummary(res *Result) {
	rep := res.Report
	fmt.Printf("\nBrief: %s\n", rep.Query)
	fmt.Printf("  Program:  %s\n", rep.ProgramName)
	fmt.Printf("  Facts:    %d\n", rep.Trace.TotalFacts)
	fmt.Printf("  Signals:  %d\n", rep.Trace.TotalSignals)
	fmt.Printf("  Actions:  %d\n", rep.Trace.TotalActions)
	fmt.Printf("  Citation coverage:    %.0f%%\n", rep.Trace.CitationCoverage*100)
	fmt.Printf("  Numeric traceability: %.0f%%\n", rep.Trace.NumericTraceability*100)
	if res.Verdict.Passed {
		fmt.Println("  Review:   PASSED")
		return
	}
	fmt.Printf("  Review:   FAILED (%d violations)\n", len(res.Verdict.Violations))
	for _, v := range res.Verdict.Violations {
		fmt.Printf("    - [%s] %s: %s\n", v.Gate, v.Location, v.Message)
	}
}
