package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/pageocr/internal/model"
)

// timeLayout is used for run timestamps in text and markdown output.
const timeLayout = "2006-01-02 15:04:05 MST"

// SimpleWriter outputs run history as plain text for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds the document fingerprint and output directory per run.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteHistory outputs the runs followed by a status summary.
func (w *SimpleWriter) WriteHistory(runs []model.Run) (int, error) {
	var sb strings.Builder

	if len(runs) == 0 {
		sb.WriteString("No runs recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}

	for i := range runs {
		w.writeRun(&sb, &runs[i])
	}
	w.writeSummary(&sb, runs)

	return w.output.Write([]byte(sb.String()))
}

// writeRun writes one run as a short block.
func (w *SimpleWriter) writeRun(sb *strings.Builder, run *model.Run) {
	fmt.Fprintf(sb, "[%s] %s  %s\n", statusIndicator(run.Status), run.StartedAt.Format(timeLayout), run.Input)
	fmt.Fprintf(sb, "    ID:     %s\n", run.ID)
	fmt.Fprintf(sb, "    Engine: %s\n", orDash(run.Engine))
	fmt.Fprintf(sb, "    Pages:  %s\n", pagesText(run))
	fmt.Fprintf(sb, "    Status: %s", run.Status)
	if d := run.Duration(); d > 0 {
		fmt.Fprintf(sb, " in %s", d.Round(time.Millisecond))
	}
	sb.WriteString("\n")
	if run.Error != "" {
		fmt.Fprintf(sb, "    Error:  %s\n", run.Error)
	}
	if w.verbose {
		fmt.Fprintf(sb, "    Output: %s\n", orDash(run.OutDir))
		fmt.Fprintf(sb, "    BLAKE2b: %s\n", orDash(run.Fingerprint))
	}
	sb.WriteString("\n")
}

// writeSummary writes run counts per status.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, runs []model.Run) {
	counts := countStatuses(runs)

	sb.WriteString(strings.Repeat("-", 40))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  SUCCEEDED: %d\n", counts[model.RunSucceeded])
	fmt.Fprintf(sb, "  FAILED:    %d\n", counts[model.RunFailed])
	fmt.Fprintf(sb, "  CANCELED:  %d\n", counts[model.RunCanceled])
	fmt.Fprintf(sb, "  RUNNING:   %d\n", counts[model.RunRunning])
	fmt.Fprintf(sb, "  TOTAL:     %d runs\n", len(runs))
}

// statusIndicator returns a short marker for the run status.
func statusIndicator(s model.RunStatus) string {
	switch s {
	case model.RunSucceeded:
		return "ok"
	case model.RunFailed:
		return "!!"
	case model.RunCanceled:
		return "--"
	case model.RunRunning:
		return ".."
	default:
		return "??"
	}
}

// pagesText describes the processed range, e.g. "2-5 of 10 (3 done)".
func pagesText(run *model.Run) string {
	if run.PagesRequested() == 0 {
		return fmt.Sprintf("none of %d", run.TotalPages)
	}
	return fmt.Sprintf("%d-%d of %d (%d done)", run.FirstPage, run.LastPage, run.TotalPages, run.PagesDone)
}

// countStatuses tallies runs per status.
func countStatuses(runs []model.Run) map[model.RunStatus]int {
	counts := make(map[model.RunStatus]int, 4)
	for i := range runs {
		counts[runs[i].Status]++
	}
	return counts
}
