package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/pageocr/internal/model"
)

// MarkdownWriter outputs run history in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteHistory outputs the runs as a Markdown document.
func (w *MarkdownWriter) WriteHistory(runs []model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("pageocr Run History")
	md.PlainText("")

	if len(runs) == 0 {
		md.Note("No runs recorded.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	w.writeSummary(md, runs)
	w.writeRuns(md, runs)
	w.writeFailures(md, runs)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeSummary writes the status table, chart and alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, runs []model.Run) {
	counts := countStatuses(runs)

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Runs"},
		Rows: [][]string{
			{"✅ Succeeded", strconv.Itoa(counts[model.RunSucceeded])},
			{"❌ Failed", strconv.Itoa(counts[model.RunFailed])},
			{"⏹️ Canceled", strconv.Itoa(counts[model.RunCanceled])},
			{"⏳ Running", strconv.Itoa(counts[model.RunRunning])},
			{"**Total**", "**" + strconv.Itoa(len(runs)) + "**"},
		},
	})
	md.PlainText("")

	if len(counts) > 1 {
		w.writePieChart(md, counts)
	}

	if failed := counts[model.RunFailed]; failed > 0 {
		md.Warningf("%d of %d run(s) failed.", failed, len(runs))
		md.PlainText("")
	}
}

// writePieChart writes a mermaid pie chart of run outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.RunStatus]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Run Outcomes"),
		piechart.WithShowData(true),
	)

	for _, s := range []model.RunStatus{model.RunSucceeded, model.RunFailed, model.RunCanceled, model.RunRunning} {
		if n := counts[s]; n > 0 {
			chart.LabelAndIntValue(s.String(), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeRuns writes one table row per run.
func (w *MarkdownWriter) writeRuns(md *markdown.Markdown, runs []model.Run) {
	md.H2("Runs")
	md.PlainText("")

	rows := make([][]string, len(runs))
	for i := range runs {
		run := &runs[i]
		duration := "-"
		if d := run.Duration(); d > 0 {
			duration = d.Round(time.Millisecond).String()
		}
		rows[i] = []string{
			run.StartedAt.Format(timeLayout),
			"`" + truncateString(run.Input, 40) + "`",
			orDash(run.Engine),
			pagesText(run),
			run.Status.String(),
			duration,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Started", "Input", "Engine", "Pages", "Status", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailures writes the error of every failed run in a details block.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, runs []model.Run) {
	for i := range runs {
		if runs[i].Error == "" {
			continue
		}
		md.Details(runs[i].ID, runs[i].Error)
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [pageocr](https://github.com/nao1215/pageocr) at %s*", time.Now().Format(timeLayout))
}
