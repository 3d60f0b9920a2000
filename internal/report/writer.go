package report

import (
	"io"

	"github.com/nao1215/pageocr/internal/model"
)

// HistoryWriter writes recorded conversion runs in some output format.
type HistoryWriter interface {
	// WriteHistory outputs runs, newest first as given.
	// Returns the number of bytes written and any error encountered.
	WriteHistory(runs []model.Run) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// orDash substitutes "-" for empty table cells.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
