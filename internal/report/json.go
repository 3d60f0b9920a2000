package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/pageocr/internal/apperr"
	"github.com/nao1215/pageocr/internal/model"
)

// JSONWriter outputs page results and run history as JSON.
// Output is compact unless an indent option is given, and every document
// ends with a newline.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WritePage outputs one page's recognition result.
func (w *JSONWriter) WritePage(page *model.Page) (int, error) {
	return w.writeJSON(page)
}

// WriteHistory outputs the runs as a JSON array.
func (w *JSONWriter) WriteHistory(runs []model.Run) (int, error) {
	if runs == nil {
		runs = []model.Run{}
	}
	return w.writeJSON(runs)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, apperr.Encoding("marshal json", err)
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// PageEncoder serializes page results to the <page>.json artifact format.
type PageEncoder struct {
	opts []JSONWriterOption
}

// NewPageEncoder creates a PageEncoder. When pretty is true the output is
// indented with two spaces.
func NewPageEncoder(pretty bool) *PageEncoder {
	e := &PageEncoder{}
	if pretty {
		e.opts = append(e.opts, WithPrettyPrint())
	}
	return e
}

// EncodePage returns the JSON document for page. A nil page encodes as an
// empty result rather than JSON null.
func (e *PageEncoder) EncodePage(page *model.Page) ([]byte, error) {
	if page == nil {
		page = model.NewPage(model.Size{}, nil)
	}
	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, e.opts...).WritePage(page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
