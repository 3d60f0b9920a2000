// Package pdftest builds small, valid PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Letter is the US Letter MediaBox in points.
var Letter = []float64{0, 0, 612, 792}

// Document describes a PDF to build.
type Document struct {
	// MediaBox, when set, is written on the page tree root and inherited by
	// pages that do not define their own.
	MediaBox []float64

	Pages []Page
}

// Page describes one page.
type Page struct {
	MediaBox []float64
	CropBox  []float64
	Rotate   int

	// Content is the raw content stream, e.g. "0 g 0 0 100 100 re f".
	Content string
}

// Bytes serializes the document with a classic cross-reference table.
func (d Document) Bytes() []byte {
	var buf bytes.Buffer
	offsets := []int{}

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	kids := make([]string, len(d.Pages))
	for i := range d.Pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}

	obj("<< /Type /Catalog /Pages 2 0 R >>")

	root := fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d", strings.Join(kids, " "), len(d.Pages))
	if d.MediaBox != nil {
		root += " /MediaBox " + array(d.MediaBox)
	}
	obj(root + " >>")

	for i, p := range d.Pages {
		dict := "<< /Type /Page /Parent 2 0 R"
		if p.MediaBox != nil {
			dict += " /MediaBox " + array(p.MediaBox)
		}
		if p.CropBox != nil {
			dict += " /CropBox " + array(p.CropBox)
		}
		if p.Rotate != 0 {
			dict += " /Rotate " + strconv.Itoa(p.Rotate)
		}
		dict += fmt.Sprintf(" /Resources << >> /Contents %d 0 R >>", 4+2*i)
		obj(dict)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(p.Content), p.Content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

// WriteFile writes d to name inside a test temp dir and returns the path.
func (d Document) WriteFile(t testing.TB, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, d.Bytes(), 0o600); err != nil {
		t.Fatalf("write test pdf: %v", err)
	}
	return path
}

// Blank returns a document of n empty pages with the given MediaBox.
func Blank(n int, mediaBox []float64) Document {
	d := Document{Pages: make([]Page, n)}
	for i := range d.Pages {
		d.Pages[i].MediaBox = mediaBox
	}
	return d
}

func array(v []float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
