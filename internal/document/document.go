// Package document opens PDF files for rendering.
//
// Drawing is done by MuPDF through go-fitz. Page boundaries come from the
// page dictionaries themselves, read with rsc.io/pdf, because go-fitz
// only reports integer bounds and the raster size must be the ceiling of
// the exact fractional boundary. When the dictionaries cannot be read the
// MuPDF bounds are used instead.
package document

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/image/draw"
	"rsc.io/pdf"

	"github.com/nao1215/pageocr/internal/apperr"
	"github.com/nao1215/pageocr/internal/render"
)

// pointsPerInch is the PDF user space unit: ratio 1.0 renders at 72 DPI.
const pointsPerInch = 72.0

// ErrPageOutOfRange is returned when a page index is outside [1, NumPages].
var ErrPageOutOfRange = errors.New("page index out of range")

// Document is an open PDF. It is not safe for concurrent use.
type Document struct {
	path        string
	doc         *fitz.Document
	numPages    int
	geometries  []geometry
	fingerprint string
	logger      *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Option configures Open.
type Option func(*Document)

// WithLogger sets the logger used for backend fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Open opens the PDF at path. Failures are resource initialization errors.
func Open(path string, opts ...Option) (*Document, error) {
	d := &Document{path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}

	f, err := os.Open(path) //nolint:gosec // user-provided input path is intentional
	if err != nil {
		return nil, apperr.ResourceInit("open document", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, apperr.ResourceInit("stat document", err)
	}

	d.fingerprint, err = fingerprint(io.NewSectionReader(f, 0, info.Size()))
	if err != nil {
		return nil, apperr.ResourceInit("fingerprint document", err)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, apperr.ResourceInit("load document", err)
	}
	d.doc = doc
	d.numPages = doc.NumPage()

	geoms, err := readGeometries(f, info.Size())
	switch {
	case err != nil:
		d.logger.Debug("page boxes unavailable, using renderer bounds", "path", path, "error", err)
	case len(geoms) != d.numPages:
		d.logger.Debug("page count mismatch, using renderer bounds",
			"path", path, "boxes", len(geoms), "pages", d.numPages)
	default:
		d.geometries = geoms
	}

	return d, nil
}

// Path returns the file path the document was opened from.
func (d *Document) Path() string { return d.path }

// NumPages returns the number of pages.
func (d *Document) NumPages() int { return d.numPages }

// Fingerprint returns the hex BLAKE2b-256 digest of the file contents.
func (d *Document) Fingerprint() string { return d.fingerprint }

// Page returns the page at the 1-based index.
func (d *Document) Page(index int) (render.Page, error) {
	if index < 1 || index > d.numPages {
		return nil, apperr.Render("fetch page",
			fmt.Errorf("%w: %d not in [1, %d]", ErrPageOutOfRange, index, d.numPages)).WithPage(index)
	}

	p := &Page{doc: d, index: index}
	if d.geometries != nil {
		g := d.geometries[index-1]
		p.width, p.height = g.width, g.height
		return p, nil
	}

	b, err := d.doc.Bound(index - 1)
	if err != nil {
		return nil, apperr.Render("fetch page", err).WithPage(index)
	}
	p.width, p.height = float64(b.Dx()), float64(b.Dy())
	return p, nil
}

// Close releases the MuPDF document. It is safe to call more than once.
func (d *Document) Close() error {
	d.closeOnce.Do(func() {
		if d.doc != nil {
			d.closeErr = d.doc.Close()
		}
	})
	return d.closeErr
}

// Page is one page of a Document.
type Page struct {
	doc           *Document
	index         int
	width, height float64
}

// Index returns the 1-based page index.
func (p *Page) Index() int { return p.index }

// Boundary returns the visible page extent in points.
func (p *Page) Boundary() (float64, float64) { return p.width, p.height }

// Draw renders the page with MuPDF at ratio and composites the result onto
// canvas. MuPDF rounds its pixmap bounds, so a one pixel difference from the
// canvas is clipped; larger differences are resampled to fit.
func (p *Page) Draw(canvas *image.RGBA, ratio float64) error {
	img, err := p.doc.doc.ImageDPI(p.index-1, pointsPerInch*ratio)
	if err != nil {
		return fmt.Errorf("rasterize page %d: %w", p.index, err)
	}

	src := img.Bounds()
	dst := canvas.Bounds()
	if abs(src.Dx()-dst.Dx()) <= 1 && abs(src.Dy()-dst.Dy()) <= 1 {
		draw.Draw(canvas, dst, img, src.Min, draw.Over)
		return nil
	}
	draw.BiLinear.Scale(canvas, dst, img, src, draw.Over, nil)
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// FingerprintFile returns the Fingerprint a document at path would have,
// without parsing it.
func FingerprintFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided input path is intentional
	if err != nil {
		return "", err
	}
	defer f.Close()

	return fingerprint(f)
}

// fingerprint hashes r with BLAKE2b-256.
func fingerprint(r io.Reader) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// readGeometries reads the visible size of every page from the page tree.
// rsc.io/pdf panics on some malformed inputs; those become errors.
func readGeometries(r io.ReaderAt, size int64) (geoms []geometry, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			geoms, err = nil, fmt.Errorf("parse page tree: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	n := reader.NumPage()
	geoms = make([]geometry, 0, n)
	for i := 1; i <= n; i++ {
		g, ok := pageGeometry(reader.Page(i).V)
		if !ok {
			return nil, fmt.Errorf("page %d has no usable MediaBox", i)
		}
		geoms = append(geoms, g)
	}
	return geoms, nil
}
