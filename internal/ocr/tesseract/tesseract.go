// Package tesseract runs recognition locally with libtesseract through
// gosseract. A fresh client is created for every call so that language
// settings never leak between pages.
package tesseract

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/text/language"

	"github.com/nao1215/pageocr/internal/model"
	"github.com/nao1215/pageocr/internal/ocr"
	"github.com/nao1215/pageocr/internal/render"
)

// Name is the engine name.
const Name = "tesseract"

var _ ocr.Engine = (*Engine)(nil)

// Engine implements ocr.Engine with tesseract.
type Engine struct {
	clientFactory  func() *gosseract.Client
	tessdataPrefix string
	logger         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTessdataPrefix sets the directory holding *.traineddata files.
func WithTessdataPrefix(dir string) Option {
	return func(e *Engine) { e.tessdataPrefix = dir }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates a tesseract engine.
func New(opts ...Option) *Engine {
	e := &Engine{clientFactory: gosseract.NewClient, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ocr.Engine.
func (e *Engine) Name() string { return Name }

// Close implements ocr.Engine. Clients are closed after each call, so
// there is nothing left to release.
func (e *Engine) Close() error { return nil }

// RecognizeText implements ocr.TranscriptRecognizer.
func (e *Engine) RecognizeText(ctx context.Context, img image.Image, locales []language.Tag) (string, error) {
	c, err := e.prepare(ctx, img, locales)
	if err != nil {
		return "", err
	}
	defer c.Close()

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

// RecognizeRegions implements ocr.RegionRecognizer. Each text line is one
// region with a single candidate.
func (e *Engine) RecognizeRegions(ctx context.Context, img image.Image, locales []language.Tag) ([]ocr.Region, error) {
	c, err := e.prepare(ctx, img, locales)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("recognize lines: %w", err)
	}

	b := img.Bounds()
	return regionsFromBoxes(boxes, b.Min, model.Size{Width: b.Dx(), Height: b.Dy()}), nil
}

func (e *Engine) prepare(ctx context.Context, img image.Image, locales []language.Tag) (*gosseract.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := render.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	c := e.clientFactory()
	if err := e.configure(c, data, locales); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (e *Engine) configure(c *gosseract.Client, data []byte, locales []language.Tag) error {
	if e.tessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if langs := LanguageCodes(locales); len(langs) > 0 {
		e.logger.Debug("tesseract languages", "languages", strings.Join(langs, "+"))
		if err := c.SetLanguage(langs...); err != nil {
			return fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	return nil
}

// regionsFromBoxes converts tesseract line boxes (pixels, top-left origin)
// into regions with normalized boxes. Blank lines are dropped.
func regionsFromBoxes(boxes []gosseract.BoundingBox, origin image.Point, size model.Size) []ocr.Region {
	regions := make([]ocr.Region, 0, len(boxes))
	for _, bb := range boxes {
		text := strings.TrimSpace(bb.Word)
		if text == "" {
			continue
		}

		cand := ocr.Candidate{Text: text, Confidence: bb.Confidence / 100}
		if r := bb.Box.Sub(origin); !r.Empty() {
			n := ocr.FromPixelRect(r, size)
			cand.Box = &n
		}
		regions = append(regions, ocr.Region{Candidates: []ocr.Candidate{cand}})
	}
	return regions
}
