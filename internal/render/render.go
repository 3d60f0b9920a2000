// Package render turns document pages into raster images.
//
// A Renderer sizes the raster from the page boundary and the scale ratio,
// paints it opaque white, and lets the page draw itself on top. The page is
// consumed through the small Page interface so any document backend (or a
// test double) can be rendered.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"

	"github.com/nao1215/pageocr/internal/apperr"
	"github.com/nao1215/pageocr/internal/model"
)

// DefaultMaxPixels caps a single raster at 2^28 pixels (1 GiB of RGBA).
const DefaultMaxPixels int64 = 1 << 28

var (
	// ErrInvalidRatio is returned when the scale ratio is not a finite
	// positive number.
	ErrInvalidRatio = errors.New("ratio must be a finite number greater than 0")

	// ErrInvalidBoundary is returned when a page reports a non-finite boundary.
	ErrInvalidBoundary = errors.New("page boundary is not finite")

	// ErrRasterTooLarge is returned when the raster would exceed the pixel cap.
	ErrRasterTooLarge = errors.New("raster exceeds pixel limit")
)

// Page is a document page that can be rasterized.
type Page interface {
	// Boundary returns the page extent in document units.
	Boundary() (width, height float64)

	// Draw paints the page onto canvas, scaling document units by ratio.
	// The canvas is already sized and filled with white.
	Draw(canvas *image.RGBA, ratio float64) error
}

// Renderer rasterizes pages at a fixed ratio.
type Renderer struct {
	ratio     float64
	maxPixels int64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMaxPixels sets the pixel cap for a single raster. Values <= 0 keep
// the default.
func WithMaxPixels(n int64) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxPixels = n
		}
	}
}

// NewRenderer creates a Renderer. The ratio must be finite and > 0;
// anything else is a configuration error.
func NewRenderer(ratio float64, opts ...Option) (*Renderer, error) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return nil, apperr.Configuration("new renderer", fmt.Errorf("%w: got %v", ErrInvalidRatio, ratio))
	}
	r := &Renderer{ratio: ratio, maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Ratio returns the scale factor.
func (r *Renderer) Ratio() float64 {
	return r.ratio
}

// Render produces a white-backed raster of page. Every failure is a render
// error; no partial raster is returned.
func (r *Renderer) Render(page Page) (*image.RGBA, error) {
	w, h := page.Boundary()
	if math.IsNaN(w) || math.IsNaN(h) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return nil, apperr.Render("size raster", fmt.Errorf("%w: %vx%v", ErrInvalidBoundary, w, h))
	}

	size := RasterSize(w, h, r.ratio)
	if int64(size.Width)*int64(size.Height) > r.maxPixels {
		return nil, apperr.Render("allocate raster",
			fmt.Errorf("%w: %dx%d > %d", ErrRasterTooLarge, size.Width, size.Height, r.maxPixels))
	}

	canvas := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	if err := page.Draw(canvas, r.ratio); err != nil {
		return nil, apperr.Render("draw page", err)
	}
	return canvas, nil
}

// RasterSize returns the pixel size of a page boundary of width x height
// document units at ratio: the ceiling of each scaled dimension, at least 1.
func RasterSize(width, height, ratio float64) model.Size {
	return model.Size{
		Width:  scaledDim(width, ratio),
		Height: scaledDim(height, ratio),
	}
}

func scaledDim(v, ratio float64) int {
	d := math.Ceil(v * ratio)
	if !(d >= 1) {
		return 1
	}
	if d > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(d)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperr.Encoding("encode png", err)
	}
	return buf.Bytes(), nil
}
