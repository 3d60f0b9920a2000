package ocr

import (
	"context"
	"image"
	"log/slog"
	"math"

	"golang.org/x/text/language"

	"github.com/nao1215/pageocr/internal/apperr"
	"github.com/nao1215/pageocr/internal/model"
)

// RegionExtractor turns region recognition results into page items.
type RegionExtractor struct {
	rec     RegionRecognizer
	locales []language.Tag
	logger  *slog.Logger
}

// NewRegionExtractor creates a RegionExtractor over rec.
func NewRegionExtractor(rec RegionRecognizer, locales []language.Tag, logger *slog.Logger) (*RegionExtractor, error) {
	if rec == nil {
		return nil, apperr.ResourceInit("new region extractor", ErrNoRecognizer)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RegionExtractor{rec: rec, locales: locales, logger: logger}, nil
}

// Extract recognizes img and returns one item per region in engine order.
// Only the top candidate of each region is kept. Items whose box cannot be
// resolved carry a nil Rect.
func (e *RegionExtractor) Extract(ctx context.Context, img *image.RGBA) ([]model.Item, error) {
	regions, err := e.rec.RecognizeRegions(ctx, img, e.locales)
	if err != nil {
		return nil, apperr.OCR("recognize regions", err)
	}

	b := img.Bounds()
	size := model.Size{Width: b.Dx(), Height: b.Dy()}

	items := make([]model.Item, 0, len(regions))
	for i, region := range regions {
		top, ok := region.Top()
		if !ok {
			e.logger.Debug("skipping region without candidates", "region", i)
			continue
		}
		item := model.Item{Text: top.Text}
		if top.Box != nil && finite(*top.Box) {
			r := ToPixelRect(*top.Box, size)
			item.Rect = &r
		}
		items = append(items, item)
	}
	return items, nil
}

// ToPixelRect converts a normalized box (unit square, bottom-left origin)
// into pixel space (origin top-left) for a raster of the given size.
func ToPixelRect(n NormalizedRect, size model.Size) model.Rect {
	w := float64(size.Width)
	h := float64(size.Height)
	return model.Rect{
		X:      n.X * w,
		Y:      h - n.MaxY()*h,
		Width:  n.Width * w,
		Height: n.Height * h,
	}
}

// FromPixelRect is the inverse of ToPixelRect. Engines that report pixel
// boxes use it to produce normalized boxes.
func FromPixelRect(r image.Rectangle, size model.Size) NormalizedRect {
	w := float64(size.Width)
	h := float64(size.Height)
	return NormalizedRect{
		X:      float64(r.Min.X) / w,
		Y:      (h - float64(r.Max.Y)) / h,
		Width:  float64(r.Dx()) / w,
		Height: float64(r.Dy()) / h,
	}
}

func finite(r NormalizedRect) bool {
	for _, v := range [...]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
