// Package ocr adapts recognition engines to the page pipeline.
//
// Engines expose two independent capabilities. A RegionRecognizer returns
// ranked candidates per detected text region with optional normalized
// boxes; a TranscriptRecognizer returns one reading-order string per page.
// The extractors in this package call them once per raster, keep the top
// candidate of each region, and convert boxes into raster pixel space.
package ocr

import (
	"context"
	"errors"
	"image"

	"golang.org/x/text/language"
)

// ErrNoRecognizer is returned when an extractor is built without an engine.
var ErrNoRecognizer = errors.New("no recognizer configured")

// NormalizedRect is a box in the unit square with the origin at the
// bottom-left corner, the convention of the recognition engines.
type NormalizedRect struct {
	X, Y, Width, Height float64
}

// MaxY returns the top edge of the box.
func (r NormalizedRect) MaxY() float64 { return r.Y + r.Height }

// Candidate is one recognition hypothesis for a region.
type Candidate struct {
	Text       string
	Confidence float64

	// Box covers the candidate's full text span. Nil when the engine could
	// not resolve one.
	Box *NormalizedRect
}

// Region is a detected text region. Candidates are ranked best first.
type Region struct {
	Candidates []Candidate
}

// Top returns the highest ranked candidate.
func (r Region) Top() (Candidate, bool) {
	if len(r.Candidates) == 0 {
		return Candidate{}, false
	}
	return r.Candidates[0], true
}

// RegionRecognizer detects text regions in an image. Empty locales let the
// engine use its default languages.
type RegionRecognizer interface {
	RecognizeRegions(ctx context.Context, img image.Image, locales []language.Tag) ([]Region, error)
}

// TranscriptRecognizer produces a reading-order transcript of an image
// using text-only recognition.
type TranscriptRecognizer interface {
	RecognizeText(ctx context.Context, img image.Image, locales []language.Tag) (string, error)
}

// Engine is a recognition backend that offers both capabilities.
type Engine interface {
	RegionRecognizer
	TranscriptRecognizer

	// Name identifies the engine in logs and run history.
	Name() string

	// Close releases engine resources.
	Close() error
}
