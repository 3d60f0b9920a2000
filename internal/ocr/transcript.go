package ocr

import (
	"context"
	"image"

	"golang.org/x/text/language"

	"github.com/nao1215/pageocr/internal/apperr"
)

// TranscriptExtractor produces the page transcript. It blocks until the
// engine returns.
type TranscriptExtractor struct {
	rec     TranscriptRecognizer
	locales []language.Tag
}

// NewTranscriptExtractor creates a TranscriptExtractor over rec.
func NewTranscriptExtractor(rec TranscriptRecognizer, locales []language.Tag) (*TranscriptExtractor, error) {
	if rec == nil {
		return nil, apperr.ResourceInit("new transcript extractor", ErrNoRecognizer)
	}
	return &TranscriptExtractor{rec: rec, locales: locales}, nil
}

// Extract returns the transcript of img. Line breaks and layout are
// whatever the engine produces.
func (e *TranscriptExtractor) Extract(ctx context.Context, img *image.RGBA) (string, error) {
	text, err := e.rec.RecognizeText(ctx, img, e.locales)
	if err != nil {
		return "", apperr.OCR("recognize text", err)
	}
	return text, nil
}
