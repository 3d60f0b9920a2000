package tesseract

import (
	"image"
	"math"
	"reflect"
	"testing"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/text/language"

	"github.com/nao1215/pageocr/internal/model"
	"github.com/nao1215/pageocr/internal/ocr"
)

// TestLanguageCodes tests the locale to traineddata mapping.
func TestLanguageCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		locales []string
		want    []string
	}{
		{name: "no locales", locales: nil, want: []string{}},
		{name: "english variants collapse", locales: []string{"en", "en-US", "en-GB"}, want: []string{"eng"}},
		{name: "order is kept", locales: []string{"ja", "en", "de"}, want: []string{"jpn", "eng", "deu"}},
		{name: "simplified chinese", locales: []string{"zh-CN"}, want: []string{"chi_sim"}},
		{name: "traditional chinese", locales: []string{"zh-TW"}, want: []string{"chi_tra"}},
		{name: "explicit script", locales: []string{"zh-Hant-HK", "sr-Latn"}, want: []string{"chi_tra", "srp_latn"}},
		{name: "french and dutch", locales: []string{"fr-CA", "nl"}, want: []string{"fra", "nld"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tags := make([]language.Tag, len(tt.locales))
			for i, l := range tt.locales {
				tags[i] = language.MustParse(l)
			}

			if got := LanguageCodes(tags); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LanguageCodes(%v) = %v, want %v", tt.locales, got, tt.want)
			}
		})
	}
}

// TestRegionsFromBoxes tests conversion of tesseract line boxes.
func TestRegionsFromBoxes(t *testing.T) {
	t.Parallel()

	size := model.Size{Width: 1000, Height: 2000}
	boxes := []gosseract.BoundingBox{
		{Box: image.Rect(100, 1600, 300, 1800), Word: " Hello world\n", Confidence: 91},
		{Box: image.Rect(0, 0, 10, 10), Word: "   ", Confidence: 10},
		{Box: image.Rectangle{}, Word: "boxless", Confidence: 50},
	}

	regions := regionsFromBoxes(boxes, image.Point{}, size)
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}

	first := regions[0].Candidates[0]
	if first.Text != "Hello world" || math.Abs(first.Confidence-0.91) > 1e-9 {
		t.Errorf("unexpected first candidate: %+v", first)
	}
	if first.Box == nil {
		t.Fatal("expected a box for the first line")
	}
	want := ocr.NormalizedRect{X: 0.1, Y: 0.1, Width: 0.2, Height: 0.1}
	if !nearlyEqual(*first.Box, want) {
		t.Errorf("normalized box = %+v, want %+v", *first.Box, want)
	}

	// Converting back yields the original pixel rectangle.
	px := ocr.ToPixelRect(*first.Box, size)
	if math.Abs(px.X-100) > 1e-9 || math.Abs(px.Y-1600) > 1e-9 {
		t.Errorf("pixel rect = %+v", px)
	}

	if regions[1].Candidates[0].Box != nil {
		t.Error("expected an empty box to resolve to nil")
	}
}

func nearlyEqual(a, b ocr.NormalizedRect) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.Width-b.Width) < eps && math.Abs(a.Height-b.Height) < eps
}

// TestEngineName tests engine identity.
func TestEngineName(t *testing.T) {
	t.Parallel()

	e := New(WithTessdataPrefix("/usr/share/tessdata"))
	if e.Name() != "tesseract" {
		t.Errorf("Name() = %s", e.Name())
	}
	if e.tessdataPrefix != "/usr/share/tessdata" {
		t.Errorf("tessdata prefix not applied: %s", e.tessdataPrefix)
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
