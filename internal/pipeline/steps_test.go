package pipeline

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/pageocr/internal/apperr"
	"github.com/nao1215/pageocr/internal/model"
	"github.com/nao1215/pageocr/internal/output"
	"github.com/nao1215/pageocr/internal/render"
	"github.com/nao1215/pageocr/internal/report"
)

// fakePage is a blank page of a fixed size in points.
type fakePage struct {
	w, h    float64
	drawErr error
}

func (p fakePage) Boundary() (float64, float64) { return p.w, p.h }

func (p fakePage) Draw(*image.RGBA, float64) error { return p.drawErr }

// fakeSource serves numPages fake pages; pages listed in fail return failErr.
type fakeSource struct {
	numPages int
	page     fakePage
	fail     map[int]error
	fetched  []int
}

func (s *fakeSource) Page(index int) (render.Page, error) {
	s.fetched = append(s.fetched, index)
	if err := s.fail[index]; err != nil {
		return nil, err
	}
	return s.page, nil
}

// fakeRegions returns fixed items.
type fakeRegions struct {
	items []model.Item
	err   error
	sizes []image.Rectangle
}

func (f *fakeRegions) Extract(_ context.Context, img *image.RGBA) ([]model.Item, error) {
	f.sizes = append(f.sizes, img.Bounds())
	return f.items, f.err
}

// fakeTranscript returns fixed text.
type fakeTranscript struct {
	text string
	err  error
}

func (f *fakeTranscript) Extract(context.Context, *image.RGBA) (string, error) {
	return f.text, f.err
}

func newTestRenderer(t *testing.T, ratio float64) *render.Renderer {
	t.Helper()

	r, err := render.NewRenderer(ratio)
	if err != nil {
		t.Fatalf("NewRenderer() error: %v", err)
	}
	return r
}

// TestNewPagePipeline tests step selection.
func TestNewPagePipeline(t *testing.T) {
	t.Parallel()

	base := func(t *testing.T) Stages {
		return Stages{
			Source:   &fakeSource{numPages: 1, page: fakePage{w: 10, h: 10}},
			Renderer: newTestRenderer(t, 1),
			Writer:   output.NewWriter(t.TempDir(), false),
			Encoder:  report.NewPageEncoder(false),
		}
	}

	tests := []struct {
		name  string
		setup func(st *Stages)
		want  []string
	}{
		{
			name:  "render only",
			setup: func(*Stages) {},
			want:  []string{StepRender},
		},
		{
			name: "all outputs in fixed order",
			setup: func(st *Stages) {
				st.PNG = true
				st.Regions = &fakeRegions{}
				st.Transcript = &fakeTranscript{}
			},
			want: []string{StepRender, StepPNG, StepRegions, StepTranscript},
		},
		{
			name: "transcript only",
			setup: func(st *Stages) {
				st.Transcript = &fakeTranscript{}
			},
			want: []string{StepRender, StepTranscript},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st := base(t)
			tt.setup(&st)

			p, err := NewPagePipeline(st)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := p.StepNames(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("StepNames() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("regions without encoder is a configuration error", func(t *testing.T) {
		t.Parallel()

		st := base(t)
		st.Encoder = nil
		st.Regions = &fakeRegions{}

		_, err := NewPagePipeline(st)
		if !errors.Is(err, ErrMissingStage) || !errors.Is(err, apperr.ErrConfiguration) {
			t.Errorf("expected missing stage configuration error, got %v", err)
		}
	})

	t.Run("missing source is a configuration error", func(t *testing.T) {
		t.Parallel()

		st := base(t)
		st.Source = nil

		if _, err := NewPagePipeline(st); !errors.Is(err, ErrMissingStage) {
			t.Errorf("expected ErrMissingStage, got %v", err)
		}
	})
}

// TestPagePipelineOutputs runs every step against a temp directory.
func TestPagePipelineOutputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	regions := &fakeRegions{items: []model.Item{
		{Text: "Hello", Rect: &model.Rect{X: 1, Y: 2, Width: 3, Height: 4}},
	}}

	p, err := NewPagePipeline(Stages{
		Source:     &fakeSource{numPages: 5, page: fakePage{w: 20.5, h: 10}},
		Renderer:   newTestRenderer(t, 2),
		Writer:     output.NewWriter(dir, false),
		PNG:        true,
		Regions:    regions,
		Encoder:    report.NewPageEncoder(false),
		Transcript: &fakeTranscript{text: "Hello\n"},
	})
	if err != nil {
		t.Fatal(err)
	}

	job := model.NewPageJob(4, 5)
	if err := p.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	wantWritten := []string{
		filepath.Join(dir, "4.png"),
		filepath.Join(dir, "4.json"),
		filepath.Join(dir, "4.txt"),
	}
	if !reflect.DeepEqual(job.Written, wantWritten) {
		t.Errorf("Written = %v, want %v", job.Written, wantWritten)
	}

	t.Run("png has the raster size", func(t *testing.T) {
		f, err := os.Open(filepath.Join(dir, "4.png"))
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()

		cfg, err := png.DecodeConfig(f)
		if err != nil {
			t.Fatalf("decode png: %v", err)
		}
		if cfg.Width != 41 || cfg.Height != 20 {
			t.Errorf("png is %dx%d, want 41x20", cfg.Width, cfg.Height)
		}
	})

	t.Run("json carries raster size and items", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "4.json"))
		if err != nil {
			t.Fatal(err)
		}
		want := `{"size":{"width":41,"height":20},"items":[{"text":"Hello","rect":{"x":1,"y":2,"width":3,"height":4}}]}`
		if strings.TrimSpace(string(data)) != want {
			t.Errorf("json = %s, want %s", data, want)
		}
	})

	t.Run("text is written unchanged", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "4.txt"))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "Hello\n" {
			t.Errorf("txt = %q", data)
		}
	})
}

// TestStepsRequireRaster tests output steps run out of order.
func TestStepsRequireRaster(t *testing.T) {
	t.Parallel()

	w := output.NewWriter(t.TempDir(), false)
	steps := []Step{
		NewPNGStep(w),
		NewRegionsStep(&fakeRegions{}, report.NewPageEncoder(false), w, nil),
		NewTranscriptStep(&fakeTranscript{}, w),
	}

	for _, step := range steps {
		if err := step.Do(context.Background(), model.NewPageJob(1, 1)); !errors.Is(err, ErrNoRaster) {
			t.Errorf("%s: expected ErrNoRaster, got %v", step.Name(), err)
		}
	}
}

// TestStepFailures tests that failing components stop before writing.
func TestStepFailures(t *testing.T) {
	t.Parallel()

	t.Run("recognition failure writes nothing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cause := apperr.OCR("recognize", errors.New("engine down"))
		p, err := NewPagePipeline(Stages{
			Source:   &fakeSource{numPages: 1, page: fakePage{w: 5, h: 5}},
			Renderer: newTestRenderer(t, 1),
			Writer:   output.NewWriter(dir, false),
			Regions:  &fakeRegions{err: cause},
			Encoder:  report.NewPageEncoder(false),
		})
		if err != nil {
			t.Fatal(err)
		}

		err = p.Execute(context.Background(), model.NewPageJob(1, 1))
		if !errors.Is(err, apperr.ErrOCR) {
			t.Errorf("expected OCR error, got %v", err)
		}
		if _, statErr := os.Stat(filepath.Join(dir, "1.json")); !os.IsNotExist(statErr) {
			t.Errorf("expected no json artifact, stat error: %v", statErr)
		}
	})

	t.Run("draw failure is a render error", func(t *testing.T) {
		t.Parallel()

		p, err := NewPagePipeline(Stages{
			Source:   &fakeSource{numPages: 1, page: fakePage{w: 5, h: 5, drawErr: errors.New("corrupt stream")}},
			Renderer: newTestRenderer(t, 1),
			Writer:   output.NewWriter(t.TempDir(), false),
			PNG:      true,
		})
		if err != nil {
			t.Fatal(err)
		}

		err = p.Execute(context.Background(), model.NewPageJob(1, 1))
		if !errors.Is(err, apperr.ErrRender) {
			t.Errorf("expected render error, got %v", err)
		}
	})
}
