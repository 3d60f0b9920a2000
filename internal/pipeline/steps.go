package pipeline

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"github.com/nao1215/pageocr/internal/apperr"
	"github.com/nao1215/pageocr/internal/model"
	"github.com/nao1215/pageocr/internal/output"
	"github.com/nao1215/pageocr/internal/render"
)

// Step names, in execution order.
const (
	StepRender     = "render"
	StepPNG        = "png"
	StepRegions    = "regions"
	StepTranscript = "transcript"
)

var (
	// ErrNoRaster is returned by an output step that runs before render.
	ErrNoRaster = errors.New("page has not been rendered")

	// ErrMissingStage is returned when an enabled output has no component.
	ErrMissingStage = errors.New("enabled output has no component")
)

// PageSource yields document pages by 1-based index.
type PageSource interface {
	Page(index int) (render.Page, error)
}

// Rasterizer turns a page into a raster.
type Rasterizer interface {
	Render(page render.Page) (*image.RGBA, error)
}

// ArtifactWriter stores one artifact of a page and returns its path.
type ArtifactWriter interface {
	Write(page int, ext string, data []byte) (string, error)
}

// RegionExtractor recognizes text regions on a raster.
type RegionExtractor interface {
	Extract(ctx context.Context, img *image.RGBA) ([]model.Item, error)
}

// TranscriptExtractor recognizes the full text of a raster.
type TranscriptExtractor interface {
	Extract(ctx context.Context, img *image.RGBA) (string, error)
}

// PageEncoder serializes a page result.
type PageEncoder interface {
	EncodePage(page *model.Page) ([]byte, error)
}

// RenderStep rasterizes the job's page.
type RenderStep struct {
	source   PageSource
	renderer Rasterizer
}

// NewRenderStep creates a render step.
func NewRenderStep(source PageSource, renderer Rasterizer) *RenderStep {
	return &RenderStep{source: source, renderer: renderer}
}

// Name returns the step name.
func (s *RenderStep) Name() string { return StepRender }

// Do fetches the page and stores its raster on the job.
func (s *RenderStep) Do(_ context.Context, job *model.PageJob) error {
	page, err := s.source.Page(job.Index)
	if err != nil {
		return err
	}

	img, err := s.renderer.Render(page)
	if err != nil {
		return err
	}

	job.Raster = img
	return nil
}

// PNGStep writes the raster as <page>.png.
type PNGStep struct {
	writer ArtifactWriter
}

// NewPNGStep creates a PNG output step.
func NewPNGStep(writer ArtifactWriter) *PNGStep {
	return &PNGStep{writer: writer}
}

// Name returns the step name.
func (s *PNGStep) Name() string { return StepPNG }

// Do encodes and writes the raster.
func (s *PNGStep) Do(_ context.Context, job *model.PageJob) error {
	if job.Raster == nil {
		return apperr.Render("write png", ErrNoRaster)
	}

	data, err := render.EncodePNG(job.Raster)
	if err != nil {
		return err
	}

	path, err := s.writer.Write(job.Index, output.ExtPNG, data)
	if err != nil {
		return err
	}
	job.AddWritten(path)
	return nil
}

// RegionsStep recognizes text regions and writes them as <page>.json.
type RegionsStep struct {
	extractor RegionExtractor
	encoder   PageEncoder
	writer    ArtifactWriter
	logger    *slog.Logger
}

// NewRegionsStep creates a region output step.
func NewRegionsStep(extractor RegionExtractor, encoder PageEncoder, writer ArtifactWriter, logger *slog.Logger) *RegionsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegionsStep{extractor: extractor, encoder: encoder, writer: writer, logger: logger}
}

// Name returns the step name.
func (s *RegionsStep) Name() string { return StepRegions }

// Do runs region recognition, stores the result on the job and writes it.
func (s *RegionsStep) Do(ctx context.Context, job *model.PageJob) error {
	if job.Raster == nil {
		return apperr.OCR("recognize regions", ErrNoRaster)
	}

	items, err := s.extractor.Extract(ctx, job.Raster)
	if err != nil {
		return err
	}

	job.Result = model.NewPage(job.RasterSize(), items)
	s.logger.Debug("regions recognized", "page", job.Index, "items", len(items), "with_text", job.Result.TextCount())

	data, err := s.encoder.EncodePage(job.Result)
	if err != nil {
		return err
	}

	path, err := s.writer.Write(job.Index, output.ExtJSON, data)
	if err != nil {
		return err
	}
	job.AddWritten(path)
	return nil
}

// TranscriptStep recognizes the page transcript and writes it as <page>.txt.
type TranscriptStep struct {
	extractor TranscriptExtractor
	writer    ArtifactWriter
}

// NewTranscriptStep creates a transcript output step.
func NewTranscriptStep(extractor TranscriptExtractor, writer ArtifactWriter) *TranscriptStep {
	return &TranscriptStep{extractor: extractor, writer: writer}
}

// Name returns the step name.
func (s *TranscriptStep) Name() string { return StepTranscript }

// Do runs transcript recognition and writes the text unchanged.
func (s *TranscriptStep) Do(ctx context.Context, job *model.PageJob) error {
	if job.Raster == nil {
		return apperr.OCR("recognize transcript", ErrNoRaster)
	}

	text, err := s.extractor.Extract(ctx, job.Raster)
	if err != nil {
		return err
	}
	job.Transcript = text

	path, err := s.writer.Write(job.Index, output.ExtText, []byte(text))
	if err != nil {
		return err
	}
	job.AddWritten(path)
	return nil
}

// Stages holds the components of a page pipeline. An output is enabled by
// its flag (PNG) or by a non-nil extractor (Regions, Transcript).
type Stages struct {
	Source   PageSource
	Renderer Rasterizer
	Writer   ArtifactWriter

	PNG bool

	Regions RegionExtractor
	Encoder PageEncoder

	Transcript TranscriptExtractor
}

// NewPagePipeline builds the standard page pipeline: render, then each
// enabled output in the order png, regions, transcript.
func NewPagePipeline(st Stages, opts ...Option) (*Pipeline, error) {
	if st.Source == nil || st.Renderer == nil || st.Writer == nil {
		return nil, apperr.Configuration("build pipeline", ErrMissingStage)
	}
	if st.Regions != nil && st.Encoder == nil {
		return nil, apperr.Configuration("build pipeline", ErrMissingStage)
	}

	p := New(opts...)
	p.AddStep(NewRenderStep(st.Source, st.Renderer))

	if st.PNG {
		p.AddStep(NewPNGStep(st.Writer))
	}
	if st.Regions != nil {
		p.AddStep(NewRegionsStep(st.Regions, st.Encoder, st.Writer, p.logger))
	}
	if st.Transcript != nil {
		p.AddStep(NewTranscriptStep(st.Transcript, st.Writer))
	}

	return p, nil
}
