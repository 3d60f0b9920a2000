package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/pageocr/internal/apperr"
	"github.com/nao1215/pageocr/internal/model"
)

// Summary describes a finished or aborted run.
type Summary struct {
	// Range is the resolved page range.
	Range model.PageRange

	// PagesDone counts pages whose every step completed.
	PagesDone int

	// Artifacts counts files written.
	Artifacts int
}

// Driver runs a page pipeline over a range of pages, strictly in order.
type Driver struct {
	pipeline *Pipeline
	numPages int
	progress io.Writer
	logger   *slog.Logger
	onPage   func(job *model.PageJob)
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithProgress sets where "DONE: <page>/<total>" lines are written.
// Progress is discarded when not set.
func WithProgress(w io.Writer) DriverOption {
	return func(d *Driver) {
		d.progress = w
	}
}

// WithDriverLogger sets a custom logger for the driver.
func WithDriverLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithPageHook registers fn to be called after each completed page, before
// the page's raster is released.
func WithPageHook(fn func(job *model.PageJob)) DriverOption {
	return func(d *Driver) {
		d.onPage = fn
	}
}

// NewDriver creates a driver for a document of numPages pages.
func NewDriver(p *Pipeline, numPages int, opts ...DriverOption) *Driver {
	d := &Driver{
		pipeline: p,
		numPages: numPages,
		progress: io.Discard,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = slog.Default()
	}

	return d
}

// Run processes the pages selected by start and end (1-based, inclusive,
// either may be nil). Out-of-range bounds are clamped with a warning. The
// first failing page aborts the run; its error carries the page index.
func (d *Driver) Run(ctx context.Context, start, end *int) (Summary, error) {
	r := model.ResolvePageRange(start, end, d.numPages)
	sum := Summary{Range: r}

	if r.Clamped {
		d.logger.Warn("page range clamped to document",
			"start", optionalInt(start),
			"end", optionalInt(end),
			"pages", d.numPages,
			"first", r.First,
			"last", r.Last(),
		)
	}
	if r.Empty() {
		d.logger.Warn("no pages to process", "pages", d.numPages)
		return sum, nil
	}

	d.logger.Debug("processing pages", "first", r.First, "last", r.Last(), "steps", d.pipeline.StepNames())

	for index := r.First; index < r.Limit; index++ {
		job := model.NewPageJob(index, d.numPages)

		err := d.pipeline.Execute(ctx, job)
		sum.Artifacts += len(job.Written)
		if err != nil {
			job.Release()
			return sum, apperr.AtPage(err, index)
		}

		if d.onPage != nil {
			d.onPage(job)
		}
		job.Release()
		sum.PagesDone++

		if _, err := fmt.Fprintf(d.progress, "DONE: %d/%d\n", index, d.numPages); err != nil {
			return sum, fmt.Errorf("write progress: %w", err)
		}
	}

	return sum, nil
}

// optionalInt renders an unset bound as "unset" in logs.
func optionalInt(v *int) any {
	if v == nil {
		return "unset"
	}
	return *v
}
