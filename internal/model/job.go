package model

import "image"

// PageJob carries the working state of one page through the pipeline.
// A job is created per page, owned exclusively by that page's pipeline run,
// and released once all requested artifacts are written.
type PageJob struct {
	// Index is the absolute 1-based page index. Output files are named after it.
	Index int

	// Total is the document's page count, used for progress reporting.
	Total int

	// Raster is the rendered page. Nil before the render step and after Release.
	Raster *image.RGBA

	// Result is the structured recognition result, set by the region step.
	Result *Page

	// Transcript is the page transcript, set by the transcript step.
	Transcript string

	// Written lists the artifact paths written for this page, in order.
	Written []string

	// PerformedSteps records the names of the steps that completed.
	PerformedSteps []string
}

// NewPageJob creates a job for the given page of a document with total pages.
func NewPageJob(index, total int) *PageJob {
	return &PageJob{
		Index:          index,
		Total:          total,
		Written:        make([]string, 0, 3),
		PerformedSteps: make([]string, 0, 4),
	}
}

// RasterSize returns the size of the rendered raster, or the zero Size when
// the page has not been rendered.
func (j *PageJob) RasterSize() Size {
	if j.Raster == nil {
		return Size{}
	}
	b := j.Raster.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}

// AddWritten records an artifact path written for this page.
func (j *PageJob) AddWritten(path string) {
	j.Written = append(j.Written, path)
}

// Release drops the raster and derived results so the page's memory can be
// reclaimed before the next page is rendered.
func (j *PageJob) Release() {
	j.Raster = nil
	j.Result = nil
	j.Transcript = ""
}
