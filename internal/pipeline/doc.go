// Package pipeline converts document pages one at a time.
//
// Each page runs through a Pipeline of Steps: render, then the enabled
// outputs (png, regions, transcript). The Driver resolves the requested
// page range, runs the pipeline for each page in index order, reports
// progress after every completed page and stops at the first error.
//
// Pages are never processed concurrently and a page's raster is released
// before the next page is rendered.
package pipeline
