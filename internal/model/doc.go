// Package model defines the data structures shared by the conversion stages.
//
// This package contains the following main types:
//   - Page, Size, Item, Rect: the structured per-page recognition result
//     that is serialized to <page>.json
//   - PageRange: the resolved, clamped set of pages a run will process
//   - PageJob: the per-page working state passed between pipeline steps
//   - Run, RunStatus: one recorded invocation in the run history
//
// The types live in their own package so that the pipeline, the OCR
// adapters, and the report encoders can share them without import cycles.
package model
