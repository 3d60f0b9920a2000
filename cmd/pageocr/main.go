// Package main provides the entry point for the pageocr CLI.
//
// pageocr renders the pages of a PDF document to rasters and runs optical
// character recognition on them, writing per-page artifacts:
//
//	<out>/<page>.png   the rendered raster (--png)
//	<out>/<page>.json  recognized text regions with pixel boxes (--json)
//	<out>/<page>.txt   the page transcript (--text, default when --json is off)
//
// Usage:
//
//	pageocr [flags] <input.pdf>
//	pageocr history
//	pageocr init
//
// See --help for all available options.
package main

func main() {
	Execute()
}
