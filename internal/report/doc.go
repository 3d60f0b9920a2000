// Package report serializes conversion results.
//
// This package contains:
//   - PageEncoder: the <page>.json artifact, compact or indented
//   - JSONWriter: JSON output for page results and run history
//   - SimpleWriter: plain-text run history for terminal display
//   - MarkdownWriter: run history as GitHub-flavored Markdown
//
// History writers implement HistoryWriter so the history command can pick
// one by flag.
package report
