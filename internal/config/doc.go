// Package config provides the run settings of pageocr: rendering scale,
// requested artifacts, page bounds, recognition engine and output location.
// Settings come from defaults, an optional YAML file and command line flags,
// in increasing order of precedence.
package config
