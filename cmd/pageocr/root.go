package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/pageocr/internal/config"
)

// NewRootCmd creates the root command. Running it converts a document;
// history, init and version are subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pageocr [flags] <input>",
		Short: "Render PDF pages and extract their text with OCR",
		Long: `pageocr renders each page of a PDF document to a raster and runs optical
character recognition on it. For every processed page it can write:

  <out>/<page>.png   the rendered raster (--png)
  <out>/<page>.json  text regions with pixel bounding boxes (--json)
  <out>/<page>.txt   a plain transcript (--text)

The transcript is written by default unless --json is given; pass --text
or --text=false to decide explicitly. Pages are numbered from 1 and keep
their document index in file names even when --start is used.

Examples:
  # Transcribe every page into ./out
  pageocr report.pdf

  # Regions as JSON for pages 3 to 5, English and Japanese
  pageocr -j -s 3 -e 5 -l en -l ja report.pdf

  # Debug rasters only, at document size, overwriting old output
  pageocr -p --text=false -r 1 -f report.pdf`,
		Version:       getVersion(),
		Args:          cobra.ExactArgs(1),
		RunE:          runConvertCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", config.LogFormatText, "Log format: text or json")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to configuration file (default: .pageocr.yaml, XDG config dir, or home)")

	addConvertFlags(cmd)

	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pageocr:", err)
		os.Exit(1)
	}
}
