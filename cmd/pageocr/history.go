package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/pageocr/internal/database"
	"github.com/nao1215/pageocr/internal/document"
	"github.com/nao1215/pageocr/internal/model"
	"github.com/nao1215/pageocr/internal/report"
)

// defaultHistoryLimit is the number of runs listed when --limit is not given.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [document]",
		Short: "List recorded conversion runs",
		Long: `List recorded conversion runs, newest first.

Every conversion is recorded in a SQLite database under the XDG data
directory unless --no-history or "history: false" is set. When a document
is given, only runs over a file with identical contents are listed, even
if it was moved or renamed since.

Examples:
  # Show the last 20 runs
  pageocr history

  # All runs over this document as Markdown
  pageocr history -n 0 -m report.pdf > runs.md

  # JSON for scripting
  pageocr history -j`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output in Markdown format")
	cmd.Flags().String("id", "", "Show a single run by ID")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadBaseConfig(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown are mutually exclusive")
	}
	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(cfg.DBDir, opts)
	if err != nil {
		if _, statErr := os.Stat(filepath.Join(cfg.DBDir, database.FileName)); os.IsNotExist(statErr) {
			// Nothing has been recorded yet.
			return writeHistory(cmd, nil, jsonOutput, markdownOutput, cfg.Verbose)
		}
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	runs, err := queryHistory(cmd.Context(), db, id, args, limit)
	if err != nil {
		return err
	}

	return writeHistory(cmd, runs, jsonOutput, markdownOutput, cfg.Verbose)
}

// queryHistory selects runs by ID, by document contents, or the latest.
func queryHistory(ctx context.Context, db *database.HistoryDB, id string, args []string, limit int) ([]model.Run, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case id != "":
		run, err := db.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		return []model.Run{*run}, nil
	case len(args) == 1:
		fp, err := document.FingerprintFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to fingerprint %s: %w", args[0], err)
		}
		return db.RunsForFingerprint(ctx, fp, limit)
	default:
		return db.ListRuns(ctx, limit)
	}
}

// writeHistory renders runs in the selected format to stdout.
func writeHistory(cmd *cobra.Command, runs []model.Run, jsonOutput, markdownOutput, verbose bool) error {
	var w report.HistoryWriter
	switch {
	case jsonOutput:
		w = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint())
	case markdownOutput:
		w = report.NewMarkdownWriter(cmd.OutOrStdout())
	default:
		w = report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(verbose))
	}

	if _, err := w.WriteHistory(runs); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
