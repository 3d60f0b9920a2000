package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/pageocr/internal/apperr"
	"github.com/nao1215/pageocr/internal/config"
	"github.com/nao1215/pageocr/internal/document"
	"github.com/nao1215/pageocr/internal/model"
	"github.com/nao1215/pageocr/internal/ocr"
	"github.com/nao1215/pageocr/internal/ocr/azure"
	"github.com/nao1215/pageocr/internal/ocr/tesseract"
	"github.com/nao1215/pageocr/internal/output"
	"github.com/nao1215/pageocr/internal/pipeline"
	"github.com/nao1215/pageocr/internal/render"
	"github.com/nao1215/pageocr/internal/report"
)

// addConvertFlags registers the conversion flags on the root command.
func addConvertFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.BoolP("force", "f", false, "Overwrite existing output files")
	flags.BoolP("png", "p", false, "Write the rendered raster as <page>.png")
	flags.BoolP("json", "j", false, "Write recognized text regions as <page>.json")
	flags.BoolP("text", "t", false,
		"Write the transcript as <page>.txt (default: on unless --json is given)")
	flags.Float64P("ratio", "r", config.DefaultRatio, "Raster scale factor relative to the page size")
	flags.StringSliceP("locales", "l", nil, "Recognition locale as a BCP-47 tag (repeatable)")
	flags.IntP("start", "s", 0, "First page to process, 1-based (default: first page)")
	flags.IntP("end", "e", 0, "Last page to process, inclusive (default: last page)")
	flags.StringP("out", "o", config.DefaultOutDir, "Output directory")
	flags.String("engine", config.DefaultEngine, "Recognition engine: tesseract or azure")
	flags.Bool("pretty", false, "Indent JSON output")
	flags.Bool("no-history", false, "Do not record this run in the history database")
}

// runConvertCmd executes the root command.
func runConvertCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", describeConfig(cfg)...)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return convert(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildConfig creates a Config from the configuration file and flags.
// Flags override file values only when given on the command line.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadBaseConfig(cmd)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()

	if flags.Changed("force") {
		if cfg.Force, err = flags.GetBool("force"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("png") {
		if cfg.PNG, err = flags.GetBool("png"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("json") {
		if cfg.JSON, err = flags.GetBool("json"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("text") {
		text, err := flags.GetBool("text")
		if err != nil {
			return nil, err
		}
		cfg.Text = config.TextFromBool(text)
	}
	if flags.Changed("ratio") {
		if cfg.Ratio, err = flags.GetFloat64("ratio"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("locales") {
		if cfg.Locales, err = flags.GetStringSlice("locales"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("start") {
		start, err := flags.GetInt("start")
		if err != nil {
			return nil, err
		}
		cfg.Start = &start
	}
	if flags.Changed("end") {
		end, err := flags.GetInt("end")
		if err != nil {
			return nil, err
		}
		cfg.End = &end
	}
	if flags.Changed("out") {
		if cfg.OutDir, err = flags.GetString("out"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("engine") {
		if cfg.Engine, err = flags.GetString("engine"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("pretty") {
		if cfg.Pretty, err = flags.GetBool("pretty"); err != nil {
			return nil, err
		}
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.History = false
	}

	if len(args) > 0 {
		cfg.Input = args[0]
	}

	return cfg, nil
}

// convert runs the page pipeline over the configured document.
// Progress lines are written to progress.
func convert(ctx context.Context, cfg *config.Config, progress io.Writer, logger *slog.Logger) error {
	locales, err := ocr.ParseLocales(cfg.Locales)
	if err != nil {
		return err
	}

	renderer, err := render.NewRenderer(cfg.Ratio)
	if err != nil {
		return err
	}

	doc, err := document.Open(cfg.Input, document.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			logger.Warn("failed to close document", "path", cfg.Input, "error", cerr)
		}
	}()

	stages := pipeline.Stages{
		Source:   doc,
		Renderer: renderer,
		Writer:   output.NewWriter(cfg.OutDir, cfg.Force),
		PNG:      cfg.PNG,
	}

	engineName := ""
	textEnabled := cfg.TextEnabled()
	if cfg.JSON || textEnabled {
		engine, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		defer engine.Close()
		engineName = engine.Name()

		if cfg.JSON {
			regions, err := ocr.NewRegionExtractor(engine, locales, logger)
			if err != nil {
				return apperr.ResourceInit("create region extractor", err)
			}
			stages.Regions = regions
			stages.Encoder = report.NewPageEncoder(cfg.Pretty)
		}
		if textEnabled {
			transcript, err := ocr.NewTranscriptExtractor(engine, locales)
			if err != nil {
				return apperr.ResourceInit("create transcript extractor", err)
			}
			stages.Transcript = transcript
		}
	}

	p, err := pipeline.NewPagePipeline(stages, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	pages := model.ResolvePageRange(cfg.Start, cfg.End, doc.NumPages())
	rec := startRecorder(ctx, cfg, &model.Run{
		Input:       cfg.Input,
		Fingerprint: doc.Fingerprint(),
		Engine:      engineName,
		OutDir:      cfg.OutDir,
		FirstPage:   pages.First,
		LastPage:    pages.Last(),
		TotalPages:  doc.NumPages(),
	}, logger)

	driver := pipeline.NewDriver(p, doc.NumPages(),
		pipeline.WithProgress(progress),
		pipeline.WithDriverLogger(logger),
		pipeline.WithPageHook(rec.pageDone),
	)

	sum, err := driver.Run(ctx, cfg.Start, cfg.End)
	rec.finish(ctx, sum, err)
	return err
}

// newEngine creates the configured recognition engine.
func newEngine(cfg *config.Config, logger *slog.Logger) (ocr.Engine, error) {
	switch cfg.Engine {
	case config.EngineAzure:
		client, err := azure.New(cfg.AzureEndpoint,
			azure.WithKey(cfg.AzureKey),
			azure.WithAPIVersion(cfg.AzureAPIVersion),
			azure.WithModel(cfg.AzureModel),
			azure.WithPollInterval(cfg.AzurePollInterval),
			azure.WithTimeout(cfg.Timeout),
			azure.WithLogger(logger),
		)
		if err != nil {
			return nil, apperr.ResourceInit("create azure engine", err)
		}
		return client, nil
	default:
		return tesseract.New(
			tesseract.WithTessdataPrefix(cfg.TessdataPrefix),
			tesseract.WithLogger(logger),
		), nil
	}
}
