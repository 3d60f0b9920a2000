package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/pageocr/internal/apperr"
	"github.com/nao1215/pageocr/internal/config"
	pageocrlog "github.com/nao1215/pageocr/internal/log"
)

// loadBaseConfig builds a Config from defaults, the configuration file,
// the environment and the global flags. Command-specific flags are applied
// by the caller on top.
func loadBaseConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; otherwise a missing file means defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, apperr.Configuration("load config file "+configPath, err)
		}
		cf.Apply(cfg)
		cfg.ConfigFilePath = configPath
	case cfg.ConfigFilePath != "":
		return nil, apperr.Configuration("load config file "+cfg.ConfigFilePath, config.ErrConfigNotFound)
	}

	cfg.ApplyEnv(os.LookupEnv)

	cfg.Verbose, err = flags.GetBool("verbose")
	if err != nil {
		return nil, err
	}
	if flags.Changed("log-format") {
		if cfg.LogFormat, err = flags.GetString("log-format"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// setupLogger creates the stderr logger. Sensitive attributes such as the
// azure key are masked by the secure handler before they are written.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogFormat == config.LogFormatJSON {
		return pageocrlog.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return pageocrlog.NewSecureLogger(w, cfg.Verbose)
}

// describeConfig returns the loaded settings for debug logging.
func describeConfig(cfg *config.Config) []any {
	return []any{
		"input", cfg.Input,
		"out", cfg.OutDir,
		"ratio", cfg.Ratio,
		"png", cfg.PNG,
		"json", cfg.JSON,
		"text", fmt.Sprintf("%s (%t)", cfg.Text, cfg.TextEnabled()),
		"locales", cfg.Locales,
		"engine", cfg.Engine,
		"history", cfg.History,
		"config", cfg.ConfigFilePath,
	}
}
