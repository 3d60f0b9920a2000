package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/pageocr/internal/config"
	"github.com/nao1215/pageocr/internal/database"
	"github.com/nao1215/pageocr/internal/model"
	"github.com/nao1215/pageocr/internal/pipeline"
)

// historyTimeout bounds each history write so a locked database cannot
// stall a conversion.
const historyTimeout = 5 * time.Second

// runRecorder writes a run's lifecycle to the history database. History
// is best effort: failures are logged and never fail the conversion. A nil
// recorder does nothing.
type runRecorder struct {
	db     *database.HistoryDB
	run    *model.Run
	logger *slog.Logger
}

// startRecorder opens the history database and records run as started.
// It returns nil when history is disabled or unavailable.
func startRecorder(ctx context.Context, cfg *config.Config, run *model.Run, logger *slog.Logger) *runRecorder {
	if !cfg.History {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("run history disabled", "dir", cfg.DBDir, "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, historyTimeout)
	defer cancel()

	if err := db.StartRun(ctx, run); err != nil {
		logger.Warn("failed to record run", "error", err)
		_ = db.Close()
		return nil
	}

	logger.Debug("recording run", "id", run.ID, "db", db.Path())
	return &runRecorder{db: db, run: run, logger: logger}
}

// pageDone updates the run's progress after each completed page.
func (r *runRecorder) pageDone(_ *model.PageJob) {
	if r == nil {
		return
	}
	r.run.PagesDone++

	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	if err := r.db.UpdateProgress(ctx, r.run.ID, r.run.PagesDone); err != nil {
		r.logger.Warn("failed to record progress", "id", r.run.ID, "error", err)
	}
}

// finish stores the outcome and closes the database. The write happens
// even when ctx was cancelled by a signal.
func (r *runRecorder) finish(ctx context.Context, sum pipeline.Summary, runErr error) {
	if r == nil {
		return
	}
	defer func() {
		if err := r.db.Close(); err != nil {
			r.logger.Warn("failed to close history database", "error", err)
		}
	}()

	status := model.RunSucceeded
	switch {
	case errors.Is(runErr, context.Canceled):
		status = model.RunCanceled
	case runErr != nil:
		status = model.RunFailed
	}

	r.run.PagesDone = sum.PagesDone
	r.run.Finish(status, runErr, time.Now())

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()

	if err := r.db.FinishRun(ctx, r.run); err != nil {
		r.logger.Warn("failed to record run outcome", "id", r.run.ID, "error", err)
	}
}
