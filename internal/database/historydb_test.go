package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/pageocr/internal/model"
)

// setupTestDB creates a temporary database closed on cleanup.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %s", db.Path())
		}
		if _, err := os.Stat(db.Path()); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		opts := DefaultOptions()
		opts.CreateIfNotExists = false

		_, err := Open(filepath.Join(t.TempDir(), "missing"), opts)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		run := &model.Run{Input: "a.pdf"}
		if err := db.StartRun(context.Background(), run); err != nil {
			t.Fatal(err)
		}
		_ = db.Close()

		opts := DefaultOptions()
		opts.CreateIfNotExists = false
		db, err = Open(dir, opts)
		if err != nil {
			t.Fatalf("failed to reopen: %v", err)
		}
		defer db.Close()

		if _, err := db.GetRun(context.Background(), run.ID); err != nil {
			t.Errorf("expected run to persist, got %v", err)
		}
	})
}

// TestRunLifecycle tests start, progress and finish.
func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	started := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)
	db.now = func() time.Time { return started.Add(3 * time.Second) }

	run := &model.Run{
		Input:       "/docs/book.pdf",
		Fingerprint: "feedface",
		Engine:      "tesseract",
		OutDir:      "out",
		FirstPage:   2,
		LastPage:    4,
		TotalPages:  10,
		StartedAt:   started,
	}
	if err := db.StartRun(ctx, run); err != nil {
		t.Fatalf("StartRun() error: %v", err)
	}
	if _, err := uuid.Parse(run.ID); err != nil {
		t.Errorf("expected a UUID run ID, got %q", run.ID)
	}

	got, err := db.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.RunRunning || !got.FinishedAt.IsZero() {
		t.Errorf("expected running run without finish time, got %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %s, want %s", got.StartedAt, started)
	}

	if err := db.UpdateProgress(ctx, run.ID, 2); err != nil {
		t.Fatalf("UpdateProgress() error: %v", err)
	}

	run.PagesDone = 2
	run.Finish(model.RunFailed, errors.New("ocr error (page 4): engine down"), time.Time{})
	if err := db.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun() error: %v", err)
	}

	got, err = db.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.RunFailed || got.PagesDone != 2 || got.Error != "ocr error (page 4): engine down" {
		t.Errorf("unexpected finished run: %+v", got)
	}
	if got.Duration() != 3*time.Second {
		t.Errorf("Duration() = %s, want 3s", got.Duration())
	}
	if got.Input != run.Input || got.Fingerprint != run.Fingerprint || got.FirstPage != 2 || got.LastPage != 4 {
		t.Errorf("fields did not round trip: %+v", got)
	}
}

// TestUnknownRun tests updates and lookups of missing IDs.
func TestUnknownRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	if _, err := db.GetRun(ctx, "nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun: expected ErrRunNotFound, got %v", err)
	}
	if err := db.UpdateProgress(ctx, "nope", 1); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("UpdateProgress: expected ErrRunNotFound, got %v", err)
	}
	if err := db.FinishRun(ctx, &model.Run{ID: "nope"}); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("FinishRun: expected ErrRunNotFound, got %v", err)
	}
}

// TestListRuns tests ordering, limits and fingerprint filtering.
func TestListRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, fp := range []string{"aaa", "bbb", "aaa"} {
		run := &model.Run{
			ID:          string(rune('x' + i)),
			Input:       "doc.pdf",
			Fingerprint: fp,
			StartedAt:   base.Add(time.Duration(i) * 500 * time.Millisecond),
		}
		if err := db.StartRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 3 || runs[0].ID != "z" || runs[1].ID != "y" || runs[2].ID != "x" {
			t.Errorf("unexpected order: %+v", runs)
		}
	})

	t.Run("limit", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}
	})

	t.Run("by fingerprint", func(t *testing.T) {
		runs, err := db.RunsForFingerprint(ctx, "aaa", 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 2 || runs[0].ID != "z" || runs[1].ID != "x" {
			t.Errorf("unexpected runs: %+v", runs)
		}
	})

	t.Run("empty result is non-nil", func(t *testing.T) {
		runs, err := db.RunsForFingerprint(ctx, "missing", 0)
		if err != nil {
			t.Fatal(err)
		}
		if runs == nil || len(runs) != 0 {
			t.Errorf("expected empty slice, got %#v", runs)
		}
	})
}

// TestParseTimestamp tests timestamp parsing fallbacks.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-01-02T03:04:05.000000000Z", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2025-01-02T03:04:05Z", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2025-01-02 03:04:05", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"garbage", time.Time{}},
	}

	for _, tt := range tests {
		if got := parseTimestamp(tt.in); !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if got := formatTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 500, time.UTC)); got != "2025-01-02T03:04:05.000000500Z" {
		t.Errorf("formatTimestamp() = %s", got)
	}
}
