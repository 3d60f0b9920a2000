package model

import "time"

// RunStatus is the outcome of a conversion run.
type RunStatus int

const (
	// RunRunning marks a run that has started and not yet finished. A run
	// left in this state was interrupted before it could be finalized.
	RunRunning RunStatus = iota

	// RunSucceeded marks a run that processed every requested page.
	RunSucceeded

	// RunFailed marks a run aborted by an error.
	RunFailed

	// RunCanceled marks a run stopped by a signal.
	RunCanceled
)

// String returns the lower-case name stored in the history database.
func (s RunStatus) String() string {
	switch s {
	case RunRunning:
		return "running"
	case RunSucceeded:
		return "succeeded"
	case RunFailed:
		return "failed"
	case RunCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ParseRunStatus is the inverse of String. Unknown names map to RunFailed.
func ParseRunStatus(s string) RunStatus {
	switch s {
	case "running":
		return RunRunning
	case "succeeded":
		return RunSucceeded
	case "canceled":
		return RunCanceled
	default:
		return RunFailed
	}
}

// MarshalText encodes the status by name.
func (s RunStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Run is one recorded invocation of the converter.
type Run struct {
	ID          string    `json:"id"`
	Input       string    `json:"input"`
	Fingerprint string    `json:"fingerprint"`
	Engine      string    `json:"engine"`
	OutDir      string    `json:"out_dir"`
	FirstPage   int       `json:"first_page"`
	LastPage    int       `json:"last_page"`
	TotalPages  int       `json:"total_pages"`
	PagesDone   int       `json:"pages_done"`
	Status      RunStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitzero"`
}

// PagesRequested returns how many pages the run was asked to process.
func (r *Run) PagesRequested() int {
	if r.LastPage < r.FirstPage {
		return 0
	}
	return r.LastPage - r.FirstPage + 1
}

// Duration returns the wall time of a finished run, or zero while running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Finish records the outcome of the run.
func (r *Run) Finish(status RunStatus, err error, at time.Time) {
	r.Status = status
	r.FinishedAt = at
	if err != nil {
		r.Error = err.Error()
	}
}
