package port

import "sniff/internal/domain"

// RunStore archives completed runs for later inspection.
type RunStore interface {
	SaveRun(rec domain.RunRecord) error

	GetRun(runID string) (domain.RunRecord, error)

	// ListRuns returns archived runs in chronological order.
	ListRuns() ([]domain.RunRecord, error)

	Close() error
}
