package domain

import "fmt"

// PipelineStatus enumerates enrichment milestones for a scraped item.
// The string form exists only for the persistence and API edges.
type PipelineStatus string

const (
	StatusPending    PipelineStatus = "pending"
	StatusProcessing PipelineStatus = "processing"
	StatusCompleted  PipelineStatus = "completed"
	StatusFailed     PipelineStatus = "failed"
)

// ParseStatus converts a stored string back into the closed enum.
func ParseStatus(raw string) (PipelineStatus, error) {
	switch PipelineStatus(raw) {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return PipelineStatus(raw), nil
	}
	return "", fmt.Errorf("unknown pipeline status %q", raw)
}

// CanTransition reports whether moving from s to next is a legal step.
// A re-ingest may reset any status back to pending.
func (s PipelineStatus) CanTransition(next PipelineStatus) bool {
	if next == StatusPending {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}
