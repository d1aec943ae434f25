package memo

import (
	"fmt"
	"strings"
)

// Status is the lifecycle status of a memo. The set is closed; every memo
// has exactly one status, and any status is reachable from any other.
type Status string

const (
	StatusNotStarted    Status = "not_started"
	StatusInProgress    Status = "in_progress"
	StatusCompleted     Status = "completed"
	StatusKeepReviewing Status = "keep_reviewing"
)

// FilterAll is the filter value that matches every status.
const FilterAll = "all"

// AllStatuses lists every valid status in board display order.
var AllStatuses = []Status{
	StatusNotStarted,
	StatusInProgress,
	StatusCompleted,
	StatusKeepReviewing,
}

// statusLabels maps each status to its display label.
var statusLabels = map[Status]string{
	StatusNotStarted:    "Not started",
	StatusInProgress:    "In progress",
	StatusCompleted:     "Completed",
	StatusKeepReviewing: "Keep reviewing",
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label for s, or the raw value if unknown.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseStatus normalizes and validates a user-supplied status string.
// Accepts either underscore or hyphen separators ("in_progress", "in-progress").
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q (valid: %s)", raw, strings.Join(statusNames(), ", "))
	}
	return s, nil
}

// ValidFilter reports whether raw is "all" or a valid status value.
func ValidFilter(raw string) bool {
	if raw == FilterAll {
		return true
	}
	return Status(raw).Valid()
}

func statusNames() []string {
	names := make([]string, len(AllStatuses))
	for i, s := range AllStatuses {
		names[i] = string(s)
	}
	return names
}
