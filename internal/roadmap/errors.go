// Package roadmap builds learning roadmaps and tracks per-week completion
// progress against the persisted copy.
package roadmap

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrWeekOutOfRange indicates a completion toggle for a week outside [1, N].
// Rejected before any write; the stored completed set is left untouched.
type ErrWeekOutOfRange struct {
	Week  int
	Total int
}

func (e *ErrWeekOutOfRange) Error() string {
	return fmt.Sprintf("week %d out of range: roadmap has %d weeks", e.Week, e.Total)
}

// ErrRoadmapNotFound indicates the target roadmap does not exist.
type ErrRoadmapNotFound struct {
	ID uuid.UUID
}

func (e *ErrRoadmapNotFound) Error() string {
	return fmt.Sprintf("roadmap not found: %s", e.ID)
}
