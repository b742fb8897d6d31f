package roadmap

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/db"
)

// ProgressStore is the storage surface the tracker needs.
type ProgressStore interface {
	GetRoadmap(ctx context.Context, roadmapID uuid.UUID) (*db.RoadmapRecord, error)
	UpdateRoadmapProgress(ctx context.Context, roadmapID uuid.UUID, progress int, completedWeeks []int) error
}

// Tracker computes completion progress and writes it through to the
// persisted roadmap. It never touches topics or resources: completion
// toggles and content edits are orthogonal mutation channels. Concurrent
// updates to the same roadmap are not serialized; the last write wins.
type Tracker struct {
	store ProgressStore
}

// NewTracker creates a progress tracker.
func NewTracker(store ProgressStore) *Tracker {
	return &Tracker{store: store}
}

// ToggleWeek flips membership of week in the roadmap's completed set,
// recomputes progress, and writes both through in one operation. Toggling
// the same week twice restores the original set. A week outside [1, N] is
// rejected before any write.
func (t *Tracker) ToggleWeek(ctx context.Context, roadmapID uuid.UUID, week int) (*db.RoadmapRecord, error) {
	rec, err := t.store.GetRoadmap(ctx, roadmapID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &ErrRoadmapNotFound{ID: roadmapID}
	}
	if week < 1 || week > len(rec.Weeks) {
		return nil, &ErrWeekOutOfRange{Week: week, Total: len(rec.Weeks)}
	}

	completed := make([]int, 0, len(rec.CompletedWeeks)+1)
	found := false
	for _, w := range rec.CompletedWeeks {
		if w == week {
			found = true
			continue
		}
		completed = append(completed, w)
	}
	if !found {
		completed = append(completed, week)
	}
	sort.Ints(completed)

	return t.write(ctx, rec, completed)
}

// SetCompleted replaces the roadmap's completed set wholesale, recomputing
// progress server-side; any client-sent progress value is ignored. Every
// week must be within [1, N] or the whole update is rejected.
func (t *Tracker) SetCompleted(ctx context.Context, roadmapID uuid.UUID, completedWeeks []int) (*db.RoadmapRecord, error) {
	rec, err := t.store.GetRoadmap(ctx, roadmapID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &ErrRoadmapNotFound{ID: roadmapID}
	}

	seen := make(map[int]bool, len(completedWeeks))
	completed := make([]int, 0, len(completedWeeks))
	for _, w := range completedWeeks {
		if w < 1 || w > len(rec.Weeks) {
			return nil, &ErrWeekOutOfRange{Week: w, Total: len(rec.Weeks)}
		}
		if seen[w] {
			continue
		}
		seen[w] = true
		completed = append(completed, w)
	}
	sort.Ints(completed)

	return t.write(ctx, rec, completed)
}

// write persists the new completed set with recomputed progress and returns
// the updated record.
func (t *Tracker) write(ctx context.Context, rec *db.RoadmapRecord, completed []int) (*db.RoadmapRecord, error) {
	progress := rec.Weeks.Progress(completed)
	if err := t.store.UpdateRoadmapProgress(ctx, rec.ID, progress, completed); err != nil {
		return nil, err
	}

	updated := *rec
	updated.CompletedWeeks = completed
	updated.Progress = progress
	return &updated, nil
}
