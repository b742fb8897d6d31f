package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/career-compass/internal/types"
)

// SaveRoadmap stores a new roadmap record with zero progress and returns its
// ID. The week sequence is serialized in the "Week 1".."Week N" wire form.
func (db *DB) SaveRoadmap(ctx context.Context, userID uuid.UUID, title string, weeks types.Roadmap) (uuid.UUID, error) {
	roadmapJSON, err := json.Marshal(weeks.WeekMap())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal roadmap: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO roadmaps (user_id, title, roadmap_json, progress, completed_weeks)
		 VALUES ($1, $2, $3, 0, '{}')
		 RETURNING id`,
		userID, title, roadmapJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save roadmap: %w", err)
	}
	return id, nil
}

// GetLatestRoadmap retrieves the user's most recent roadmap.
// Returns nil if the user has none.
func (db *DB) GetLatestRoadmap(ctx context.Context, userID uuid.UUID) (*RoadmapRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, user_id, title, roadmap_json, progress, completed_weeks, created_at, updated_at
		 FROM roadmaps WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		userID,
	)
	rec, err := scanRoadmap(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest roadmap: %w", err)
	}
	return rec, nil
}

// GetRoadmap retrieves a roadmap by ID. Returns nil if no record exists.
func (db *DB) GetRoadmap(ctx context.Context, roadmapID uuid.UUID) (*RoadmapRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, user_id, title, roadmap_json, progress, completed_weeks, created_at, updated_at
		 FROM roadmaps WHERE id = $1`,
		roadmapID,
	)
	rec, err := scanRoadmap(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get roadmap: %w", err)
	}
	return rec, nil
}

// ListRoadmaps retrieves all roadmaps for a user, newest first.
func (db *DB) ListRoadmaps(ctx context.Context, userID uuid.UUID) ([]RoadmapRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, title, roadmap_json, progress, completed_weeks, created_at, updated_at
		 FROM roadmaps WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list roadmaps: %w", err)
	}
	defer rows.Close()

	var records []RoadmapRecord
	for rows.Next() {
		rec, err := scanRoadmap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roadmap: %w", err)
		}
		records = append(records, *rec)
	}
	return records, nil
}

// UpdateRoadmapProgress writes a roadmap's completed weeks and recomputed
// progress in one operation. Concurrent callers are not serialized against
// each other; the last write wins with no merge of divergent sets.
func (db *DB) UpdateRoadmapProgress(ctx context.Context, roadmapID uuid.UUID, progress int, completedWeeks []int) error {
	if completedWeeks == nil {
		completedWeeks = []int{}
	}
	result, err := db.pool.Exec(ctx,
		`UPDATE roadmaps SET progress = $1, completed_weeks = $2, updated_at = NOW() WHERE id = $3`,
		progress, completedWeeks, roadmapID,
	)
	if err != nil {
		return fmt.Errorf("failed to update roadmap progress: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("roadmap not found: %s", roadmapID)
	}
	return nil
}

// scanRoadmap scans a roadmap row, converting the stored week-keyed JSON
// into the ordered in-memory form at the ingestion boundary.
func scanRoadmap(row pgx.Row) (*RoadmapRecord, error) {
	var rec RoadmapRecord
	var roadmapJSON []byte
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &roadmapJSON, &rec.Progress, &rec.CompletedWeeks, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}

	if len(roadmapJSON) > 0 {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(roadmapJSON, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse roadmap_json for %s: %w", rec.ID, err)
		}
		weeks, err := types.ParseWeekMap(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse weeks for %s: %w", rec.ID, err)
		}
		rec.Weeks = weeks
	}
	if rec.CompletedWeeks == nil {
		rec.CompletedWeeks = []int{}
	}
	return &rec, nil
}
