package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/career-compass/internal/types"
)

// SaveResumeAnalysis stores a new resume analysis record and returns its ID.
// Existing records for the user are left untouched; the newest row is the
// user's "latest" analysis.
func (db *DB) SaveResumeAnalysis(ctx context.Context, userID uuid.UUID, targetRole string, analysis types.AnalysisPayload, resumeContent string) (uuid.UUID, error) {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO resumes (user_id, target_role, ats_score, analysis_json, resume_content)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		userID, targetRole, analysis.ATSScore, analysisJSON, resumeContent,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save resume analysis: %w", err)
	}
	return id, nil
}

// ListResumeHistory retrieves all resume analyses for a user, newest first.
// Resume content is omitted; use GetResumeByID for the full record.
func (db *DB) ListResumeHistory(ctx context.Context, userID uuid.UUID) ([]ResumeRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, target_role, ats_score, analysis_json, created_at
		 FROM resumes WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resume history: %w", err)
	}
	defer rows.Close()

	var records []ResumeRecord
	for rows.Next() {
		var rec ResumeRecord
		var analysisJSON []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.TargetRole, &rec.ATSScore, &analysisJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume record: %w", err)
		}
		if len(analysisJSON) > 0 {
			if err := json.Unmarshal(analysisJSON, &rec.Analysis); err != nil {
				return nil, fmt.Errorf("failed to parse analysis for resume %s: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// GetResumeByID retrieves a single resume analysis, including its content.
// Returns nil if no record exists.
func (db *DB) GetResumeByID(ctx context.Context, resumeID uuid.UUID) (*ResumeRecord, error) {
	var rec ResumeRecord
	var analysisJSON []byte
	var content *string
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, target_role, ats_score, analysis_json, resume_content, created_at
		 FROM resumes WHERE id = $1`,
		resumeID,
	).Scan(&rec.ID, &rec.UserID, &rec.TargetRole, &rec.ATSScore, &analysisJSON, &content, &rec.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	if content != nil {
		rec.ResumeContent = *content
	}
	if len(analysisJSON) > 0 {
		if err := json.Unmarshal(analysisJSON, &rec.Analysis); err != nil {
			return nil, fmt.Errorf("failed to parse analysis for resume %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

// GetLatestResumeContext retrieves the most recent resume analysis for a user
// in the shape needed for session hydration. Returns nil if the user has no
// analyses; callers treat that as a recoverable no-context condition.
func (db *DB) GetLatestResumeContext(ctx context.Context, userID uuid.UUID) (*ResumeContext, error) {
	var rc ResumeContext
	var analysisJSON []byte
	var content *string
	err := db.pool.QueryRow(ctx,
		`SELECT resume_content, target_role, analysis_json
		 FROM resumes WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		userID,
	).Scan(&content, &rc.TargetRole, &analysisJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest resume context: %w", err)
	}

	if content != nil {
		rc.ResumeContent = *content
	}
	if len(analysisJSON) > 0 {
		if err := json.Unmarshal(analysisJSON, &rc.Analysis); err != nil {
			return nil, fmt.Errorf("failed to parse latest analysis: %w", err)
		}
	}
	return &rc, nil
}
