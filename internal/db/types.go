package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/types"
)

// ResumeRecord represents a stored resume analysis. Records are immutable
// once created; a newer analysis for the same user supersedes older ones as
// "latest" without overwriting them.
type ResumeRecord struct {
	ID            uuid.UUID             `json:"id"`
	UserID        uuid.UUID             `json:"user_id"`
	TargetRole    string                `json:"target_role"`
	ATSScore      int                   `json:"ats_score"`
	Analysis      types.AnalysisPayload `json:"analysis_json"`
	ResumeContent string                `json:"resume_content,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// ResumeContext is the slice of the latest resume record needed to hydrate a
// conversational session.
type ResumeContext struct {
	ResumeContent string
	TargetRole    string
	Analysis      types.AnalysisPayload
}

// RoadmapRecord represents a stored learning roadmap with its completion
// state. Roadmaps are never physically destroyed; a new record supersedes an
// old one as "latest" for a user. Topics and resources only change through
// new records or conversational working copies; completed_weeks only changes
// through progress updates.
type RoadmapRecord struct {
	ID             uuid.UUID     `json:"id"`
	UserID         uuid.UUID     `json:"user_id"`
	Title          string        `json:"title"`
	Weeks          types.Roadmap `json:"-"`
	Progress       int           `json:"progress"`
	CompletedWeeks []int         `json:"completed_weeks"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
