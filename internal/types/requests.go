package types

import (
	"github.com/go-playground/validator/v10"
)

// ChatRequest represents a single conversational turn submission.
type ChatRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid4"`
	Message string `json:"message" validate:"required,min=1"`
}

// GenerateRoadmapRequest represents an explicit roadmap creation request.
type GenerateRoadmapRequest struct {
	Skills []string `json:"skills" validate:"required,min=1"`
	Goal   string   `json:"goal" validate:"required,min=1"`
	UserID string   `json:"user_id" validate:"required,uuid4"`
}

// ProgressUpdateRequest represents a completion-progress save. The progress
// field is advisory: the server recomputes it from completed_weeks against
// the stored roadmap's week count.
type ProgressUpdateRequest struct {
	RoadmapID      string `json:"roadmap_id" validate:"required,uuid4"`
	Progress       int    `json:"progress"`
	CompletedWeeks []int  `json:"completed_weeks"`
}

// Validate validates the ChatRequest using the validator.
func (r *ChatRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the GenerateRoadmapRequest using the validator.
func (r *GenerateRoadmapRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ProgressUpdateRequest using the validator.
func (r *ProgressUpdateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
