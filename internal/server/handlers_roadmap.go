package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/types"
)

// handleGenerateRoadmap drafts a roadmap from a skill list, persists it, and
// seeds the user's session working copy with it.
func (s *Server) handleGenerateRoadmap(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRoadmapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid user_id: must be a UUID")
		return
	}

	weeks := s.builder.Build(r.Context(), req.Skills, req.Goal)
	if weeks.IsEmpty() {
		s.errorResponse(w, http.StatusBadRequest, "no usable skills to build a roadmap from")
		return
	}

	id, err := s.store.SaveRoadmap(r.Context(), userID, req.Goal, weeks)
	if err != nil {
		log.Printf("Error saving roadmap for %s: %v", userID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to save roadmap")
		return
	}

	s.sessions.Get(userID).SetWorking(weeks, req.Goal)

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"id":      id,
		"goal":    req.Goal,
		"roadmap": weeks.WeekMap(),
	})
}

// handleLatestRoadmap returns the user's most recent persisted roadmap. A user
// with none gets a 200 with a null roadmap so clients can render an empty
// state. A fetched copy is also loaded into session working memory so
// follow-up conversational edits start from it.
func (s *Server) handleLatestRoadmap(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUUID(w, r, "user_id")
	if !ok {
		return
	}

	rec, err := s.store.GetLatestRoadmap(r.Context(), userID)
	if err != nil {
		log.Printf("Error fetching latest roadmap for %s: %v", userID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to fetch roadmap")
		return
	}
	if rec == nil {
		s.jsonResponse(w, http.StatusOK, map[string]any{"roadmap": nil})
		return
	}

	s.sessions.Get(userID).SetWorking(rec.Weeks, rec.Title)

	s.jsonResponse(w, http.StatusOK, map[string]any{"roadmap": roadmapView(rec)})
}

// handleListRoadmaps returns all of a user's roadmaps, newest first.
func (s *Server) handleListRoadmaps(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUUID(w, r, "user_id")
	if !ok {
		return
	}

	records, err := s.store.ListRoadmaps(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing roadmaps for %s: %v", userID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list roadmaps")
		return
	}

	views := make([]map[string]any, 0, len(records))
	for i := range records {
		views = append(views, roadmapView(&records[i]))
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"roadmaps": views})
}

// handleUpdateProgress replaces a roadmap's completed-week set. Progress is
// recomputed server-side from the stored week count; the client's progress
// value is advisory only.
func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req types.ProgressUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	roadmapID, err := uuid.Parse(req.RoadmapID)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid roadmap_id: must be a UUID")
		return
	}

	updated, err := s.tracker.SetCompleted(r.Context(), roadmapID, req.CompletedWeeks)
	if err != nil {
		status := HTTPStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("Error updating progress for %s: %v", roadmapID, err)
			s.errorResponse(w, status, "failed to update progress")
			return
		}
		s.errorResponse(w, status, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":         true,
		"progress":        updated.Progress,
		"completed_weeks": updated.CompletedWeeks,
	})
}

// handleToggleWeek flips one week's completion state.
func (s *Server) handleToggleWeek(w http.ResponseWriter, r *http.Request) {
	roadmapID, ok := s.pathUUID(w, r, "roadmap_id")
	if !ok {
		return
	}
	week, err := strconv.Atoi(r.PathValue("week"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid week: must be an integer")
		return
	}

	updated, err := s.tracker.ToggleWeek(r.Context(), roadmapID, week)
	if err != nil {
		status := HTTPStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("Error toggling week %d for %s: %v", week, roadmapID, err)
			s.errorResponse(w, status, "failed to toggle week")
			return
		}
		s.errorResponse(w, status, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":         true,
		"progress":        updated.Progress,
		"completed_weeks": updated.CompletedWeeks,
	})
}

// roadmapView renders a persisted roadmap in its wire shape.
func roadmapView(rec *db.RoadmapRecord) map[string]any {
	return map[string]any{
		"id":              rec.ID,
		"user_id":         rec.UserID,
		"title":           rec.Title,
		"roadmap_json":    rec.Weeks.WeekMap(),
		"progress":        rec.Progress,
		"completed_weeks": rec.CompletedWeeks,
		"created_at":      rec.CreatedAt,
		"updated_at":      rec.UpdatedAt,
	}
}
