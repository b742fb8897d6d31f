package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/chat"
	"github.com/jonathan/career-compass/internal/types"
)

// greeting opens every rendered conversation. It is prefixed at read time and
// never written to the conversation log.
const greeting = "Hi! I'm your career coach. Ask me anything about your skills, your resume analysis, or your learning roadmap."

// handleLoadContext hydrates a user's session from their latest resume
// analysis. A user with no analyses gets success=false with a 200; that is a
// documented no-op, not an error.
func (s *Server) handleLoadContext(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUUID(w, r, "user_id")
	if !ok {
		return
	}

	load, err := s.chat.LoadContext(r.Context(), userID)
	if err != nil {
		log.Printf("Error loading context for %s: %v", userID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to load context")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": load.ResumeLoaded,
		"context": load,
	})
}

// handleChatHistory returns the full conversation log for a user, with the
// standing greeting prefixed.
func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUUID(w, r, "user_id")
	if !ok {
		return
	}

	history, err := s.chat.History(r.Context(), userID)
	if err != nil {
		log.Printf("Error fetching chat history for %s: %v", userID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to fetch chat history")
		return
	}

	rendered := make([]types.ChatMessage, 0, len(history)+1)
	rendered = append(rendered, types.ChatMessage{Role: types.RoleAssistant, Content: greeting})
	rendered = append(rendered, history...)

	s.jsonResponse(w, http.StatusOK, map[string]any{"messages": rendered})
}

// handleChatMessage runs one conversational turn.
func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
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

	result, err := s.chat.SendMessage(r.Context(), userID, req.Message)
	if err != nil {
		log.Printf("Error processing message for %s: %v", userID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"response":        result.Reply,
		"context_used":    result.ContextUsed,
		"roadmap_updated": result.RoadmapUpdated,
	})
}

// handleMergedRoadmap resolves the authoritative roadmap for a user: the
// session working copy when one exists, otherwise the persisted latest. When
// the persisted copy wins, it is also loaded into session working memory so
// follow-up conversational edits start from it.
func (s *Server) handleMergedRoadmap(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUUID(w, r, "user_id")
	if !ok {
		return
	}

	resolved := s.chat.MergedRoadmap(r.Context(), userID)

	response := map[string]any{
		"source":  resolved.Source,
		"goal":    resolved.Goal,
		"roadmap": resolved.Weeks.WeekMap(),
	}

	if resolved.Source == chat.SourceDatabase && resolved.Record != nil {
		response["id"] = resolved.Record.ID
		response["progress"] = resolved.Record.Progress
		response["completed_weeks"] = resolved.Record.CompletedWeeks
		s.sessions.Get(userID).SetWorking(resolved.Weeks, resolved.Goal)
	}

	s.jsonResponse(w, http.StatusOK, response)
}
