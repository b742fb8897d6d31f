package server

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/types"
)

// maxResumeUploadBytes caps resume uploads.
const maxResumeUploadBytes = 10 << 20 // 10 MB

// handleAnalyzeResume runs the full analysis flow: extract text from the
// uploaded file, score it against the target role, persist the analysis, and
// draft a roadmap from the missing skills. All request validation happens
// before the first backend call.
func (s *Server) handleAnalyzeResume(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxResumeUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	targetRole := strings.TrimSpace(r.FormValue("target_role"))
	if targetRole == "" {
		s.errorResponse(w, http.StatusBadRequest, "target_role is required")
		return
	}
	userID, err := uuid.Parse(r.FormValue("user_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid user_id: must be a UUID")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(file, maxResumeUploadBytes))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	resumeText, err := s.extractor.Extract(r.Context(), header.Filename, data)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := s.analyzer.Analyze(r.Context(), resumeText, targetRole)
	if err != nil {
		log.Printf("Error analyzing resume for %s: %v", userID, err)
		s.errorResponse(w, http.StatusBadGateway, "resume analysis failed")
		return
	}

	if _, err := s.store.SaveResumeAnalysis(r.Context(), userID, targetRole, payload, resumeText); err != nil {
		log.Printf("Error saving resume analysis for %s: %v", userID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to save analysis")
		return
	}

	// The new analysis immediately becomes the session context.
	s.sessions.Get(userID).SetSnapshot(types.ContextSnapshot{
		ResumeText: resumeText,
		TargetRole: targetRole,
		SkillsHave: payload.SkillsYouHave,
		SkillsNeed: payload.SkillsYouNeed,
	})

	// A roadmap is drafted from the skill gap when there is one. Failure to
	// persist it degrades the response, not the analysis.
	roadmapGenerated := false
	if len(payload.SkillsYouNeed) > 0 {
		weeks := s.builder.Build(r.Context(), payload.SkillsYouNeed, targetRole)
		if !weeks.IsEmpty() {
			if _, err := s.store.SaveRoadmap(r.Context(), userID, targetRole, weeks); err != nil {
				log.Printf("Error saving generated roadmap for %s: %v", userID, err)
			} else {
				s.sessions.Get(userID).SetWorking(weeks, targetRole)
				roadmapGenerated = true
			}
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"ats_score":         payload.ATSScore,
		"skills_you_have":   payload.SkillsYouHave,
		"skills_you_need":   payload.SkillsYouNeed,
		"roadmap_generated": roadmapGenerated,
	})
}

// handleResumeHistory returns all of a user's analyses, newest first, without
// resume content.
func (s *Server) handleResumeHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.pathUUID(w, r, "user_id")
	if !ok {
		return
	}

	records, err := s.store.ListResumeHistory(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing resume history for %s: %v", userID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list resume history")
		return
	}
	if records == nil {
		records = []db.ResumeRecord{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"history": records})
}

// handleResumeDetail returns one analysis including the stored resume text.
func (s *Server) handleResumeDetail(w http.ResponseWriter, r *http.Request) {
	resumeID, ok := s.pathUUID(w, r, "resume_id")
	if !ok {
		return
	}

	rec, err := s.store.GetResumeByID(r.Context(), resumeID)
	if err != nil {
		log.Printf("Error fetching resume %s: %v", resumeID, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to fetch resume")
		return
	}
	if rec == nil {
		notFound := &ErrResumeNotFound{ResumeID: resumeID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"resume": rec})
}
