package server

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/analysis"
	"github.com/jonathan/career-compass/internal/chat"
	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/session"
	"github.com/jonathan/career-compass/internal/types"
)

// Fakes for handler tests. Handlers depend on small interfaces so tests can
// run without a database or generation backend.

type fakeChat struct {
	load       chat.ContextLoad
	loadErr    error
	turn       chat.TurnResult
	turnErr    error
	history    []types.ChatMessage
	historyErr error
	resolved   chat.Resolved

	lastMessage string
}

func (f *fakeChat) LoadContext(_ context.Context, _ uuid.UUID) (chat.ContextLoad, error) {
	return f.load, f.loadErr
}

func (f *fakeChat) SendMessage(_ context.Context, _ uuid.UUID, message string) (chat.TurnResult, error) {
	f.lastMessage = message
	return f.turn, f.turnErr
}

func (f *fakeChat) History(_ context.Context, _ uuid.UUID) ([]types.ChatMessage, error) {
	return f.history, f.historyErr
}

func (f *fakeChat) MergedRoadmap(_ context.Context, _ uuid.UUID) chat.Resolved {
	return f.resolved
}

type fakeTracker struct {
	rec *db.RoadmapRecord
	err error

	lastCompleted []int
	lastWeek      int
}

func (f *fakeTracker) SetCompleted(_ context.Context, _ uuid.UUID, completedWeeks []int) (*db.RoadmapRecord, error) {
	f.lastCompleted = completedWeeks
	return f.rec, f.err
}

func (f *fakeTracker) ToggleWeek(_ context.Context, _ uuid.UUID, week int) (*db.RoadmapRecord, error) {
	f.lastWeek = week
	return f.rec, f.err
}

type fakeBuilder struct {
	weeks types.Roadmap
}

func (f *fakeBuilder) Build(_ context.Context, _ []string, _ string) types.Roadmap {
	return f.weeks
}

type fakeAnalyzer struct {
	payload types.AnalysisPayload
	err     error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _, _ string) (types.AnalysisPayload, error) {
	return f.payload, f.err
}

type fakeStorage struct {
	resumeID     uuid.UUID
	saveErr      error
	resumes      []db.ResumeRecord
	resumeDetail *db.ResumeRecord
	roadmapID    uuid.UUID
	roadmapErr   error
	latest       *db.RoadmapRecord
	latestErr    error
	roadmaps     []db.RoadmapRecord

	savedRoadmaps int
	savedAnalyses int
}

func (f *fakeStorage) SaveResumeAnalysis(_ context.Context, _ uuid.UUID, _ string, _ types.AnalysisPayload, _ string) (uuid.UUID, error) {
	if f.saveErr != nil {
		return uuid.Nil, f.saveErr
	}
	f.savedAnalyses++
	return f.resumeID, nil
}

func (f *fakeStorage) ListResumeHistory(_ context.Context, _ uuid.UUID) ([]db.ResumeRecord, error) {
	return f.resumes, nil
}

func (f *fakeStorage) GetResumeByID(_ context.Context, _ uuid.UUID) (*db.ResumeRecord, error) {
	return f.resumeDetail, nil
}

func (f *fakeStorage) SaveRoadmap(_ context.Context, _ uuid.UUID, _ string, _ types.Roadmap) (uuid.UUID, error) {
	if f.roadmapErr != nil {
		return uuid.Nil, f.roadmapErr
	}
	f.savedRoadmaps++
	return f.roadmapID, nil
}

func (f *fakeStorage) GetLatestRoadmap(_ context.Context, _ uuid.UUID) (*db.RoadmapRecord, error) {
	return f.latest, f.latestErr
}

func (f *fakeStorage) ListRoadmaps(_ context.Context, _ uuid.UUID) ([]db.RoadmapRecord, error) {
	return f.roadmaps, nil
}

// newTestServer builds a server with all fakes wired and no HTTP listener.
func newTestServer() (*Server, *fakeChat, *fakeTracker, *fakeBuilder, *fakeAnalyzer, *fakeStorage) {
	fc := &fakeChat{}
	ft := &fakeTracker{}
	fb := &fakeBuilder{}
	fa := &fakeAnalyzer{}
	fs := &fakeStorage{resumeID: uuid.New(), roadmapID: uuid.New()}

	s := &Server{
		sessions:  session.NewStore(),
		chat:      fc,
		tracker:   ft,
		builder:   fb,
		analyzer:  fa,
		extractor: analysis.PlainTextExtractor{},
		store:     fs,
	}
	return s, fc, ft, fb, fa, fs
}

// doRequest routes a request through the server's mux so path values resolve.
func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, req)
	return w
}
