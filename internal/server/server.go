package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/analysis"
	"github.com/jonathan/career-compass/internal/chat"
	"github.com/jonathan/career-compass/internal/config"
	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/roadmap"
	"github.com/jonathan/career-compass/internal/server/ratelimit"
	"github.com/jonathan/career-compass/internal/session"
	"github.com/jonathan/career-compass/internal/types"
)

// chatService is the conversational engine surface the handlers use.
type chatService interface {
	LoadContext(ctx context.Context, userID uuid.UUID) (chat.ContextLoad, error)
	SendMessage(ctx context.Context, userID uuid.UUID, message string) (chat.TurnResult, error)
	History(ctx context.Context, userID uuid.UUID) ([]types.ChatMessage, error)
	MergedRoadmap(ctx context.Context, userID uuid.UUID) chat.Resolved
}

// progressService tracks per-week completion on persisted roadmaps.
type progressService interface {
	SetCompleted(ctx context.Context, roadmapID uuid.UUID, completedWeeks []int) (*db.RoadmapRecord, error)
	ToggleWeek(ctx context.Context, roadmapID uuid.UUID, week int) (*db.RoadmapRecord, error)
}

// roadmapBuilder drafts a roadmap from a skill list.
type roadmapBuilder interface {
	Build(ctx context.Context, skills []string, goal string) types.Roadmap
}

// resumeAnalyzer scores a resume against a target role.
type resumeAnalyzer interface {
	Analyze(ctx context.Context, resumeText, targetRole string) (types.AnalysisPayload, error)
}

// storage is the durable-record surface the handlers use directly.
type storage interface {
	SaveResumeAnalysis(ctx context.Context, userID uuid.UUID, targetRole string, analysis types.AnalysisPayload, resumeContent string) (uuid.UUID, error)
	ListResumeHistory(ctx context.Context, userID uuid.UUID) ([]db.ResumeRecord, error)
	GetResumeByID(ctx context.Context, resumeID uuid.UUID) (*db.ResumeRecord, error)
	SaveRoadmap(ctx context.Context, userID uuid.UUID, title string, weeks types.Roadmap) (uuid.UUID, error)
	GetLatestRoadmap(ctx context.Context, userID uuid.UUID) (*db.RoadmapRecord, error)
	ListRoadmaps(ctx context.Context, userID uuid.UUID) ([]db.RoadmapRecord, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	llmClient   llm.Client
	rateLimiter *ratelimit.Limiter

	sessions  *session.Store
	chat      chatService
	tracker   progressService
	builder   roadmapBuilder
	analyzer  resumeAnalyzer
	extractor analysis.TextExtractor
	store     storage
}

// Config holds server configuration
type Config struct {
	Port         int
	DatabaseURL  string
	APIKey       string
	HistoryLimit int
	TurnTimeout  time.Duration
}

// FromAppConfig converts the loaded application config into server config.
func FromAppConfig(cfg config.Config) Config {
	return Config{
		Port:         cfg.Port,
		DatabaseURL:  cfg.DatabaseURL,
		APIKey:       cfg.APIKey,
		HistoryLimit: cfg.HistoryLimit,
		TurnTimeout:  time.Duration(cfg.TurnTimeoutSecs) * time.Second,
	}
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	llmClient, err := llm.NewClient(context.Background(), llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	sessions := session.NewStore()
	engine := chat.NewEngine(database, sessions, llmClient, chat.NewLLMExtractor(llmClient), chat.Config{
		HistoryLimit: cfg.HistoryLimit,
		TurnTimeout:  cfg.TurnTimeout,
	})

	s := &Server{
		db:        database,
		llmClient: llmClient,
		sessions:  sessions,
		chat:      engine,
		tracker:   roadmap.NewTracker(database),
		builder:   roadmap.NewBuilder(llmClient),
		analyzer:  analysis.NewAnalyzer(llmClient),
		extractor: analysis.PlainTextExtractor{},
		store:     database,
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Long timeout for generation-backed turns
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the request router.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Conversation endpoints
	mux.HandleFunc("POST /chat/load-context/{user_id}", s.handleLoadContext)
	mux.HandleFunc("GET /chat/history/{user_id}", s.handleChatHistory)
	mux.HandleFunc("POST /chat/message", s.handleChatMessage)
	mux.HandleFunc("GET /chat/roadmap/{user_id}", s.handleMergedRoadmap)

	// Roadmap endpoints
	mux.HandleFunc("POST /roadmap/generate", s.handleGenerateRoadmap)
	mux.HandleFunc("GET /roadmap/latest/{user_id}", s.handleLatestRoadmap)
	mux.HandleFunc("GET /roadmap/user/{user_id}", s.handleListRoadmaps)
	mux.HandleFunc("PUT /roadmap/progress", s.handleUpdateProgress)
	mux.HandleFunc("POST /roadmap/{roadmap_id}/toggle/{week}", s.handleToggleWeek)

	// Resume endpoints
	mux.HandleFunc("POST /resume/analyze", s.handleAnalyzeResume)
	mux.HandleFunc("GET /resume/history/{user_id}", s.handleResumeHistory)
	mux.HandleFunc("GET /resume/detail/{resume_id}", s.handleResumeDetail)

	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llmClient != nil {
		if err := s.llmClient.Close(); err != nil {
			log.Printf("Error closing LLM client: %v", err)
		}
	}

	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// pathUUID parses a UUID path segment, writing a 400 response on failure.
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, segment string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(segment))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: must be a UUID", segment))
		return uuid.Nil, false
	}
	return id, true
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
