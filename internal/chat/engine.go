// Package chat implements the conversational engine: per-user turn
// serialization, context hydration, prompt assembly, and the application of
// roadmap edits extracted from assistant replies.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/prompts"
	"github.com/jonathan/career-compass/internal/session"
	"github.com/jonathan/career-compass/internal/types"
)

// fallbackReply is appended as the assistant turn when the generation backend
// fails, keeping every user message paired with exactly one reply.
const fallbackReply = "Sorry, I'm having trouble responding right now. Please try again in a moment."

// defaultHistoryLimit bounds how much conversation history is fed back into
// the prompt on each turn.
const defaultHistoryLimit = 10

// defaultTurnTimeout bounds the wait on the generation backend so a hung call
// resolves the turn through the fallback path instead of wedging the session.
const defaultTurnTimeout = 60 * time.Second

// maxHistoryRead caps a rendered conversation log at the most recent messages.
const maxHistoryRead = 50

// Store is the durable storage the engine depends on.
type Store interface {
	SaveChatMessage(ctx context.Context, userID uuid.UUID, role, content string) error
	GetChatHistory(ctx context.Context, userID uuid.UUID, limit int) ([]types.ChatMessage, error)
	GetLatestResumeContext(ctx context.Context, userID uuid.UUID) (*db.ResumeContext, error)
	GetLatestRoadmap(ctx context.Context, userID uuid.UUID) (*db.RoadmapRecord, error)
	SaveRoadmap(ctx context.Context, userID uuid.UUID, title string, weeks types.Roadmap) (uuid.UUID, error)
}

// Generator is the opaque text-generation backend.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

// Config holds optional engine tuning.
type Config struct {
	HistoryLimit int
	TurnTimeout  time.Duration
}

// Engine drives conversational turns. Turns for one user are strictly
// serialized; turns for different users run fully in parallel.
type Engine struct {
	store        Store
	sessions     *session.Store
	gen          Generator
	extractor    MutationExtractor
	historyLimit int
	turnTimeout  time.Duration
}

// NewEngine creates a conversation engine.
func NewEngine(store Store, sessions *session.Store, gen Generator, extractor MutationExtractor, cfg Config) *Engine {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = defaultTurnTimeout
	}
	return &Engine{
		store:        store,
		sessions:     sessions,
		gen:          gen,
		extractor:    extractor,
		historyLimit: cfg.HistoryLimit,
		turnTimeout:  cfg.TurnTimeout,
	}
}

// ContextLoad reports what hydration found for a user.
type ContextLoad struct {
	ResumeLoaded bool `json:"resume"`
	RoadmapFound bool `json:"roadmap"`
}

// LoadContext hydrates a user's session from their most recent resume
// analysis. Repeated calls replace the snapshot with the then-latest
// analysis. A user with no analyses is a no-op, not an error: the session is
// still marked hydrated and conversation proceeds without context.
func (e *Engine) LoadContext(ctx context.Context, userID uuid.UUID) (ContextLoad, error) {
	sess := e.sessions.Get(userID)

	rc, err := e.store.GetLatestResumeContext(ctx, userID)
	if err != nil {
		return ContextLoad{}, fmt.Errorf("failed to load context for %s: %w", userID, err)
	}

	var load ContextLoad
	if rc != nil {
		sess.SetSnapshot(types.ContextSnapshot{
			ResumeText: rc.ResumeContent,
			TargetRole: rc.TargetRole,
			SkillsHave: rc.Analysis.SkillsYouHave,
			SkillsNeed: rc.Analysis.SkillsYouNeed,
		})
		load.ResumeLoaded = true
	} else {
		sess.MarkHydrated()
	}

	if persisted, err := e.store.GetLatestRoadmap(ctx, userID); err != nil {
		log.Printf("[chat] roadmap lookup during hydration failed for %s: %v", userID, err)
	} else if persisted != nil {
		load.RoadmapFound = true
	}

	return load, nil
}

// TurnResult is the outcome of one conversational turn.
type TurnResult struct {
	Reply          string
	ContextUsed    bool
	RoadmapUpdated bool
}

// SendMessage runs one conversational turn for a user: record the user
// message, assemble context, call the generation backend, apply any roadmap
// edit the reply carries, and record the assistant reply. A backend failure
// after the user message is recorded still produces an assistant message
// (the canned fallback), so history stays consistent.
func (e *Engine) SendMessage(ctx context.Context, userID uuid.UUID, message string) (TurnResult, error) {
	sess := e.sessions.Get(userID)

	// Serialize turns per user; a concurrent send waits here.
	if err := sess.BeginTurn(ctx); err != nil {
		return TurnResult{}, fmt.Errorf("turn cancelled while waiting: %w", err)
	}
	defer sess.EndTurn()

	// Hydration must complete (or definitively fail) before the first turn.
	// A failure is soft: the turn proceeds without context.
	if !sess.Hydrated() {
		if _, err := e.LoadContext(ctx, userID); err != nil {
			log.Printf("[chat] hydration failed for %s, proceeding without context: %v", userID, err)
		}
	}

	if err := e.store.SaveChatMessage(ctx, userID, types.RoleUser, message); err != nil {
		return TurnResult{}, fmt.Errorf("failed to record user message: %w", err)
	}

	snapshot := sess.Snapshot()
	contextUsed := !snapshot.IsEmpty()
	resolved := e.resolveForTurn(ctx, sess, userID)

	history, err := e.store.GetChatHistory(ctx, userID, e.historyLimit)
	if err != nil {
		// Soft failure: generate without history rather than failing the turn.
		log.Printf("[chat] history fetch failed for %s: %v", userID, err)
		history = nil
	}

	prompt := assemblePrompt(snapshot, resolved, history, message)

	genCtx, cancel := context.WithTimeout(ctx, e.turnTimeout)
	reply, genErr := e.gen.GenerateContent(genCtx, prompt, llm.TierStandard)
	cancel()

	result := TurnResult{ContextUsed: contextUsed}
	if genErr != nil {
		log.Printf("[chat] generation failed for %s: %v", userID, genErr)
		result.Reply = fallbackReply
	} else {
		result.Reply = reply
		result.RoadmapUpdated = e.applyMutation(ctx, sess, userID, message, reply, resolved)
	}

	if err := e.store.SaveChatMessage(ctx, userID, types.RoleAssistant, result.Reply); err != nil {
		return TurnResult{}, fmt.Errorf("failed to record assistant message: %w", err)
	}

	return result, nil
}

// applyMutation runs the pluggable extractor over the exchange and, when a
// full replacement roadmap comes back, swaps the session working copy
// wholesale and writes the new plan through to storage. Reports whether the
// working copy changed.
func (e *Engine) applyMutation(ctx context.Context, sess *session.Session, userID uuid.UUID, message, reply string, current Resolved) bool {
	if e.extractor == nil {
		return false
	}

	mutation, err := e.extractor.Extract(ctx, message, reply, current)
	if err != nil {
		log.Printf("[chat] mutation extraction failed for %s: %v", userID, err)
		return false
	}
	if mutation == nil || mutation.Weeks.IsEmpty() {
		return false
	}

	goal := mutation.Goal
	if goal == "" {
		goal = current.Goal
	}
	if goal == "" {
		goal = sess.Snapshot().TargetRole
	}
	if goal == "" {
		goal = "Learning Path"
	}

	sess.SetWorking(mutation.Weeks, goal)

	// Conversational edits are committed so they survive session loss. A
	// failed write is soft: the session copy stays authoritative via resolve
	// precedence.
	if _, err := e.store.SaveRoadmap(ctx, userID, goal, mutation.Weeks); err != nil {
		log.Printf("[chat] failed to persist conversational roadmap edit for %s: %v", userID, err)
	}
	return true
}

// History returns the ordered conversation log for a user, bounded to the
// most recent maxHistoryRead messages.
func (e *Engine) History(ctx context.Context, userID uuid.UUID) ([]types.ChatMessage, error) {
	return e.store.GetChatHistory(ctx, userID, maxHistoryRead)
}

// MergedRoadmap resolves the authoritative roadmap for a read. A storage
// failure degrades to the session copy (or none) rather than erroring.
func (e *Engine) MergedRoadmap(ctx context.Context, userID uuid.UUID) Resolved {
	sess := e.sessions.Get(userID)
	working, goal := sess.Working()

	persisted, err := e.store.GetLatestRoadmap(ctx, userID)
	if err != nil {
		log.Printf("[chat] roadmap fetch failed for %s: %v", userID, err)
		persisted = nil
	}
	return Resolve(working, goal, persisted)
}

// resolveForTurn picks the roadmap fed into the prompt for this turn.
func (e *Engine) resolveForTurn(ctx context.Context, sess *session.Session, userID uuid.UUID) Resolved {
	working, goal := sess.Working()

	var persisted *db.RoadmapRecord
	if working.IsEmpty() {
		var err error
		persisted, err = e.store.GetLatestRoadmap(ctx, userID)
		if err != nil {
			log.Printf("[chat] roadmap fetch failed for %s: %v", userID, err)
			persisted = nil
		}
	}
	return Resolve(working, goal, persisted)
}

// assemblePrompt builds the generation prompt from the context snapshot, the
// resolved roadmap, and recent history.
func assemblePrompt(snapshot types.ContextSnapshot, resolved Resolved, history []types.ChatMessage, message string) string {
	var sb strings.Builder

	sb.WriteString(prompts.MustGet("chat.json", "system"))
	sb.WriteString("\n\n")

	if !snapshot.IsEmpty() {
		sb.WriteString(prompts.Format(prompts.MustGet("chat.json", "resume_context"), map[string]string{
			"TargetRole": snapshot.TargetRole,
			"SkillsHave": strings.Join(snapshot.SkillsHave, ", "),
			"SkillsNeed": strings.Join(snapshot.SkillsNeed, ", "),
			"ResumeText": snapshot.ResumeText,
		}))
		sb.WriteString("\n\n")
	}

	if resolved.Source != SourceNone {
		sb.WriteString(prompts.Format(prompts.MustGet("chat.json", "roadmap_context"), map[string]string{
			"Goal":    resolved.Goal,
			"Roadmap": formatRoadmap(resolved.Weeks),
		}))
		sb.WriteString("\n\n")
	}

	if len(history) > 0 {
		sb.WriteString(prompts.MustGet("chat.json", "history_header"))
		sb.WriteString("\n")
		for _, m := range history {
			sb.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Content))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(prompts.Format(prompts.MustGet("chat.json", "turn"), map[string]string{
		"Message": message,
	}))

	return sb.String()
}

// formatRoadmap renders the week sequence as plain text for the prompt.
func formatRoadmap(weeks types.Roadmap) string {
	var sb strings.Builder
	for i, week := range weeks {
		sb.WriteString(fmt.Sprintf("Week %d: %s", i+1, week.Topic))
		if len(week.Resources) > 0 {
			sb.WriteString(fmt.Sprintf(" (resources: %s)", strings.Join(week.Resources, ", ")))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
