package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/session"
	"github.com/jonathan/career-compass/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	mu            sync.Mutex
	messages      []types.ChatMessage
	saveErr       error
	resumeCtx     *db.ResumeContext
	resumeErr     error
	latest        *db.RoadmapRecord
	latestErr     error
	savedRoadmaps []types.Roadmap
	savedTitles   []string
}

func (f *fakeStore) SaveChatMessage(_ context.Context, _ uuid.UUID, role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.messages = append(f.messages, types.ChatMessage{Role: role, Content: content})
	return nil
}

func (f *fakeStore) GetChatHistory(_ context.Context, _ uuid.UUID, limit int) ([]types.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := append([]types.ChatMessage(nil), f.messages...)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (f *fakeStore) GetLatestResumeContext(_ context.Context, _ uuid.UUID) (*db.ResumeContext, error) {
	return f.resumeCtx, f.resumeErr
}

func (f *fakeStore) GetLatestRoadmap(_ context.Context, _ uuid.UUID) (*db.RoadmapRecord, error) {
	return f.latest, f.latestErr
}

func (f *fakeStore) SaveRoadmap(_ context.Context, _ uuid.UUID, title string, weeks types.Roadmap) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedRoadmaps = append(f.savedRoadmaps, weeks)
	f.savedTitles = append(f.savedTitles, title)
	return uuid.New(), nil
}

func (f *fakeStore) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

// fakeGen is a scriptable generation backend.
type fakeGen struct {
	reply   string
	err     error
	entered chan struct{} // signaled when GenerateContent is entered
	release chan struct{} // blocks GenerateContent until signaled
}

func (g *fakeGen) GenerateContent(ctx context.Context, _ string, _ llm.ModelTier) (string, error) {
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.reply, g.err
}

func (g *fakeGen) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return "{}", nil
}

// fakeExtractor returns a fixed mutation.
type fakeExtractor struct {
	mutation *Mutation
	err      error
	calls    int
}

func (x *fakeExtractor) Extract(_ context.Context, _, _ string, _ Resolved) (*Mutation, error) {
	x.calls++
	return x.mutation, x.err
}

func newTestEngine(store *fakeStore, gen Generator, extractor MutationExtractor) *Engine {
	return NewEngine(store, session.NewStore(), gen, extractor, Config{})
}

func TestSendMessage_RecordsBothSides(t *testing.T) {
	store := &fakeStore{
		resumeCtx: &db.ResumeContext{
			ResumeContent: "resume text",
			TargetRole:    "Backend Engineer",
			Analysis: types.AnalysisPayload{
				SkillsYouHave: []string{"Go"},
				SkillsYouNeed: []string{"Kubernetes"},
			},
		},
	}
	gen := &fakeGen{reply: "Here is my advice."}
	engine := newTestEngine(store, gen, &fakeExtractor{})

	result, err := engine.SendMessage(context.Background(), uuid.New(), "How do I learn Kubernetes?")
	require.NoError(t, err)

	assert.Equal(t, "Here is my advice.", result.Reply)
	assert.True(t, result.ContextUsed)
	assert.False(t, result.RoadmapUpdated)

	require.Equal(t, 2, store.messageCount())
	assert.Equal(t, types.RoleUser, store.messages[0].Role)
	assert.Equal(t, types.RoleAssistant, store.messages[1].Role)
}

func TestSendMessage_NoContext(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, &fakeGen{reply: "ok"}, nil)

	result, err := engine.SendMessage(context.Background(), uuid.New(), "hello")
	require.NoError(t, err)
	assert.False(t, result.ContextUsed)
}

func TestSendMessage_GenerationFailureUsesFallback(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGen{err: fmt.Errorf("backend down")}
	extractor := &fakeExtractor{}
	engine := newTestEngine(store, gen, extractor)

	result, err := engine.SendMessage(context.Background(), uuid.New(), "hello")
	require.NoError(t, err, "a backend failure resolves the turn, it does not error it")

	assert.Equal(t, fallbackReply, result.Reply)
	assert.False(t, result.RoadmapUpdated)
	assert.Zero(t, extractor.calls, "no mutation extraction on a failed generation")

	// History stays paired: the user message still got an assistant reply.
	require.Equal(t, 2, store.messageCount())
	assert.Equal(t, fallbackReply, store.messages[1].Content)
}

func TestSendMessage_UserSaveFailureAborts(t *testing.T) {
	store := &fakeStore{saveErr: fmt.Errorf("db down")}
	engine := newTestEngine(store, &fakeGen{reply: "ok"}, nil)

	_, err := engine.SendMessage(context.Background(), uuid.New(), "hello")
	assert.Error(t, err)
}

func TestSendMessage_AppliesRoadmapMutation(t *testing.T) {
	store := &fakeStore{}
	newWeeks := types.Roadmap{{Topic: "Terraform"}, {Topic: "AWS"}}
	extractor := &fakeExtractor{mutation: &Mutation{Goal: "Cloud Engineer", Weeks: newWeeks}}
	engine := newTestEngine(store, &fakeGen{reply: "Swapped week 1 for Terraform."}, extractor)

	userID := uuid.New()
	result, err := engine.SendMessage(context.Background(), userID, "replace week 1 with Terraform")
	require.NoError(t, err)
	assert.True(t, result.RoadmapUpdated)

	// The working copy was replaced wholesale.
	working, goal := engine.sessions.Get(userID).Working()
	assert.Equal(t, "Cloud Engineer", goal)
	require.Len(t, working, 2)
	assert.Equal(t, "Terraform", working[0].Topic)

	// And the edit was committed.
	require.Len(t, store.savedRoadmaps, 1)
	assert.Equal(t, "Cloud Engineer", store.savedTitles[0])
}

func TestSendMessage_ExtractorFailureIsSoft(t *testing.T) {
	store := &fakeStore{}
	extractor := &fakeExtractor{err: fmt.Errorf("extraction broke")}
	engine := newTestEngine(store, &fakeGen{reply: "ok"}, extractor)

	result, err := engine.SendMessage(context.Background(), uuid.New(), "hello")
	require.NoError(t, err)
	assert.False(t, result.RoadmapUpdated)
	assert.Equal(t, 2, store.messageCount())
}

func TestSendMessage_SerializesTurnsPerUser(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGen{
		reply:   "done",
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	engine := newTestEngine(store, gen, nil)
	userID := uuid.New()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := engine.SendMessage(context.Background(), userID, "first")
		assert.NoError(t, err)
	}()

	// Wait until the first turn is inside the generator.
	<-gen.entered
	require.Equal(t, 1, store.messageCount())

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := engine.SendMessage(context.Background(), userID, "second")
		assert.NoError(t, err)
	}()

	// The second turn must wait at the turn lock: it may not even record its
	// user message while the first turn is in flight.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, store.messageCount())

	gen.release <- struct{}{}
	<-gen.entered
	gen.release <- struct{}{}
	wg.Wait()

	require.Equal(t, 4, store.messageCount())
	assert.Equal(t, "first", store.messages[0].Content)
	assert.Equal(t, "done", store.messages[1].Content)
	assert.Equal(t, "second", store.messages[2].Content)
}

func TestLoadContext_SetsSnapshot(t *testing.T) {
	store := &fakeStore{
		resumeCtx: &db.ResumeContext{
			ResumeContent: "text",
			TargetRole:    "Data Engineer",
			Analysis:      types.AnalysisPayload{SkillsYouNeed: []string{"Spark"}},
		},
		latest: &db.RoadmapRecord{Weeks: types.Roadmap{{Topic: "Spark"}}},
	}
	sessions := session.NewStore()
	engine := NewEngine(store, sessions, &fakeGen{}, nil, Config{})

	userID := uuid.New()
	load, err := engine.LoadContext(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, load.ResumeLoaded)
	assert.True(t, load.RoadmapFound)
	snap := sessions.Get(userID).Snapshot()
	assert.Equal(t, "Data Engineer", snap.TargetRole)
}

func TestLoadContext_NoAnalysisIsNoOp(t *testing.T) {
	store := &fakeStore{}
	sessions := session.NewStore()
	engine := NewEngine(store, sessions, &fakeGen{}, nil, Config{})

	userID := uuid.New()
	load, err := engine.LoadContext(context.Background(), userID)
	require.NoError(t, err)

	assert.False(t, load.ResumeLoaded)
	assert.False(t, load.RoadmapFound)
	assert.True(t, sessions.Get(userID).Hydrated(), "hydration ran even though nothing was found")
	assert.True(t, sessions.Get(userID).Snapshot().IsEmpty())
}

func TestHistory_BoundsRead(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < maxHistoryRead+10; i++ {
		store.messages = append(store.messages, types.ChatMessage{
			Role:    types.RoleUser,
			Content: fmt.Sprintf("message %d", i),
		})
	}
	engine := newTestEngine(store, &fakeGen{}, nil)

	history, err := engine.History(context.Background(), uuid.New())
	require.NoError(t, err)

	require.Len(t, history, maxHistoryRead)
	assert.Equal(t, "message 10", history[0].Content, "oldest messages fall off")
}

func TestMergedRoadmap_DegradesOnStoreError(t *testing.T) {
	store := &fakeStore{latestErr: fmt.Errorf("db down")}
	engine := newTestEngine(store, &fakeGen{}, nil)

	resolved := engine.MergedRoadmap(context.Background(), uuid.New())
	assert.Equal(t, SourceNone, resolved.Source)
}
