package chat

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_SessionCopyWins(t *testing.T) {
	working := types.Roadmap{{Topic: "Python"}}
	persisted := &db.RoadmapRecord{
		ID:    uuid.New(),
		Title: "Data Engineer",
		Weeks: types.Roadmap{{Topic: "Rust"}, {Topic: "Go"}},
	}

	resolved := Resolve(working, "Python Developer", persisted)

	assert.Equal(t, SourceSession, resolved.Source)
	assert.Equal(t, "Python Developer", resolved.Goal)
	require.Len(t, resolved.Weeks, 1)
	assert.Equal(t, "Python", resolved.Weeks[0].Topic)
	assert.Nil(t, resolved.Record, "completion state only rides on the database copy")
}

func TestResolve_FallsBackToPersisted(t *testing.T) {
	persisted := &db.RoadmapRecord{
		ID:             uuid.New(),
		Title:          "Data Engineer",
		Weeks:          types.Roadmap{{Topic: "Spark"}},
		Progress:       50,
		CompletedWeeks: []int{1},
	}

	resolved := Resolve(nil, "", persisted)

	assert.Equal(t, SourceDatabase, resolved.Source)
	assert.Equal(t, "Data Engineer", resolved.Goal)
	require.NotNil(t, resolved.Record)
	assert.Equal(t, persisted.ID, resolved.Record.ID)
	assert.Equal(t, 50, resolved.Record.Progress)
}

func TestResolve_None(t *testing.T) {
	resolved := Resolve(nil, "", nil)
	assert.Equal(t, SourceNone, resolved.Source)
	assert.True(t, resolved.Weeks.IsEmpty())

	// A persisted record with no weeks does not count as a roadmap.
	empty := &db.RoadmapRecord{ID: uuid.New(), Title: "Empty"}
	resolved = Resolve(nil, "", empty)
	assert.Equal(t, SourceNone, resolved.Source)
}
