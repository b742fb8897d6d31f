package chat

import (
	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/types"
)

// Source identifies which authority a resolved roadmap came from.
type Source string

// Roadmap sources, in precedence order.
const (
	SourceSession  Source = "session"
	SourceDatabase Source = "database"
	SourceNone     Source = "none"
)

// Resolved is the outcome of merging the two roadmap authorities for a read.
// Record is set only when the database copy won, since completion state lives
// exclusively on the persisted copy.
type Resolved struct {
	Weeks  types.Roadmap
	Goal   string
	Source Source
	Record *db.RoadmapRecord
}

// Resolve picks the authoritative roadmap for a read. Precedence is strict:
// a non-empty session working copy always wins, however stale; otherwise the
// persisted latest roadmap; otherwise nothing. Pure function, evaluated per
// read and never cached.
func Resolve(working types.Roadmap, workingGoal string, persisted *db.RoadmapRecord) Resolved {
	if !working.IsEmpty() {
		return Resolved{
			Weeks:  working,
			Goal:   workingGoal,
			Source: SourceSession,
		}
	}
	if persisted != nil && !persisted.Weeks.IsEmpty() {
		return Resolved{
			Weeks:  persisted.Weeks,
			Goal:   persisted.Title,
			Source: SourceDatabase,
			Record: persisted,
		}
	}
	return Resolved{Source: SourceNone}
}
