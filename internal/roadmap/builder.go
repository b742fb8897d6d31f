package roadmap

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/schemas"
	"github.com/jonathan/career-compass/internal/types"
)

// maxGeneratedWeeks caps the fallback plan so a long skill list does not
// produce an unusable half-year roadmap.
const maxGeneratedWeeks = 12

// Generator is the text-generation backend used for roadmap drafting.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

// Builder turns a skill list into a week-indexed learning roadmap. It asks
// the generation backend for a plan and falls back to a deterministic
// one-skill-per-week conversion when generation fails or returns garbage, so
// roadmap creation never hard-fails on backend trouble.
type Builder struct {
	gen Generator
}

// NewBuilder creates a roadmap builder. gen may be nil, in which case only
// the deterministic conversion is used.
func NewBuilder(gen Generator) *Builder {
	return &Builder{gen: gen}
}

// Build produces an ordered roadmap covering the given skills toward a goal.
func (b *Builder) Build(ctx context.Context, skills []string, goal string) types.Roadmap {
	if b.gen != nil {
		if weeks, err := b.generate(ctx, skills, goal); err != nil {
			log.Printf("[roadmap] generation failed, using skill conversion: %v", err)
		} else if !weeks.IsEmpty() {
			return weeks
		}
	}
	return FromSkills(skills)
}

// generate drafts a roadmap via the generation backend and validates the
// result before accepting it.
func (b *Builder) generate(ctx context.Context, skills []string, goal string) (types.Roadmap, error) {
	prompt := llm.BuildExtractionPrompt(llm.RoadmapSchema(goal, skills), strings.Join(skills, "\n"))

	raw, err := b.gen.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("roadmap generation call failed: %w", err)
	}

	if err := schemas.ValidateRoadmap(raw); err != nil {
		return nil, fmt.Errorf("generated roadmap rejected: %w", err)
	}

	var weekMap map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &weekMap); err != nil {
		return nil, fmt.Errorf("failed to parse generated roadmap: %w", err)
	}
	return types.ParseWeekMap(weekMap)
}

// FromSkills converts a missing-skill list directly into week topics, one
// skill per week in the given order, with generic starter resources.
func FromSkills(skills []string) types.Roadmap {
	weeks := make(types.Roadmap, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		weeks = append(weeks, types.WeekPlan{
			Topic: skill,
			Resources: []string{
				fmt.Sprintf("Official %s documentation", skill),
				fmt.Sprintf("A hands-on %s practice project", skill),
			},
		})
		if len(weeks) == maxGeneratedWeeks {
			break
		}
	}
	return weeks
}
