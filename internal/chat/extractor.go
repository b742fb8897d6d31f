package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/schemas"
	"github.com/jonathan/career-compass/internal/types"
)

// Mutation is a full replacement roadmap extracted from a conversational
// exchange. Partial patches are not representable: an exchange either leaves
// the roadmap alone or replaces it entirely.
type Mutation struct {
	Goal  string
	Weeks types.Roadmap
}

// MutationExtractor inspects a user/assistant exchange for an embedded
// roadmap edit. A nil Mutation means the exchange changed nothing.
type MutationExtractor interface {
	Extract(ctx context.Context, userMessage, reply string, current Resolved) (*Mutation, error)
}

// LLMExtractor detects roadmap edits with a structured extraction call
// against the generation backend. The returned roadmap JSON is validated
// against the roadmap schema before it is allowed anywhere near session
// state.
type LLMExtractor struct {
	gen Generator
}

// NewLLMExtractor creates an extractor backed by the given generator.
func NewLLMExtractor(gen Generator) *LLMExtractor {
	return &LLMExtractor{gen: gen}
}

// mutationOutput mirrors the JSON shape of the RoadmapMutation schema.
type mutationOutput struct {
	Modified bool            `json:"modified"`
	Goal     string          `json:"goal"`
	Roadmap  json.RawMessage `json:"roadmap"`
}

// Extract runs the mutation-detection extraction over one exchange.
func (x *LLMExtractor) Extract(ctx context.Context, userMessage, reply string, current Resolved) (*Mutation, error) {
	var input strings.Builder
	input.WriteString("User request:\n")
	input.WriteString(userMessage)
	input.WriteString("\n\nAssistant reply:\n")
	input.WriteString(reply)
	input.WriteString("\n\nCurrent roadmap")
	if current.Source == SourceNone {
		input.WriteString(": (none)\n")
	} else {
		currentJSON, err := json.Marshal(current.Weeks.WeekMap())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal current roadmap: %w", err)
		}
		input.WriteString(fmt.Sprintf(" (goal %q):\n%s\n", current.Goal, currentJSON))
	}

	prompt := llm.BuildExtractionPrompt(llm.RoadmapMutationSchema(), input.String())

	raw, err := x.gen.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("mutation extraction call failed: %w", err)
	}

	var out mutationOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse mutation output: %w", err)
	}
	if !out.Modified || len(out.Roadmap) == 0 {
		return nil, nil
	}

	if err := schemas.ValidateRoadmap(string(out.Roadmap)); err != nil {
		return nil, fmt.Errorf("extracted roadmap rejected: %w", err)
	}

	var weekMap map[string]json.RawMessage
	if err := json.Unmarshal(out.Roadmap, &weekMap); err != nil {
		return nil, fmt.Errorf("failed to parse extracted roadmap: %w", err)
	}
	weeks, err := types.ParseWeekMap(weekMap)
	if err != nil {
		return nil, fmt.Errorf("failed to order extracted weeks: %w", err)
	}
	if weeks.IsEmpty() {
		return nil, nil
	}

	return &Mutation{Goal: out.Goal, Weeks: weeks}, nil
}
