// Package analysis runs resume-gap analysis: scoring a resume against a
// target role and extracting the skills it shows and the skills it lacks.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/types"
	"golang.org/x/sync/errgroup"
)

// Generator is the structured-extraction backend.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

// Analyzer produces an AnalysisPayload from resume text. The skill-gap
// extraction and the ATS scoring are independent backend calls and run
// concurrently.
type Analyzer struct {
	gen Generator
}

// NewAnalyzer creates an analyzer backed by the given generator.
func NewAnalyzer(gen Generator) *Analyzer {
	return &Analyzer{gen: gen}
}

// Analyze scores resumeText against targetRole and extracts the skill gap.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, targetRole string) (types.AnalysisPayload, error) {
	var payload types.AnalysisPayload

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		prompt := llm.BuildExtractionPrompt(llm.SkillGapSchema(targetRole), resumeText)
		raw, err := a.gen.GenerateJSON(gctx, prompt, llm.TierStandard)
		if err != nil {
			return fmt.Errorf("skill gap extraction failed: %w", err)
		}
		var out struct {
			SkillsYouHave []string `json:"skills_you_have"`
			SkillsYouNeed []string `json:"skills_you_need"`
		}
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return fmt.Errorf("failed to parse skill gap output: %w", err)
		}
		payload.SkillsYouHave = out.SkillsYouHave
		payload.SkillsYouNeed = out.SkillsYouNeed
		return nil
	})

	g.Go(func() error {
		prompt := llm.BuildExtractionPrompt(llm.ATSScoreSchema(targetRole), resumeText)
		raw, err := a.gen.GenerateJSON(gctx, prompt, llm.TierLite)
		if err != nil {
			return fmt.Errorf("ats scoring failed: %w", err)
		}
		var out struct {
			ATSScore float64 `json:"ats_score"`
		}
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return fmt.Errorf("failed to parse ats score output: %w", err)
		}
		score := int(out.ATSScore)
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		payload.ATSScore = score
		return nil
	})

	if err := g.Wait(); err != nil {
		return types.AnalysisPayload{}, err
	}
	return payload, nil
}
