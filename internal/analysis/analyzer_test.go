package analysis

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/career-compass/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGen answers structured-extraction calls by prompt content: the skill
// gap and ATS scoring prompts carry distinct field names.
type fakeGen struct {
	skillGapJSON string
	atsJSON      string
	err          error
}

func (g *fakeGen) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if strings.Contains(prompt, "ats_score") {
		return g.atsJSON, nil
	}
	return g.skillGapJSON, nil
}

func TestAnalyze(t *testing.T) {
	gen := &fakeGen{
		skillGapJSON: `{"skills_you_have": ["Go", "SQL"], "skills_you_need": ["Kubernetes"]}`,
		atsJSON:      `{"ats_score": 72}`,
	}
	analyzer := NewAnalyzer(gen)

	payload, err := analyzer.Analyze(context.Background(), "resume text", "Backend Engineer")
	require.NoError(t, err)

	assert.Equal(t, 72, payload.ATSScore)
	assert.Equal(t, []string{"Go", "SQL"}, payload.SkillsYouHave)
	assert.Equal(t, []string{"Kubernetes"}, payload.SkillsYouNeed)
}

func TestAnalyze_ClampsScore(t *testing.T) {
	gen := &fakeGen{
		skillGapJSON: `{"skills_you_have": [], "skills_you_need": []}`,
		atsJSON:      `{"ats_score": 130.5}`,
	}

	payload, err := NewAnalyzer(gen).Analyze(context.Background(), "text", "role")
	require.NoError(t, err)
	assert.Equal(t, 100, payload.ATSScore)

	gen.atsJSON = `{"ats_score": -3}`
	payload, err = NewAnalyzer(gen).Analyze(context.Background(), "text", "role")
	require.NoError(t, err)
	assert.Equal(t, 0, payload.ATSScore)
}

func TestAnalyze_BackendFailure(t *testing.T) {
	gen := &fakeGen{err: fmt.Errorf("backend down")}

	_, err := NewAnalyzer(gen).Analyze(context.Background(), "text", "role")
	assert.Error(t, err)
}

func TestAnalyze_MalformedOutput(t *testing.T) {
	gen := &fakeGen{
		skillGapJSON: `not json`,
		atsJSON:      `{"ats_score": 50}`,
	}

	_, err := NewAnalyzer(gen).Analyze(context.Background(), "text", "role")
	assert.Error(t, err)
}
