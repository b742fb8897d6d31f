// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "SkillGap", "RoadmapMutation")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]object"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Base the output only on the provided text, do not invent details.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Predefined Schemas ---

// SkillGapSchema returns the extraction schema for resume skill-gap analysis.
// Given resume text and a target role it extracts the skills the candidate
// already demonstrates and the skills the role requires but the resume lacks.
func SkillGapSchema(targetRole string) ExtractionSchema {
	return ExtractionSchema{
		Name: "SkillGap",
		Description: fmt.Sprintf(`You are an expert technical recruiter reviewing a resume for the role of %q.
Identify the concrete skills the resume demonstrates and the skills the role requires that the resume does not show.
List skills as short names (e.g., "Python", "Kubernetes", "System Design"), most important first.`, targetRole),
		Fields: []SchemaField{
			{
				Name:        "skills_you_have",
				Type:        "[\"string\"]",
				Description: "Skills the resume demonstrates that are relevant to the role",
				Required:    true,
			},
			{
				Name:        "skills_you_need",
				Type:        "[\"string\"]",
				Description: "Skills the role requires but the resume does not demonstrate",
				Required:    true,
			},
		},
	}
}

// ATSScoreSchema returns the extraction schema for ATS fit scoring.
func ATSScoreSchema(targetRole string) ExtractionSchema {
	return ExtractionSchema{
		Name: "ATSScore",
		Description: fmt.Sprintf(`You are an applicant tracking system evaluating a resume against the role of %q.
Score how well the resume matches the role from 0 to 100, considering keywords, experience level, and relevance.`, targetRole),
		Fields: []SchemaField{
			{
				Name:        "ats_score",
				Type:        "number",
				Description: "Match percentage between 0 and 100",
				Required:    true,
			},
		},
	}
}

// RoadmapSchema returns the extraction schema for learning roadmap generation.
// The output is a week-keyed mapping; week count scales with the number of
// skills to cover.
func RoadmapSchema(goal string, skills []string) ExtractionSchema {
	return ExtractionSchema{
		Name: "Roadmap",
		Description: fmt.Sprintf(`You are a career coach building a weekly learning roadmap toward the goal %q.
Cover these skills in a sensible learning order: %s.
Produce one entry per week keyed "Week 1", "Week 2", and so on, each with a topic and 2-4 free learning resources.`,
			goal, strings.Join(skills, ", ")),
		Fields: []SchemaField{
			{
				Name:        "Week 1",
				Type:        "{\"topic\": \"string\", \"resources\": [\"string\"]}",
				Description: "First week's focus; continue with \"Week 2\", \"Week 3\", ... as needed",
				Required:    true,
			},
		},
	}
}

// RoadmapMutationSchema returns the extraction schema used to detect whether
// an assistant reply carries a roadmap edit. When the reply changes the plan,
// the output holds the complete replacement roadmap, never a partial patch.
func RoadmapMutationSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "RoadmapMutation",
		Description: `You are a change detector for a learning-roadmap assistant.
The input contains a user request, the assistant's reply, and the current roadmap.
Decide whether the reply commits to changing the roadmap (adding or removing topics or resources, reordering weeks, or refocusing the plan).
If it does, output the COMPLETE updated roadmap with every week, not just the changed ones.
If the reply is conversational and changes nothing, set "modified" to false and omit the roadmap.`,
		Fields: []SchemaField{
			{
				Name:        "modified",
				Type:        "boolean",
				Description: "Whether the reply changes the roadmap",
				Required:    true,
			},
			{
				Name:        "goal",
				Type:        "\"string\"",
				Description: "The (possibly updated) roadmap goal",
				Required:    false,
			},
			{
				Name:        "roadmap",
				Type:        "{\"Week 1\": {\"topic\": \"string\", \"resources\": [\"string\"]}}",
				Description: "The full replacement roadmap, only when modified is true",
				Required:    false,
			},
		},
	}
}
