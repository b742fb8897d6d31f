package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/career-compass/internal/analysis"
	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/observability"
	"github.com/jonathan/career-compass/internal/roadmap"
	"github.com/jonathan/career-compass/internal/types"
	"github.com/spf13/cobra"
)

var (
	analyzeFile    string
	analyzeRole    string
	analyzeJSON    bool
	analyzeRoadmap bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a resume file against a target role",
	Long:  `Run the resume analysis locally without the server: score the resume, extract the skill gap, and optionally draft a learning roadmap.`,
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "Path to the resume file (plain text)")
	analyzeCmd.Flags().StringVar(&analyzeRole, "role", "", "Target role to score against")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Emit raw JSON instead of formatted output")
	analyzeCmd.Flags().BoolVar(&analyzeRoadmap, "roadmap", false, "Also draft a learning roadmap from the skill gap")
	_ = analyzeCmd.MarkFlagRequired("file")
	_ = analyzeCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	data, err := os.ReadFile(analyzeFile)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resumeText, err := analysis.PlainTextExtractor{}.Extract(ctx, analyzeFile, data)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	payload, err := analysis.NewAnalyzer(client).Analyze(ctx, resumeText, analyzeRole)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	var weeks types.Roadmap
	if analyzeRoadmap && len(payload.SkillsYouNeed) > 0 {
		weeks = roadmap.NewBuilder(client).Build(ctx, payload.SkillsYouNeed, analyzeRole)
	}

	if analyzeJSON {
		out := map[string]any{
			"target_role":     analyzeRole,
			"ats_score":       payload.ATSScore,
			"skills_you_have": payload.SkillsYouHave,
			"skills_you_need": payload.SkillsYouNeed,
		}
		if !weeks.IsEmpty() {
			out["roadmap"] = weeks.WeekMap()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintAnalysis(analyzeRole, payload)
	printer.PrintRoadmap(analyzeRole, weeks)
	return nil
}
