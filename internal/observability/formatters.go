// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/career-compass/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintAnalysis outputs a human-readable summary of a resume analysis.
func (p *Printer) PrintAnalysis(targetRole string, payload types.AnalysisPayload) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Target role: %s\n", targetRole))
	sb.WriteString(fmt.Sprintf("ATS score:   %d/100\n", payload.ATSScore))
	sb.WriteString("\n")
	sb.WriteString(formatSkillList("Skills you have", payload.SkillsYouHave))
	sb.WriteString(formatSkillList("Skills you need", payload.SkillsYouNeed))

	p.printBox("Resume Analysis", strings.TrimRight(sb.String(), "\n"))
}

// PrintRoadmap outputs a human-readable summary of a learning roadmap.
func (p *Printer) PrintRoadmap(goal string, weeks types.Roadmap) {
	if weeks.IsEmpty() {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Goal: %s\n\n", goal))
	for i, week := range weeks {
		sb.WriteString(fmt.Sprintf("Week %d: %s\n", i+1, week.Topic))
		for _, res := range week.Resources {
			sb.WriteString(fmt.Sprintf("  - %s\n", res))
		}
	}

	p.printBox(fmt.Sprintf("Learning Roadmap (%d weeks)", len(weeks)), strings.TrimRight(sb.String(), "\n"))
}

// formatSkillList renders a capped skill list with an overflow marker.
func formatSkillList(title string, skills []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s (%d):\n", title, len(skills)))
	for i, skill := range skills {
		if i == maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(skills)-maxItemsToShow))
			break
		}
		sb.WriteString(fmt.Sprintf("  - %s\n", skill))
	}
	return sb.String()
}
