// Package types provides type definitions for structured data used throughout the career-compass system.
package types

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// WeekPlan is a single week of a learning roadmap. Resource order is
// significant: it is both the display order and the suggested study order.
type WeekPlan struct {
	Topic     string   `json:"topic"`
	Resources []string `json:"resources"`
}

// Roadmap is the canonical in-memory form of a learning roadmap: an ordered
// sequence of weeks, indexed 1..N. The "Week 1".."Week N" string-keyed
// mapping used on the wire and in storage is converted at the ingestion
// boundary via ParseWeekMap and re-emitted via WeekMap; core logic only ever
// sees this ordered form.
type Roadmap []WeekPlan

// IsEmpty reports whether the roadmap has no weeks.
func (r Roadmap) IsEmpty() bool {
	return len(r) == 0
}

// Progress returns the completion percentage for the given completed weeks,
// rounded to the nearest integer. An empty roadmap is always 0%.
func (r Roadmap) Progress(completedWeeks []int) int {
	if len(r) == 0 {
		return 0
	}
	seen := make(map[int]bool, len(completedWeeks))
	count := 0
	for _, w := range completedWeeks {
		if w >= 1 && w <= len(r) && !seen[w] {
			seen[w] = true
			count++
		}
	}
	return int(math.Round(100 * float64(count) / float64(len(r))))
}

// WeekMap converts the roadmap back to its wire form: a mapping keyed
// "Week 1".."Week N" in ascending index order.
func (r Roadmap) WeekMap() map[string]WeekPlan {
	m := make(map[string]WeekPlan, len(r))
	for i, week := range r {
		m[fmt.Sprintf("Week %d", i+1)] = week
	}
	return m
}

// ParseWeekMap converts a string-keyed roadmap mapping into the canonical
// ordered form. Keys must begin with the literal prefix "Week" followed by a
// number; entries are ordered by that number, not by map iteration order.
// Keys without the "Week" prefix are ignored, not treated as errors, so that
// generation backends may include commentary fields without breaking ingestion.
func ParseWeekMap(raw map[string]json.RawMessage) (Roadmap, error) {
	type indexed struct {
		num  int
		plan WeekPlan
	}

	var weeks []indexed
	for key, value := range raw {
		num, ok := parseWeekKey(key)
		if !ok {
			continue
		}

		var plan WeekPlan
		if err := json.Unmarshal(value, &plan); err != nil {
			// Some backends emit a bare topic string instead of an object.
			var topic string
			if err2 := json.Unmarshal(value, &topic); err2 != nil {
				return nil, fmt.Errorf("invalid week entry %q: %w", key, err)
			}
			plan = WeekPlan{Topic: topic}
		}
		weeks = append(weeks, indexed{num: num, plan: plan})
	}

	sort.Slice(weeks, func(i, j int) bool { return weeks[i].num < weeks[j].num })

	result := make(Roadmap, 0, len(weeks))
	for _, w := range weeks {
		result = append(result, w.plan)
	}
	return result, nil
}

// parseWeekKey extracts the week number from a "Week N" key.
// Returns false for keys that are not week entries.
func parseWeekKey(key string) (int, bool) {
	if !strings.HasPrefix(key, "Week") {
		return 0, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(key, "Week"))
	num, err := strconv.Atoi(rest)
	if err != nil || num < 1 {
		return 0, false
	}
	return num, true
}
