package types

// AnalysisPayload holds the result of analyzing a resume against a target
// role: a 0-100 fit score plus the skills the candidate already has and the
// skills the target role still requires. Skill order is preserved from the
// analysis backend.
type AnalysisPayload struct {
	ATSScore      int      `json:"ats_score"`
	SkillsYouHave []string `json:"skills_you_have"`
	SkillsYouNeed []string `json:"skills_you_need"`
}

// ContextSnapshot is the hydrated summary of a user's latest resume analysis,
// attached to their session and used to ground conversational turns.
type ContextSnapshot struct {
	ResumeText string
	TargetRole string
	SkillsHave []string
	SkillsNeed []string
}

// IsEmpty reports whether the snapshot carries any usable context.
func (s ContextSnapshot) IsEmpty() bool {
	return s.ResumeText == "" && s.TargetRole == "" &&
		len(s.SkillsHave) == 0 && len(s.SkillsNeed) == 0
}
