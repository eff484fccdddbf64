package questions

// Result is the structured form of a model response.
type Result struct {
	Technical      []string `json:"technical"`
	Behavioral     []string `json:"behavioral"`
	Followup       []string `json:"followup"`
	InsightSummary *string  `json:"insight_summary,omitempty"`
	SkillGaps      *string  `json:"skill_gaps,omitempty"`
}

// Empty reports whether no questions were recovered.
func (r Result) Empty() bool {
	return len(r.Technical) == 0 && len(r.Behavioral) == 0 && len(r.Followup) == 0
}

// Total returns the number of questions across all sections.
func (r Result) Total() int {
	return len(r.Technical) + len(r.Behavioral) + len(r.Followup)
}

// WithoutInsights returns a copy with the paid-only fields cleared.
func (r Result) WithoutInsights() Result {
	r.InsightSummary = nil
	r.SkillGaps = nil
	return r
}

// Normalized returns a copy whose nil lists are replaced with empty ones.
func (r Result) Normalized() Result {
	if r.Technical == nil {
		r.Technical = []string{}
	}
	if r.Behavioral == nil {
		r.Behavioral = []string{}
	}
	if r.Followup == nil {
		r.Followup = []string{}
	}
	return r
}
