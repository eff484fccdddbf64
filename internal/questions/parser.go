package questions

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"interview-backend/internal/shared/telemetry"
)

const (
	sectionTechnical  = "technical"
	sectionBehavioral = "behavioral"
	sectionFollowup   = "followup"
)

var (
	headerPattern = regexp.MustCompile(`(?im)^[ \t]*(technical questions|behavioral questions|red flag[ \t]*/[ \t]*follow(?:-| )?up questions)[ \t]*[:：][ \t]*$`)
	bulletPattern = regexp.MustCompile(`^[ \t]*[-•][ \t]+(.*)$`)
	slashSpacing  = regexp.MustCompile(`\s*/\s*`)
	spaceRuns     = regexp.MustCompile(`\s+`)

	insightMarker   = regexp.MustCompile(`(?im)^[ \t]*===[ \t]*insight summary[ \t]*===[ \t]*$`)
	skillGapsMarker = regexp.MustCompile(`(?im)^[ \t]*===[ \t]*skill gaps[ \t]*===[ \t]*$`)
)

// labels maps a normalized header label to its output section.
// "follow up" and "followup" are scanned as headers but are not mapped.
var labels = map[string]string{
	"technical questions":            sectionTechnical,
	"behavioral questions":           sectionBehavioral,
	"red flag / follow-up questions": sectionFollowup,
}

// Parse recovers the three question lists from raw model output.
// It never fails: output without recognized headers yields empty lists.
func Parse(raw string) Result {
	return parseSections(normalize(raw))
}

// ParsePro is Parse plus the optional insight summary and skill gap blocks.
func ParsePro(raw string) Result {
	text := normalize(raw)
	rest, insight, gaps := extractInsights(text)
	res := parseSections(rest)
	res.InsightSummary = insight
	res.SkillGaps = gaps
	return res
}

func normalize(raw string) string {
	text := strings.ReplaceAll(raw, "```", "")
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return text
}

func parseSections(text string) Result {
	var res Result
	matches := headerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		telemetry.Warn("questions.no_headers", map[string]any{"preview": telemetry.Truncate(text, 120)})
		return res
	}

	for i, m := range matches {
		label := normalizeLabel(text[m[2]:m[3]])
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := text[m[1]:bodyEnd]

		section, ok := labels[label]
		if !ok {
			telemetry.Warn("questions.unknown_header", map[string]any{"header": label})
			continue
		}
		items := bullets(body)
		switch section {
		case sectionTechnical:
			res.Technical = append(res.Technical, items...)
		case sectionBehavioral:
			res.Behavioral = append(res.Behavioral, items...)
		case sectionFollowup:
			res.Followup = append(res.Followup, items...)
		}
	}
	return res
}

func normalizeLabel(header string) string {
	label := strings.ToLower(strings.TrimSpace(header))
	label = slashSpacing.ReplaceAllString(label, " / ")
	return spaceRuns.ReplaceAllString(label, " ")
}

func bullets(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		m := bulletPattern.FindStringSubmatch(strings.TrimRight(line, " \t"))
		if m == nil {
			continue
		}
		if q := strings.TrimSpace(m[1]); q != "" {
			out = append(out, q)
		}
	}
	return out
}

type marker struct {
	start, end int
	insight    bool
}

// extractInsights cuts the sentinel blocks out of text and returns what remains.
// A block ends at the next marker or the next section header, so question
// sections on either side of it survive.
func extractInsights(text string) (string, *string, *string) {
	var marks []marker
	for _, m := range insightMarker.FindAllStringIndex(text, -1) {
		marks = append(marks, marker{start: m[0], end: m[1], insight: true})
	}
	for _, m := range skillGapsMarker.FindAllStringIndex(text, -1) {
		marks = append(marks, marker{start: m[0], end: m[1]})
	}
	if len(marks) == 0 {
		return text, nil, nil
	}
	slices.SortFunc(marks, func(a, b marker) int { return cmp.Compare(a.start, b.start) })
	headers := headerPattern.FindAllStringIndex(text, -1)

	var (
		insight, gaps *string
		rest          strings.Builder
		cursor        int
	)
	for i, mk := range marks {
		blockEnd := len(text)
		if i+1 < len(marks) {
			blockEnd = marks[i+1].start
		}
		for _, h := range headers {
			if h[0] >= mk.end && h[0] < blockEnd {
				blockEnd = h[0]
				break
			}
		}
		value := optional(text[mk.end:blockEnd])
		// First occurrence of each marker wins.
		if mk.insight && insight == nil {
			insight = value
		}
		if !mk.insight && gaps == nil {
			gaps = value
		}
		rest.WriteString(text[cursor:mk.start])
		cursor = blockEnd
	}
	rest.WriteString(text[cursor:])
	return rest.String(), insight, gaps
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
