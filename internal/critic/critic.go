package critic

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"cibrief/internal/model"
)

// Gate identifies one independent validation rule.
type Gate string

const (
	GateCitation Gate = "citation_coverage"
	GateNumeric  Gate = "numeric_traceability"
	GateTime     Gate = "time_reference"
	GateActions  Gate = "action_completeness"
)

// Violation pinpoints one gate failure.
type Violation struct {
	Gate     Gate   `json:"gate"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

// Verdict is the aggregate outcome of all gates. Any violation blocks
// emission of the report.
type Verdict struct {
	Passed     bool        `json:"passed"`
	Violations []Violation `json:"violations"`
}

// Critic runs the four validation gates over a drafted report. Gates are
// independent and all violations are collected in a single pass; nothing
// fails fast.
type Critic struct {
	cfg        model.CriticConfig
	minActions int
	log        *zap.Logger
}

// NewCritic creates a critic. minActions is the gate-4 floor.
func NewCritic(cfg model.CriticConfig, minActions int, log *zap.Logger) *Critic {
	if log == nil {
		log = zap.NewNop()
	}
	return &Critic{cfg: cfg, minActions: minActions, log: log}
}

// Review runs every gate and aggregates the violations.
func (c *Critic) Review(rep *model.CIReport) Verdict {
	var violations []Violation

	cites, _, _ := c.checkCitations(rep)
	violations = append(violations, cites...)

	nums, _, _ := c.checkNumbers(rep)
	violations = append(violations, nums...)

	violations = append(violations, c.checkTimeReferences(rep)...)
	violations = append(violations, c.checkActions(rep.Actions)...)

	passed := len(violations) == 0
	if passed {
		c.log.Info("all gates passed", zap.String("report_id", rep.ID))
	} else {
		c.log.Warn("gate violations found",
			zap.String("report_id", rep.ID),
			zap.Int("violations", len(violations)))
	}
	return Verdict{Passed: passed, Violations: violations}
}

// narrativeSections are the claim-bearing sections gates 1-3 examine.
// Structured sections (actions, aggregates, bibliography) carry
// writer-derived metrics rather than sourced claims and are covered by
// gate 4 and the trace metrics instead.
func narrativeSections(rep *model.CIReport) map[string]string {
	out := make(map[string]string)
	for title, body := range sections(rep.Markdown) {
		if title == "Executive Summary" || title == "What Happened" || strings.HasPrefix(title, "Why It Matters") {
			out[title] = body
		}
	}
	return out
}

// sections splits a markdown document on its "## " headings.
func sections(md string) map[string]string {
	out := make(map[string]string)
	var title string
	var body []string
	flush := func() {
		if title != "" {
			out[title] = strings.Join(body, "\n")
		}
		body = nil
	}
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "## ") {
			flush()
			title = strings.TrimPrefix(line, "## ")
			continue
		}
		body = append(body, line)
	}
	flush()
	return out
}

// Gate 1: every narrative sentence must end with an [S#] marker that
// references an existing Sources entry. Returns violations plus the
// examined and cited sentence counts for the trace metrics.
func (c *Critic) checkCitations(rep *model.CIReport) ([]Violation, int, int) {
	sourceCount := distinctSources(rep.Facts)

	var violations []Violation
	examined, cited := 0, 0

	for title, body := range narrativeSections(rep) {
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			if skipLine(line) {
				continue
			}
			for _, sentence := range splitSentences(line, c.cfg.MaxSentenceSplits) {
				sentence = strings.TrimSpace(strings.TrimLeft(sentence, "-*1234567890. "))
				if len(sentence) < 10 {
					continue
				}
				examined++
				m := trailingMarkerRe.FindStringSubmatch(sentence)
				if m == nil {
					violations = append(violations, Violation{
						Gate:     GateCitation,
						Location: title,
						Message:  fmt.Sprintf("sentence lacks a trailing citation marker: %q", snippet(sentence)),
					})
					continue
				}
				n, _ := strconv.Atoi(m[1])
				if n < 1 || n > sourceCount {
					violations = append(violations, Violation{
						Gate:     GateCitation,
						Location: title,
						Message:  fmt.Sprintf("citation [S%d] has no matching Sources entry", n),
					})
					continue
				}
				cited++
			}
		}
	}
	return violations, examined, cited
}

var (
	trailingMarkerRe = regexp.MustCompile(`\[S(\d+)\]$`)
	isoDateRe        = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	markerRe         = regexp.MustCompile(`\[S\d+\]`)
	numberRe         = regexp.MustCompile(`(?:^|[^0-9A-Za-z_.])(\d+(?:\.\d+)?)`)
	quoteNumRe       = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Gate 2: every numeric token in narrative or evidence-table text must
// trace to some fact's verbatim quote, by exact string or tolerant
// numeric-format match. ISO dates, four-digit years, and citation markers
// are not claims and are skipped. Returns violations plus examined and
// traced token counts.
func (c *Critic) checkNumbers(rep *model.CIReport) ([]Violation, int, int) {
	quoteStrings := make(map[string]bool)
	var quoteValues []float64
	for _, f := range rep.Facts {
		for _, tok := range quoteNumRe.FindAllString(f.Quote, -1) {
			quoteStrings[tok] = true
			if v, err := strconv.ParseFloat(tok, 64); err == nil {
				quoteValues = append(quoteValues, v)
			}
		}
	}

	scope := narrativeSections(rep)
	if body, ok := sections(rep.Markdown)["Evidence Table"]; ok {
		scope["Evidence Table"] = body
	}

	var violations []Violation
	examined, traced := 0, 0

	for title, body := range scope {
		text := isoDateRe.ReplaceAllString(body, " ")
		text = markerRe.ReplaceAllString(text, " ")
		for _, m := range numberRe.FindAllStringSubmatch(text, -1) {
			tok := m[1]
			if len(tok) == 4 && !strings.Contains(tok, ".") {
				continue // year
			}
			examined++
			if quoteStrings[tok] || matchesValue(tok, quoteValues) {
				traced++
				continue
			}
			violations = append(violations, Violation{
				Gate:     GateNumeric,
				Location: title,
				Message:  fmt.Sprintf("number %q does not appear in any fact quote", tok),
			})
		}
	}
	return violations, examined, traced
}

func matchesValue(tok string, values []float64) bool {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return false
	}
	for _, q := range values {
		if math.Abs(q-v) <= 1e-9*math.Max(1, math.Abs(q)) {
			return true
		}
	}
	return false
}

// Gate 3: narrative text must not lean on vague time references; temporal
// claims anchor to explicit dates.
func (c *Critic) checkTimeReferences(rep *model.CIReport) []Violation {
	var violations []Violation
	for title, body := range narrativeSections(rep) {
		for _, line := range strings.Split(body, "\n") {
			lower := strings.ToLower(line)
			for _, phrase := range c.cfg.VagueTimePhrases {
				if containsWord(lower, phrase) {
					violations = append(violations, Violation{
						Gate:     GateTime,
						Location: title,
						Message:  fmt.Sprintf("vague time reference %q in %q", phrase, snippet(strings.TrimSpace(line))),
					})
				}
			}
		}
	}
	return violations
}

// containsWord matches phrase on word boundaries so "soon" does not fire
// inside "monsoon".
func containsWord(text, phrase string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		before := i == 0 || !isWordChar(text[i-1])
		end := i + len(phrase)
		after := end == len(text) || !isWordChar(text[end])
		if before && after {
			return true
		}
		start = i + 1
	}
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Gate 4: at least the configured minimum of actions, each with a real
// owner and an enumerated horizon.
func (c *Critic) checkActions(actions []model.Action) []Violation {
	var violations []Violation
	if len(actions) < c.minActions {
		violations = append(violations, Violation{
			Gate:     GateActions,
			Location: "Recommended Actions",
			Message:  fmt.Sprintf("only %d actions present, need at least %d", len(actions), c.minActions),
		})
	}
	for _, a := range actions {
		switch strings.ToLower(strings.TrimSpace(a.Owner)) {
		case "", "tbd", "unknown":
			violations = append(violations, Violation{
				Gate:     GateActions,
				Location: "Recommended Actions",
				Message:  fmt.Sprintf("action %s has no owner", a.ID),
			})
		}
		if !a.Horizon.Valid() {
			violations = append(violations, Violation{
				Gate:     GateActions,
				Location: "Recommended Actions",
				Message:  fmt.Sprintf("action %s has horizon %q outside the enumerated set", a.ID, a.Horizon),
			})
		}
	}
	return violations
}

// actionComplete reports whether a single action would clear gate 4 on
// its own merits.
func actionComplete(a model.Action) bool {
	switch strings.ToLower(strings.TrimSpace(a.Owner)) {
	case "", "tbd", "unknown":
		return false
	}
	return a.Horizon.Valid()
}

// splitSentences segments a line at ., !, ? followed by whitespace or end
// of line. The number of segments per line is capped: content beyond the
// cap is not validated, a documented cost bound rather than silent
// truncation of the report itself.
func splitSentences(line string, max int) []string {
	var out []string
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '.', '!', '?':
			if i+1 == len(line) || line[i+1] == ' ' || line[i+1] == '\t' {
				out = append(out, line[start:i+1])
				start = i + 1
				if len(out) >= max {
					return out
				}
			}
		}
	}
	if start < len(line) {
		out = append(out, line[start:])
	}
	return out
}

func skipLine(line string) bool {
	return line == "" ||
		strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "|") ||
		strings.HasPrefix(line, ">") ||
		strings.HasPrefix(line, "---") ||
		strings.HasPrefix(line, "**")
}

func distinctSources(facts []model.Fact) int {
	seen := make(map[string]bool)
	for _, f := range facts {
		seen[f.SourceID] = true
	}
	return len(seen)
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) > 60 {
		return string(r[:60]) + "..."
	}
	return s
}
