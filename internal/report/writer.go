package report

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cibrief/internal/detect"
	"cibrief/internal/model"
)

// Writer assembles the fixed seven-section report from facts, signals,
// and actions. It is a pure read → assemble → emit transformation: inputs
// are never mutated, and the draft is emitted even when it will fail the
// critic, so every deficiency surfaces in one validation pass.
type Writer struct {
	program string
	cfg     model.ReportConfig
	log     *zap.Logger
}

// NewWriter creates a writer for one program.
func NewWriter(programName string, cfg model.ReportConfig, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	if programName == "" {
		programName = "Our Program"
	}
	return &Writer{program: programName, cfg: cfg, log: log}
}

// Draft assembles the report aggregate. Trace metrics are filled in later
// by the critic.
func (w *Writer) Draft(query string, facts []model.Fact, signals []model.Signal, actions []model.Action) *model.CIReport {
	return &model.CIReport{
		ID:          uuid.NewString(),
		Query:       query,
		ProgramName: w.program,
		Facts:       append([]model.Fact(nil), facts...),
		Signals:     append([]model.Signal(nil), signals...),
		Actions:     append([]model.Action(nil), actions...),
		Markdown:    w.Compose(query, facts, signals, actions),
		GeneratedAt: time.Now().UTC(),
	}
}

// Compose renders the seven-section markdown narrative.
func (w *Writer) Compose(query string, facts []model.Fact, signals []model.Signal, actions []model.Action) string {
	src := sourceIndex(facts)
	factSource := make(map[string]int, len(facts))
	for _, f := range facts {
		factSource[f.ID] = src.index[f.SourceID]
	}

	sections := []string{
		w.header(query),
		w.executiveSummary(signals, factSource),
		w.whatHappened(facts, src),
		w.whyItMatters(signals, factSource),
		w.recommendedActions(actions),
		w.evidenceTable(facts),
		w.confidenceAndRisks(facts, signals),
		w.sources(facts, src),
	}
	return strings.Join(sections, "\n\n")
}

type sourceOrder struct {
	ids   []string
	index map[string]int // 1-based
}

func sourceIndex(facts []model.Fact) sourceOrder {
	s := sourceOrder{index: make(map[string]int)}
	for _, f := range facts {
		if _, seen := s.index[f.SourceID]; !seen {
			s.ids = append(s.ids, f.SourceID)
			s.index[f.SourceID] = len(s.ids)
		}
	}
	return s
}

func (w *Writer) header(query string) string {
	return fmt.Sprintf("# Competitive Intelligence Report\n\n**Program:** %s\n**Query:** %s\n\n---", w.program, query)
}

// executiveSummary renders up to the configured number of bullets, one
// per top-scoring signal. Every bullet is a single sentence ending with
// its citation marker.
func (w *Writer) executiveSummary(signals []model.Signal, factSource map[string]int) string {
	lines := []string{"## Executive Summary", ""}

	top := topSignals(signals, w.cfg.MaxSummaryBullets)
	if len(top) == 0 {
		lines = append(lines, "- No classified competitive signals in the supplied facts")
		return strings.Join(lines, "\n")
	}
	for _, s := range top {
		stance := string(s.Stance)
		if stance == "" {
			stance = string(model.StanceNeutral)
		}
		lines = append(lines, fmt.Sprintf("- **%s**: %s, stance %s [S%d]",
			s.ImpactCode, firstClause(s.Rationale), stance, factSource[s.FactID]))
	}
	return strings.Join(lines, "\n")
}

// whatHappened renders one cited bullet per fact, anchored to the fact's
// absolute date.
func (w *Writer) whatHappened(facts []model.Fact, src sourceOrder) string {
	lines := []string{"## What Happened", ""}

	if len(facts) == 0 {
		lines = append(lines, "- No factual events were supplied")
		return strings.Join(lines, "\n")
	}
	n := len(facts)
	if n > w.cfg.MaxWhatHappened {
		n = w.cfg.MaxWhatHappened
	}
	for _, f := range facts[:n] {
		entities := strings.Join(firstN(f.Entities, 2), ", ")
		vals := ""
		if s := detect.FormatValues(f.Values, w.cfg.MaxValuesPerFact); s != "" {
			vals = " (" + s + ")"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s%s on %s [S%d]",
			entities, f.EventType, vals, f.Date, src.index[f.SourceID]))
	}
	return strings.Join(lines, "\n")
}

// whyItMatters groups signals by stance into threats, opportunities, and
// neutral developments.
func (w *Writer) whyItMatters(signals []model.Signal, factSource map[string]int) string {
	lines := []string{fmt.Sprintf("## Why It Matters to %s", w.program)}

	var threats, opportunities, neutral []model.Signal
	for _, s := range signals {
		switch s.Stance {
		case model.StanceHarmful, model.StancePotentiallyHarmful:
			threats = append(threats, s)
		case model.StanceHelpful, model.StancePotentiallyHelpful:
			opportunities = append(opportunities, s)
		default:
			neutral = append(neutral, s)
		}
	}

	group := func(title string, group []model.Signal) {
		if len(group) == 0 {
			return
		}
		lines = append(lines, "", "### "+title, "")
		for _, s := range group {
			lines = append(lines, fmt.Sprintf("- **%s** (%s): %s [S%d]",
				s.ImpactCode, s.Stance, s.StanceRationale, factSource[s.FactID]))
		}
	}
	group("Threats", threats)
	group("Opportunities", opportunities)
	group("Neutral Developments", neutral)

	if len(signals) == 0 {
		lines = append(lines, "", "- No strategic implications identified for our program")
	}
	return strings.Join(lines, "\n")
}

func (w *Writer) recommendedActions(actions []model.Action) string {
	lines := []string{"## Recommended Actions", ""}

	if len(actions) == 0 {
		lines = append(lines, "No actions derivable from the supplied signals.")
		return strings.Join(lines, "\n")
	}
	sorted := append([]model.Action(nil), actions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Confidence > sorted[j].Confidence })
	for i, a := range sorted {
		lines = append(lines, fmt.Sprintf("%d. %s — %s — %s — %d%%",
			i+1, a.Description, a.Owner, a.Horizon, int(a.Confidence*100)))
	}
	return strings.Join(lines, "\n")
}

var keyCharset = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// evidenceTable renders one row per fact. Numeric values are rejected when
// non-finite or implausibly large, formatted to four significant digits,
// and keys are sanitized so attacker-controlled field names cannot inject
// table or markup syntax.
func (w *Writer) evidenceTable(facts []model.Fact) string {
	lines := []string{"## Evidence Table", ""}

	if len(facts) == 0 {
		lines = append(lines, "No evidence available.")
		return strings.Join(lines, "\n")
	}
	lines = append(lines,
		"| ID | Claim | Key Numbers | Date | Source |",
		"|----|-------|-------------|------|--------|")

	for _, f := range facts {
		claim := truncateRunes(f.EventType, 40)
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s | %s |",
			f.ID, claim, w.tableNumbers(f), f.Date, f.SourceID))
	}
	return strings.Join(lines, "\n")
}

func (w *Writer) tableNumbers(f model.Fact) string {
	keys := make([]string, 0, len(f.Values))
	for k := range f.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var cells []string
	for _, k := range keys {
		if len(cells) >= w.cfg.MaxTableNumbers {
			break
		}
		v := f.Values[k]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			w.log.Warn("skipping non-finite value", zap.String("fact_id", f.ID), zap.String("key", k))
			continue
		}
		if math.Abs(v) > w.cfg.MaxNumericMagnitude {
			w.log.Warn("skipping out-of-range value", zap.String("fact_id", f.ID), zap.String("key", k))
			continue
		}
		cells = append(cells, fmt.Sprintf("%s=%s", keyCharset.ReplaceAllString(k, ""), detect.DecimalString(v)))
	}
	if len(cells) == 0 {
		return "N/A"
	}
	return strings.Join(cells, ", ")
}

func (w *Writer) confidenceAndRisks(facts []model.Fact, signals []model.Signal) string {
	lines := []string{"## Confidence and Risks", ""}

	if len(facts) > 0 {
		sum := 0.0
		for _, f := range facts {
			sum += f.Confidence
		}
		lines = append(lines, fmt.Sprintf("- **Data confidence**: %d%% mean confidence across %d facts",
			int(sum/float64(len(facts))*100), len(facts)))
	}
	high := 0
	for _, s := range signals {
		if s.Score >= 0.7 {
			high++
		}
	}
	lines = append(lines, fmt.Sprintf("- **Signal quality**: %d/%d signals score at or above 0.7", high, len(signals)))
	lines = append(lines, "- **Limitations**: analysis reflects only the supplied sources and may omit unreported developments")
	return strings.Join(lines, "\n")
}

func (w *Writer) sources(facts []model.Fact, src sourceOrder) string {
	lines := []string{"## Sources", ""}

	if len(src.ids) == 0 {
		lines = append(lines, "No sources cited.")
		return strings.Join(lines, "\n")
	}
	snippets := make(map[string]string)
	dates := make(map[string]string)
	for _, f := range facts {
		if _, ok := snippets[f.SourceID]; !ok {
			q := f.Quote
			if len(q) > 100 {
				q = q[:100] + "..."
			}
			snippets[f.SourceID] = q
			dates[f.SourceID] = f.Date
		}
	}
	for i, id := range src.ids {
		lines = append(lines, fmt.Sprintf("%d. **%s** (%s)", i+1, id, dates[id]))
		lines = append(lines, fmt.Sprintf("   > %q", snippets[id]))
	}
	return strings.Join(lines, "\n")
}

// topSignals orders signals by score descending, then id ascending, and
// truncates to n. The input slice is not reordered.
func topSignals(signals []model.Signal, n int) []model.Signal {
	sorted := append([]model.Signal(nil), signals...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// firstClause returns the rationale's leading what-happened clause without
// its terminal period. Decimal points inside values are not boundaries.
func firstClause(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i]
	}
	return strings.TrimSuffix(s, ".")
}

func firstN(ss []string, n int) []string {
	if len(ss) > n {
		return ss[:n]
	}
	return ss
}

// truncateRunes shortens s to max runes, never splitting a multi-byte
// character.
func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
