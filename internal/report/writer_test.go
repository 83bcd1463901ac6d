package report

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"cibrief/internal/model"
)

func testReportConfig() model.ReportConfig {
	return model.DefaultConfig().Report
}

func reportFacts() []model.Fact {
	return []model.Fact{
		{
			ID:         "fact_001",
			Entities:   []string{"Drug-X", "TRIAL-123"},
			EventType:  "trial_update",
			Values:     map[string]float64{"orr": 45.0},
			Date:       "2026-03-15",
			SourceID:   "src_01",
			Quote:      "Enrollment in TRIAL-123 was halted after ORR reached 45.0 percent.",
			Confidence: 0.9,
		},
		{
			ID:         "fact_002",
			Entities:   []string{"Drug-Y"},
			EventType:  "regulatory",
			Date:       "2026-04-02",
			SourceID:   "src_02",
			Quote:      "The agency issued a complete response letter for Drug-Y.",
			Confidence: 0.8,
		},
	}
}

func reportSignals(t *testing.T) []model.Signal {
	t.Helper()
	s1, err := model.NewSignal("sig_001", "fact_001", model.ImpactTimelineSlip, 0.9, "trial_update reported for Drug-X, TRIAL-123 (orr=45.0). This delays the competitor.")
	if err != nil {
		t.Fatalf("build signal: %v", err)
	}
	if err := s1.SetStance(model.StanceHarmful, "high overlap on target makes the competitor's timeline slip directly consequential for our program", 0.6); err != nil {
		t.Fatalf("set stance: %v", err)
	}
	s2, err := model.NewSignal("sig_002", "fact_002", model.ImpactRegulatoryRisk, 0.95, "regulatory reported for Drug-Y. This indicates heightened scrutiny.")
	if err != nil {
		t.Fatalf("build signal: %v", err)
	}
	if err := s2.SetStance(model.StancePotentiallyHelpful, "moderate overlap on disease means the competitor's regulatory risk warrants monitoring", 0.35); err != nil {
		t.Fatalf("set stance: %v", err)
	}
	return []model.Signal{s1, s2}
}

func TestWriter_ComposeSections(t *testing.T) {
	w := NewWriter("NSCLC-1", testReportConfig(), nil)

	signals := reportSignals(t)
	actions, err := w.DeriveActions(signals)
	if err != nil {
		t.Fatalf("derive actions: %v", err)
	}
	md := w.Compose("Drug-X program threats", reportFacts(), signals, actions)

	wantSections := []string{
		"## Executive Summary",
		"## What Happened",
		"## Why It Matters to NSCLC-1",
		"## Recommended Actions",
		"## Evidence Table",
		"## Confidence and Risks",
		"## Sources",
	}
	for _, s := range wantSections {
		if !strings.Contains(md, s) {
			t.Errorf("markdown missing section %q", s)
		}
	}
	if !strings.Contains(md, "**Program:** NSCLC-1") {
		t.Error("header missing program name")
	}
	if !strings.Contains(md, "**Query:** Drug-X program threats") {
		t.Error("header missing query")
	}
}

func TestWriter_NarrativeBulletsAreCited(t *testing.T) {
	w := NewWriter("NSCLC-1", testReportConfig(), nil)

	signals := reportSignals(t)
	md := w.Compose("q", reportFacts(), signals, nil)

	inNarrative := false
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "## ") {
			title := strings.TrimPrefix(line, "## ")
			inNarrative = title == "Executive Summary" || title == "What Happened" ||
				strings.HasPrefix(title, "Why It Matters")
			continue
		}
		if !inNarrative || !strings.HasPrefix(strings.TrimSpace(line), "- ") {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if !strings.HasSuffix(trimmed, "]") || !strings.Contains(trimmed, "[S") {
			t.Errorf("narrative bullet lacks trailing citation: %q", trimmed)
		}
	}
}

func TestWriter_SourceMarkersIndexDistinctSources(t *testing.T) {
	w := NewWriter("NSCLC-1", testReportConfig(), nil)

	facts := reportFacts()
	// Third fact reuses the first source: markers must not mint [S3].
	third := facts[0]
	third.ID = "fact_003"
	third.Quote = "A follow-up readout from TRIAL-123 was delayed."
	facts = append(facts, third)

	md := w.Compose("q", facts, nil, nil)

	if strings.Contains(md, "[S3]") {
		t.Error("duplicate source must reuse its marker, not mint a new one")
	}
	if !strings.Contains(md, "[S1]") || !strings.Contains(md, "[S2]") {
		t.Error("expected markers for both distinct sources")
	}
	if !strings.Contains(md, "1. **src_01**") || !strings.Contains(md, "2. **src_02**") {
		t.Error("sources section should number distinct sources in first-appearance order")
	}
}

func TestWriter_ExecutiveSummaryOrdering(t *testing.T) {
	w := NewWriter("NSCLC-1", testReportConfig(), nil)

	signals := reportSignals(t)
	md := w.Compose("q", reportFacts(), signals, nil)

	// sig_002 scores 0.95 and must lead the summary.
	reg := strings.Index(md, "**Regulatory risk**")
	slip := strings.Index(md, "**Timeline slip**")
	if reg == -1 || slip == -1 {
		t.Fatalf("summary missing impact codes")
	}
	if reg > slip {
		t.Error("higher-scoring signal should lead the executive summary")
	}
}

func TestWriter_EvidenceTableHygiene(t *testing.T) {
	w := NewWriter("NSCLC-1", testReportConfig(), nil)

	fact := reportFacts()[0]
	fact.Values = map[string]float64{
		"orr | bad": 45.0,
		"huge":      1e18,
		"nan":       math.NaN(),
	}

	row := w.tableNumbers(fact)

	if strings.Contains(row, "|") {
		t.Errorf("table cell not sanitized: %q", row)
	}
	if !strings.Contains(row, "orrbad=45") {
		t.Errorf("sanitized key should keep its word characters: %q", row)
	}
	if strings.Contains(row, "1e+18") || strings.Contains(row, "NaN") {
		t.Errorf("out-of-range and non-finite values must be dropped: %q", row)
	}
}

func TestWriter_EvidenceTableLargeValuesStayDecimal(t *testing.T) {
	w := NewWriter("NSCLC-1", testReportConfig(), nil)

	fact := reportFacts()[0]
	fact.Values = map[string]float64{
		"enrolled": 25000,
		"fraction": 0.00005,
	}

	row := w.tableNumbers(fact)

	if !strings.Contains(row, "enrolled=25000.0") {
		t.Errorf("large value should render as a plain decimal: %q", row)
	}
	if !strings.Contains(row, "fraction=0.00005") {
		t.Errorf("small value should render as a plain decimal: %q", row)
	}
	if strings.Contains(row, "e+") || strings.Contains(row, "e-") {
		t.Errorf("table values must never use exponent notation: %q", row)
	}
}

func TestTruncateRunes(t *testing.T) {
	long := strings.Repeat("≥", 45)

	got := truncateRunes(long, 40)

	if !utf8.ValidString(got) {
		t.Errorf("truncation split a multi-byte rune: %q", got)
	}
	if utf8.RuneCountInString(got) != 43 {
		t.Errorf("expected 40 runes plus ellipsis, got %d", utf8.RuneCountInString(got))
	}
	if short := truncateRunes("trial_update", 40); short != "trial_update" {
		t.Errorf("short input must pass through unchanged, got %q", short)
	}
}

func TestWriter_EmptyInputs(t *testing.T) {
	w := NewWriter("", testReportConfig(), nil)

	md := w.Compose("q", nil, nil, nil)

	if !strings.Contains(md, "No classified competitive signals") {
		t.Error("empty summary placeholder missing")
	}
	if !strings.Contains(md, "No factual events were supplied") {
		t.Error("empty what-happened placeholder missing")
	}
	if !strings.Contains(md, "No evidence available.") {
		t.Error("empty evidence placeholder missing")
	}
	if !strings.Contains(md, "No sources cited.") {
		t.Error("empty sources placeholder missing")
	}
	if !strings.Contains(md, "Why It Matters to Our Program") {
		t.Error("empty program name should fall back to Our Program")
	}
}

func TestTopSignals_StableOrderWithoutMutation(t *testing.T) {
	signals := reportSignals(t)
	before := signals[0].ID

	top := topSignals(signals, 1)
	if len(top) != 1 || top[0].ID != "sig_002" {
		t.Errorf("expected sig_002 on top, got %v", top)
	}
	if signals[0].ID != before {
		t.Error("topSignals must not reorder its input")
	}
}

func TestFirstClause(t *testing.T) {
	in := "trial_update reported for Drug-X (orr=45.0). This delays the competitor. More text."
	want := "trial_update reported for Drug-X (orr=45.0)"
	if got := firstClause(in); got != want {
		t.Errorf("firstClause = %q, want %q", got, want)
	}
	if got := firstClause("no terminal period"); got != "no terminal period" {
		t.Errorf("firstClause = %q", got)
	}
}
