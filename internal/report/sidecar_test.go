package report

import (
	"strings"
	"testing"

	"cibrief/internal/model"
)

func TestSidecar_RoundTrip(t *testing.T) {
	w := NewWriter("NSCLC-1", testReportConfig(), nil)

	signals := reportSignals(t)
	actions, err := w.DeriveActions(signals)
	if err != nil {
		t.Fatalf("derive actions: %v", err)
	}
	rep := w.Draft("Drug-X program threats", reportFacts(), signals, actions)

	data, err := Sidecar(rep)
	if err != nil {
		t.Fatalf("sidecar: %v", err)
	}
	if strings.Contains(string(data), "## Executive Summary") {
		t.Error("markdown narrative must not leak into the sidecar")
	}

	back, err := ParseSidecar(data)
	if err != nil {
		t.Fatalf("parse sidecar: %v", err)
	}
	if back.ID != rep.ID || back.Query != rep.Query {
		t.Errorf("identity fields lost in round trip: %+v", back)
	}
	if len(back.Facts) != len(rep.Facts) || len(back.Signals) != len(rep.Signals) || len(back.Actions) != len(rep.Actions) {
		t.Errorf("collections lost in round trip")
	}
	if back.Facts[0].Values["orr"] != 45.0 {
		t.Errorf("numeric values lost in round trip: %v", back.Facts[0].Values)
	}
	if back.Signals[0].Stance != rep.Signals[0].Stance {
		t.Errorf("stance lost in round trip")
	}
}

func TestParseSidecar_RevalidatesFacts(t *testing.T) {
	// A sidecar whose fact has a malformed date must be rejected on read,
	// not trusted because it was once written by us.
	data := []byte(`{
		"id": "r1", "query": "q", "program_name": "p",
		"facts": [{
			"id": "fact_001", "entities": ["Drug-X"], "event_type": "trial_update",
			"date": "not-a-date", "source_id": "src_01", "quote": "q", "confidence": 0.9
		}],
		"signals": [], "actions": [],
		"trace": {"total_facts": 1, "total_signals": 0, "total_actions": 0,
			"citation_coverage": 0, "numeric_traceability": 0, "action_completeness": 0},
		"generated_at": "2026-03-15T00:00:00Z"
	}`)

	if _, err := ParseSidecar(data); err == nil {
		t.Error("expected error for a sidecar with an invalid fact")
	}
}

func TestParseSidecar_Garbage(t *testing.T) {
	if _, err := ParseSidecar([]byte("not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestDeriveActions_OnePerImpactCode(t *testing.T) {
	w := NewWriter("NSCLC-1", testReportConfig(), nil)

	s1, _ := model.NewSignal("sig_001", "fact_001", model.ImpactTimelineSlip, 0.9, "first halt")
	s2, _ := model.NewSignal("sig_002", "fact_002", model.ImpactTimelineSlip, 0.8, "second halt")
	s3, _ := model.NewSignal("sig_003", "fact_001", model.ImpactSafetyRisk, 0.95, "safety signal")

	actions, err := w.DeriveActions([]model.Signal{s1, s2, s3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Two distinct codes, so two actions; the duplicate code derives nothing.
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}
	if actions[0].ID != "act_001" || actions[1].ID != "act_002" {
		t.Errorf("action ids not sequential: %s, %s", actions[0].ID, actions[1].ID)
	}
	for _, a := range actions {
		if len(a.SourceSignalIDs) != 1 {
			t.Errorf("action %s should cite its source signal", a.ID)
		}
	}
}

func TestDeriveActions_HarmfulGetsPriority(t *testing.T) {
	w := NewWriter("NSCLC-1", testReportConfig(), nil)

	sig, _ := model.NewSignal("sig_001", "fact_001", model.ImpactSafetyRisk, 0.95, "safety signal")
	if err := sig.SetStance(model.StanceHarmful, "high overlap", 0.6); err != nil {
		t.Fatalf("set stance: %v", err)
	}

	actions, err := w.DeriveActions([]model.Signal{sig})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(actions))
	}
	if !strings.HasSuffix(actions[0].Description, "(high priority)") {
		t.Errorf("harmful signal should derive a high-priority action: %s", actions[0].Description)
	}
	if actions[0].Confidence != 0.95 {
		t.Errorf("action confidence should inherit the signal score, got %v", actions[0].Confidence)
	}
}

func TestDeriveActions_NeutralDerivesNothing(t *testing.T) {
	w := NewWriter("NSCLC-1", testReportConfig(), nil)

	sig, _ := model.NewSignal("sig_001", "fact_001", model.ImpactNeutral, 0.8, "no consequence")
	actions, err := w.DeriveActions([]model.Signal{sig})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("neutral signals must not derive actions, got %d", len(actions))
	}
}
