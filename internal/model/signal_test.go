package model

import "testing"

func TestImpactCode_Valence(t *testing.T) {
	cases := []struct {
		code ImpactCode
		want Valence
	}{
		{ImpactTimelineSlip, ValencePositive},
		{ImpactRegulatoryRisk, ValencePositive},
		{ImpactSafetyRisk, ValencePositive},
		{ImpactTimelineAdvance, ValenceNegative},
		{ImpactCompetitiveThreat, ValenceNegative},
		{ImpactBiomarkerOpportunity, ValenceNegative},
		{ImpactDesignRisk, ValenceNeutral},
		{ImpactNeutral, ValenceNeutral},
	}
	for _, tc := range cases {
		if got := tc.code.Valence(); got != tc.want {
			t.Errorf("%s: valence %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestImpactCode_Valid(t *testing.T) {
	if !ImpactTimelineSlip.Valid() {
		t.Error("Timeline slip should be valid")
	}
	if ImpactCode("Market crash").Valid() {
		t.Error("code outside the taxonomy should be invalid")
	}
}

func TestNewSignal_Rejections(t *testing.T) {
	cases := []struct {
		name      string
		id        string
		factID    string
		code      ImpactCode
		score     float64
		rationale string
	}{
		{"empty id", "", "fact_001", ImpactTimelineSlip, 0.9, "r"},
		{"empty fact id", "sig_001", "", ImpactTimelineSlip, 0.9, "r"},
		{"unknown code", "sig_001", "fact_001", "Made up", 0.9, "r"},
		{"score above one", "sig_001", "fact_001", ImpactTimelineSlip, 1.2, "r"},
		{"negative score", "sig_001", "fact_001", ImpactTimelineSlip, -0.1, "r"},
		{"empty rationale", "sig_001", "fact_001", ImpactTimelineSlip, 0.9, " "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSignal(tc.id, tc.factID, tc.code, tc.score, tc.rationale); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestSignal_SetStance_ExactlyOnce(t *testing.T) {
	sig, err := NewSignal("sig_001", "fact_001", ImpactTimelineSlip, 0.9, "enrollment halted")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Stance != "" {
		t.Fatalf("new signal should have no stance, got %q", sig.Stance)
	}

	if err := sig.SetStance(StanceHarmful, "high overlap on target", 0.6); err != nil {
		t.Fatalf("first SetStance failed: %v", err)
	}
	if sig.Stance != StanceHarmful || sig.OverlapScore != 0.6 {
		t.Errorf("stance not recorded: %+v", sig)
	}

	if err := sig.SetStance(StanceNeutral, "second attempt", 0.1); err == nil {
		t.Error("second SetStance should fail")
	}
	if sig.Stance != StanceHarmful {
		t.Errorf("failed second SetStance must not overwrite, got %q", sig.Stance)
	}
}

func TestSignal_SetStance_Rejections(t *testing.T) {
	sig, _ := NewSignal("sig_001", "fact_001", ImpactTimelineSlip, 0.9, "enrollment halted")

	if err := sig.SetStance("Hostile", "r", 0.5); err == nil {
		t.Error("unknown stance should be rejected")
	}
	if err := sig.SetStance(StanceNeutral, "r", 1.5); err == nil {
		t.Error("overlap above one should be rejected")
	}
	if sig.Stance != "" {
		t.Errorf("rejected SetStance must leave stance unset, got %q", sig.Stance)
	}
}
