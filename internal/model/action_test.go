package model

import "testing"

func TestNewAction_Valid(t *testing.T) {
	a, err := NewAction("act_001", "Update regulatory strategy", "Regulatory", HorizonShortTerm, 0.9, []string{"sig_001"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Owner != "Regulatory" || a.Horizon != HorizonShortTerm {
		t.Errorf("action fields not recorded: %+v", a)
	}
}

func TestNewAction_PlaceholderOwners(t *testing.T) {
	for _, owner := range []string{"", "  ", "TBD", "tbd", "Unknown", "unknown"} {
		if _, err := NewAction("act_001", "desc", owner, HorizonImmediate, 0.5, nil); err == nil {
			t.Errorf("owner %q should be rejected", owner)
		}
	}
}

func TestNewAction_Rejections(t *testing.T) {
	if _, err := NewAction("act_001", "desc", "Medical", "Eventually", 0.5, nil); err == nil {
		t.Error("horizon outside the enum should be rejected")
	}
	if _, err := NewAction("act_001", "desc", "Medical", HorizonImmediate, 1.5, nil); err == nil {
		t.Error("confidence above one should be rejected")
	}
	if _, err := NewAction("act_001", " ", "Medical", HorizonImmediate, 0.5, nil); err == nil {
		t.Error("blank description should be rejected")
	}
}

func TestHorizon_Valid(t *testing.T) {
	for _, h := range []Horizon{HorizonImmediate, HorizonShortTerm, HorizonLongTerm} {
		if !h.Valid() {
			t.Errorf("%s should be valid", h)
		}
	}
	if Horizon("Someday").Valid() {
		t.Error("horizon outside the enum should be invalid")
	}
}
