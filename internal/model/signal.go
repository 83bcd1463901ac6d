package model

import "strings"

// ImpactCode is the closed taxonomy of competitive impact classifications.
type ImpactCode string

const (
	ImpactTimelineSlip         ImpactCode = "Timeline slip"
	ImpactTimelineAdvance      ImpactCode = "Timeline advance"
	ImpactRegulatoryRisk       ImpactCode = "Regulatory risk"
	ImpactDesignRisk           ImpactCode = "Design risk"
	ImpactSafetyRisk           ImpactCode = "Safety risk"
	ImpactBiomarkerOpportunity ImpactCode = "Biomarker opportunity"
	ImpactCompetitiveThreat    ImpactCode = "Competitive threat"
	ImpactNeutral              ImpactCode = "Neutral"
)

// Valid reports whether c is a member of the closed enum.
func (c ImpactCode) Valid() bool {
	switch c {
	case ImpactTimelineSlip, ImpactTimelineAdvance, ImpactRegulatoryRisk,
		ImpactDesignRisk, ImpactSafetyRisk, ImpactBiomarkerOpportunity,
		ImpactCompetitiveThreat, ImpactNeutral:
		return true
	}
	return false
}

// Valence is the fixed program-independent polarity of an impact code.
// Competitor progress is negative for the operator's program, competitor
// setbacks are positive.
type Valence int

const (
	ValenceNeutral Valence = iota
	ValenceNegative
	ValencePositive
)

// Valence returns the pre-assigned generic valence for c.
func (c ImpactCode) Valence() Valence {
	switch c {
	case ImpactTimelineAdvance, ImpactCompetitiveThreat, ImpactBiomarkerOpportunity:
		return ValenceNegative
	case ImpactTimelineSlip, ImpactRegulatoryRisk, ImpactSafetyRisk:
		return ValencePositive
	default:
		return ValenceNeutral
	}
}

// Stance is the program-relative relevance/valence label attached to a
// signal by the stance analyzer.
type Stance string

const (
	StanceHarmful            Stance = "Harmful"
	StanceHelpful            Stance = "Helpful"
	StancePotentiallyHarmful Stance = "Potentially harmful"
	StancePotentiallyHelpful Stance = "Potentially helpful"
	StanceNeutral            Stance = "Neutral"
)

// Valid reports whether s is a member of the closed enum.
func (s Stance) Valid() bool {
	switch s {
	case StanceHarmful, StanceHelpful, StancePotentiallyHarmful,
		StancePotentiallyHelpful, StanceNeutral:
		return true
	}
	return false
}

// Signal is the classified interpretation of one Fact. FactID is a weak
// back-reference resolved by lookup; a Signal never owns its Fact. Stance,
// StanceRationale and OverlapScore stay unset until the stance analyzer
// runs, and may be set exactly once.
type Signal struct {
	ID              string     `json:"id"`
	FactID          string     `json:"fact_id"`
	ImpactCode      ImpactCode `json:"impact_code"`
	Score           float64    `json:"score"`
	Rationale       string     `json:"rationale"`
	Stance          Stance     `json:"stance,omitempty"`
	StanceRationale string     `json:"stance_rationale,omitempty"`
	OverlapScore    float64    `json:"overlap_score"`
}

// NewSignal validates and returns a stance-less signal.
func NewSignal(id, factID string, code ImpactCode, score float64, rationale string) (Signal, error) {
	if strings.TrimSpace(id) == "" {
		return Signal{}, invalid("Signal", "", "id", "must be non-empty")
	}
	if strings.TrimSpace(factID) == "" {
		return Signal{}, invalid("Signal", id, "fact_id", "must be non-empty")
	}
	if !code.Valid() {
		return Signal{}, invalid("Signal", id, "impact_code", "unknown impact code "+string(code))
	}
	if score < 0 || score > 1 {
		return Signal{}, invalid("Signal", id, "score", "must be within [0, 1]")
	}
	if strings.TrimSpace(rationale) == "" {
		return Signal{}, invalid("Signal", id, "rationale", "must be non-empty")
	}
	return Signal{
		ID:         id,
		FactID:     factID,
		ImpactCode: code,
		Score:      score,
		Rationale:  rationale,
	}, nil
}

// SetStance records the stance analysis result. A second call is an error:
// each signal is enriched exactly once per pipeline run.
func (s *Signal) SetStance(stance Stance, rationale string, overlap float64) error {
	if s.Stance != "" {
		return invalid("Signal", s.ID, "stance", "stance already set")
	}
	if !stance.Valid() {
		return invalid("Signal", s.ID, "stance", "unknown stance "+string(stance))
	}
	if overlap < 0 || overlap > 1 {
		return invalid("Signal", s.ID, "overlap_score", "must be within [0, 1]")
	}
	s.Stance = stance
	s.StanceRationale = rationale
	s.OverlapScore = overlap
	return nil
}
