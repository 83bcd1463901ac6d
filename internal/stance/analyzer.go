package stance

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cibrief/internal/model"
)

// Analyzer attaches a program-relative stance to each signal by scoring
// the weighted overlap between the operator's profile and the backing
// fact's entities and context text.
type Analyzer struct {
	profile model.Profile
	cfg     model.StanceConfig
	log     *zap.Logger
}

// NewAnalyzer creates an analyzer for one program profile.
func NewAnalyzer(profile model.Profile, cfg model.StanceConfig, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{profile: profile, cfg: cfg, log: log}
}

// Apply enriches every signal in place with stance, stance rationale, and
// overlap score. Each signal's backing fact is resolved by id; a dangling
// reference is an error. Stance is set exactly once per signal.
func (a *Analyzer) Apply(signals []model.Signal, facts []model.Fact) error {
	byID := make(map[string]model.Fact, len(facts))
	for _, f := range facts {
		byID[f.ID] = f
	}

	for i := range signals {
		fact, ok := byID[signals[i].FactID]
		if !ok {
			return fmt.Errorf("stance: signal %s references unknown fact %s", signals[i].ID, signals[i].FactID)
		}

		overlap, matched := a.Overlap(fact)
		tier := a.tier(overlap)
		st := resolve(tier, signals[i].ImpactCode.Valence())

		if err := signals[i].SetStance(st, a.rationale(st, tier, matched, signals[i].ImpactCode), overlap); err != nil {
			return fmt.Errorf("stance: %w", err)
		}

		a.log.Debug("stance assigned",
			zap.String("signal_id", signals[i].ID),
			zap.Float64("overlap", overlap),
			zap.String("stance", string(st)))
	}
	return nil
}

// Overlap computes the weighted-overlap score between the profile and one
// fact, returning the score and the names of the matched dimensions. A
// dimension contributes its weight when the profile attribute is set and
// appears, case-insensitively, in the fact's entity/context text. Missing
// attributes contribute zero; an empty profile always scores zero.
func (a *Analyzer) Overlap(fact model.Fact) (float64, []string) {
	if a.profile.Empty() {
		return 0, nil
	}

	text := fact.ContextText()
	score := 0.0
	var matched []string

	dims := []struct {
		name   string
		value  string
		weight float64
	}{
		{"target", a.profile.Target, a.cfg.TargetWeight},
		{"disease", a.profile.Disease, a.cfg.DiseaseWeight},
		{"line", a.profile.Line, a.cfg.LineWeight},
		{"biomarker", a.profile.Biomarker, a.cfg.BiomarkerWeight},
		{"moa", a.profile.MoA, a.cfg.MoAWeight},
	}

	for _, d := range dims {
		v := strings.ToLower(strings.TrimSpace(d.value))
		if v == "" {
			continue
		}
		if strings.Contains(text, v) {
			score += d.weight
			matched = append(matched, d.name)
		}
	}

	if score > 1 {
		score = 1
	}
	return score, matched
}

type tier int

const (
	tierLow tier = iota
	tierMedium
	tierHigh
)

func (a *Analyzer) tier(overlap float64) tier {
	switch {
	case overlap >= a.cfg.HighOverlap:
		return tierHigh
	case overlap >= a.cfg.MediumOverlap:
		return tierMedium
	default:
		return tierLow
	}
}

// resolve maps an overlap tier and a generic valence to a stance label.
// Low overlap and neutral valence are always Neutral: relevance is never
// fabricated from absent data.
func resolve(t tier, v model.Valence) model.Stance {
	if v == model.ValenceNeutral || t == tierLow {
		return model.StanceNeutral
	}
	switch t {
	case tierHigh:
		if v == model.ValenceNegative {
			return model.StanceHarmful
		}
		return model.StanceHelpful
	default: // tierMedium
		if v == model.ValenceNegative {
			return model.StancePotentiallyHarmful
		}
		return model.StancePotentiallyHelpful
	}
}

// rationale builds a single-clause explanation with no numerals, so the
// writer can render it into narrative text that clears the critic's
// numeric-traceability gate.
func (a *Analyzer) rationale(st model.Stance, t tier, matched []string, code model.ImpactCode) string {
	impact := strings.ToLower(string(code))
	switch {
	case len(matched) == 0:
		return fmt.Sprintf("no overlap with our program, so the competitor's %s carries limited strategic weight", impact)
	case t == tierHigh:
		return fmt.Sprintf("high overlap on %s makes the competitor's %s directly consequential for our program", strings.Join(matched, ", "), impact)
	case t == tierMedium:
		return fmt.Sprintf("moderate overlap on %s means the competitor's %s warrants monitoring", strings.Join(matched, ", "), impact)
	default:
		return fmt.Sprintf("low overlap with our program, so the competitor's %s carries limited strategic weight", impact)
	}
}
