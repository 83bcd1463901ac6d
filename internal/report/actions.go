package report

import (
	"fmt"

	"cibrief/internal/model"
)

type actionTemplate struct {
	description string
	owner       string
	horizon     model.Horizon
}

// actionTemplates maps each actionable impact code to a response. Neutral
// signals derive nothing.
var actionTemplates = map[model.ImpactCode]actionTemplate{
	model.ImpactTimelineSlip:         {"Review timeline assumptions against the competitor slip", "Clinical Ops", model.HorizonShortTerm},
	model.ImpactRegulatoryRisk:       {"Update regulatory strategy for anticipated agency concerns", "Regulatory", model.HorizonShortTerm},
	model.ImpactTimelineAdvance:      {"Expedite development plan review", "Program Lead", model.HorizonImmediate},
	model.ImpactDesignRisk:           {"Recheck trial design and power assumptions", "Biostats", model.HorizonShortTerm},
	model.ImpactSafetyRisk:           {"Enhance safety monitoring protocol", "Medical", model.HorizonImmediate},
	model.ImpactBiomarkerOpportunity: {"Evaluate biomarker enrichment strategy", "Translational", model.HorizonLongTerm},
	model.ImpactCompetitiveThreat:    {"Refresh competitive positioning analysis", "Marketing", model.HorizonShortTerm},
}

// DeriveActions builds recommended actions from the highest-scoring
// signals, one per distinct impact code, until the configured minimum is
// reached or templates run out. A shortfall is deliberate: the draft is
// still emitted and the critic's action-completeness gate reports it.
func (w *Writer) DeriveActions(signals []model.Signal) ([]model.Action, error) {
	var actions []model.Action
	used := make(map[model.ImpactCode]bool)

	for _, s := range topSignals(signals, len(signals)) {
		if len(actions) >= w.cfg.MinActions {
			break
		}
		tmpl, ok := actionTemplates[s.ImpactCode]
		if !ok || used[s.ImpactCode] {
			continue
		}
		used[s.ImpactCode] = true

		desc := tmpl.description
		if s.Stance == model.StanceHarmful || s.Stance == model.StancePotentiallyHarmful {
			desc += " (high priority)"
		}
		a, err := model.NewAction(
			fmt.Sprintf("act_%03d", len(actions)+1),
			desc, tmpl.owner, tmpl.horizon, s.Score, []string{s.ID})
		if err != nil {
			return nil, fmt.Errorf("derive actions: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}
