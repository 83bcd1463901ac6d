package detect

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"cibrief/internal/model"
)

// Detector classifies facts into signals by testing every rule in its
// table independently. A fact can yield several signals with different
// impact codes; a fact matching nothing yields none.
type Detector struct {
	rules []Rule
	cfg   model.ScoringConfig
	log   *zap.Logger
}

// NewDetector creates a detector over the given rule table.
func NewDetector(rules []Rule, cfg model.ScoringConfig, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{rules: rules, cfg: cfg, log: log}
}

// Detect maps facts to signals. Signal ids are sequential within the run.
func (d *Detector) Detect(facts []model.Fact) ([]model.Signal, error) {
	var signals []model.Signal
	next := 1

	for _, fact := range facts {
		text := strings.ToLower(fact.EventType + " " + fact.Quote)
		matched := false

		for _, rule := range d.rules {
			if !rule.matches(text) {
				continue
			}
			sig, err := d.newSignal(next, fact, rule.Code, rule.Severity)
			if err != nil {
				return nil, fmt.Errorf("detect: %w", err)
			}
			signals = append(signals, sig)
			next++
			matched = true
		}

		if modestEfficacyDelta(text, fact.Values) {
			sig, err := d.newSignal(next, fact, model.ImpactDesignRisk, SeverityMedium)
			if err != nil {
				return nil, fmt.Errorf("detect: %w", err)
			}
			signals = append(signals, sig)
			next++
			matched = true
		}

		if !matched {
			// Soft event: the fact simply carries no classified impact.
			d.log.Debug("fact matched no rule",
				zap.String("fact_id", fact.ID),
				zap.String("event_type", fact.EventType))
		}
	}

	d.log.Info("signal detection complete",
		zap.Int("facts", len(facts)),
		zap.Int("signals", len(signals)))

	return signals, nil
}

func (d *Detector) newSignal(n int, fact model.Fact, code model.ImpactCode, sev Severity) (model.Signal, error) {
	id := fmt.Sprintf("sig_%03d", n)
	return model.NewSignal(id, fact.ID, code, d.score(sev), rationale(fact, code))
}

func (d *Detector) score(sev Severity) float64 {
	s := d.cfg.BaseScore
	switch sev {
	case SeverityCritical:
		s += d.cfg.CriticalBoost
	case SeverityHigh:
		s += d.cfg.HighBoost
	case SeverityMedium:
		s += d.cfg.MediumBoost
	}
	if s > d.cfg.MaxScore {
		s = d.cfg.MaxScore
	}
	if s < d.cfg.MinScore {
		s = d.cfg.MinScore
	}
	return s
}

// modestEfficacyDelta flags efficacy readouts whose reported improvement
// over standard of care is small: PFS/OS deltas under three months, or
// response-rate deltas under fifteen points.
func modestEfficacyDelta(text string, values map[string]float64) bool {
	if !strings.Contains(text, "efficacy") && !strings.Contains(text, "readout") {
		return false
	}
	for k, v := range values {
		key := strings.ToLower(k)
		if !strings.Contains(key, "delta") {
			continue
		}
		if strings.Contains(key, "orr") || strings.Contains(key, "response") {
			if v < 15.0 {
				return true
			}
			continue
		}
		if v < 3.0 {
			return true
		}
	}
	return false
}

// rationaleParts holds the fixed "why it matters" and "strategic
// implication" clauses per impact code. The clauses deliberately contain
// no numerals and no relative time words so a rendered rationale can pass
// the critic's gates unchanged.
var rationaleParts = map[model.ImpactCode][2]string{
	model.ImpactTimelineSlip: {
		"This delays the competitor's development timeline",
		"The slip widens our window to strengthen positioning in the overlapping indication",
	},
	model.ImpactRegulatoryRisk: {
		"This indicates heightened regulatory scrutiny in the indication",
		"Our regulatory strategy should anticipate and pre-empt similar concerns",
	},
	model.ImpactTimelineAdvance: {
		"This accelerates the competitor's path to approval",
		"Our differentiation window may compress and development pacing should be revisited",
	},
	model.ImpactDesignRisk: {
		"The reported efficacy benefit over standard of care is modest",
		"The bar for clinical meaningfulness rises and our trial design should target a larger effect",
	},
	model.ImpactSafetyRisk: {
		"This points to a safety liability in the drug class",
		"If our mechanism is shared, proactive safety monitoring and mitigation are required",
	},
	model.ImpactBiomarkerOpportunity: {
		"This validates a predictive biomarker approach in the indication",
		"A patient-enrichment strategy could sharpen our efficacy signal",
	},
	model.ImpactCompetitiveThreat: {
		"This strengthens the competitor's position in the target indication",
		"Differentiation on efficacy, safety, or patient population becomes more pressing",
	},
	model.ImpactNeutral: {
		"No direct competitive consequence is apparent",
		"Strategic implications for our program are limited",
	},
}

// rationale fills the fixed what-happened / why-it-matters / implication
// template with the fact's entities and values. Pure string substitution.
func rationale(fact model.Fact, code model.ImpactCode) string {
	subject := strings.Join(firstN(fact.Entities, 3), ", ")
	if vals := FormatValues(fact.Values, 3); vals != "" {
		subject += " (" + vals + ")"
	}
	parts := rationaleParts[code]
	return fmt.Sprintf("%s reported for %s. %s. %s.", fact.EventType, subject, parts[0], parts[1])
}

// FormatValues renders up to max key=value pairs in key order. Values
// always carry a decimal point so the critic's tolerant numeric matching
// can trace them back to quotes.
func FormatValues(values map[string]float64, max int) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > max {
		keys = keys[:max]
	}
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+DecimalString(values[k]))
	}
	return strings.Join(pairs, ", ")
}

// DecimalString formats v with minimal digits but always a decimal point:
// 45 renders as "45.0", 0.45 as "0.45".
func DecimalString(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func firstN(ss []string, n int) []string {
	if len(ss) > n {
		return ss[:n]
	}
	return ss
}
