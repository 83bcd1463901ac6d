package detect

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"cibrief/internal/model"
)

// Severity ranks how strongly a rule match should boost the signal score.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium:
		return true
	}
	return false
}

// Rule maps keyword cues to an impact code. Keywords are matched
// case-insensitively against the fact's event type and quote; a rule with
// any exclude phrase present does not match. Rules are independent: every
// matching rule yields its own signal.
type Rule struct {
	Code     model.ImpactCode `yaml:"code"`
	Severity Severity         `yaml:"severity"`
	Keywords []string         `yaml:"keywords"`
	Exclude  []string         `yaml:"exclude,omitempty"`
}

func (r Rule) matches(text string) bool {
	for _, ex := range r.Exclude {
		if strings.Contains(text, ex) {
			return false
		}
	}
	for _, kw := range r.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func (r Rule) validate() error {
	if !r.Code.Valid() {
		return fmt.Errorf("rule: unknown impact code %q", r.Code)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("rule %s: unknown severity %q", r.Code, r.Severity)
	}
	if len(r.Keywords) == 0 {
		return fmt.Errorf("rule %s: at least one keyword is required", r.Code)
	}
	return nil
}

// DefaultRules returns the built-in rule table.
func DefaultRules() []Rule {
	return []Rule{
		{
			Code:     model.ImpactTimelineSlip,
			Severity: SeverityHigh,
			Keywords: []string{
				"trial halt", "clinical hold", "partial hold", "full hold",
				"site pause", "enrollment pause", "dose pause",
				"study suspension", "trial suspension", "halted",
				"delayed", "postponed",
			},
		},
		{
			Code:     model.ImpactRegulatoryRisk,
			Severity: SeverityCritical,
			Keywords: []string{
				"crl", "complete response letter",
				"refuse to file", "refuse-to-file", "rtf",
				"withdrawn", "withdrawal", "accelerated approval withdrawn",
				"not approvable", "deficiency letter",
				"regulatory setback", "filing delay",
			},
		},
		{
			Code:     model.ImpactTimelineAdvance,
			Severity: SeverityMedium,
			Keywords: []string{
				"breakthrough therapy", "btd",
				"fast track", "priority review",
				"prime designation",
				"accelerated approval", "conditional approval",
				"phase 3 initiation", "phase 3 start",
				"pivotal trial", "registration trial",
				"rolling submission", "nda filing", "bla filing",
				"maa filing", "regulatory filing",
			},
			Exclude: []string{"withdrawn", "denied", "rejected"},
		},
		{
			Code:     model.ImpactSafetyRisk,
			Severity: SeverityCritical,
			Keywords: []string{
				"safety signal", "adverse event", "sae",
				"grade ≥3", "grade >=3", "grade 3", "grade 4", "grade 5",
				"serious adverse event", "treatment-related ae",
				"dose reduction", "discontinuation",
				"black box warning",
			},
		},
		{
			Code:     model.ImpactBiomarkerOpportunity,
			Severity: SeverityMedium,
			Keywords: []string{
				"biomarker", "companion diagnostic", "companion dx",
				"predictive biomarker", "biomarker validation",
				"diagnostic approval", "cdx approval",
				"biomarker-selected", "biomarker enrichment",
			},
		},
		{
			Code:     model.ImpactCompetitiveThreat,
			Severity: SeverityHigh,
			Keywords: []string{
				"approval", "market authorization",
				"launch", "commercial launch",
				"positive phase 3", "met primary endpoint",
				"superiority demonstrated",
			},
			Exclude: []string{"missed", "failed", "negative", "withdrawn"},
		},
	}
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a rule table from a YAML file so the taxonomy can be
// versioned without rebuilding.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("parse rules: no rules in %s", path)
	}
	for i := range f.Rules {
		for j, kw := range f.Rules[i].Keywords {
			f.Rules[i].Keywords[j] = strings.ToLower(kw)
		}
		for j, ex := range f.Rules[i].Exclude {
			f.Rules[i].Exclude[j] = strings.ToLower(ex)
		}
		if err := f.Rules[i].validate(); err != nil {
			return nil, err
		}
	}
	return f.Rules, nil
}
