package model

// Profile describes the operator's own program. All five matching
// attributes are optional; an empty profile forces a Neutral stance on
// every signal rather than fabricating relevance.
type Profile struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Target    string `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
	Disease   string `json:"disease,omitempty" yaml:"disease,omitempty" mapstructure:"disease"`
	Line      string `json:"line,omitempty" yaml:"line,omitempty" mapstructure:"line"`
	Biomarker string `json:"biomarker,omitempty" yaml:"biomarker,omitempty" mapstructure:"biomarker"`
	MoA       string `json:"moa,omitempty" yaml:"moa,omitempty" mapstructure:"moa"`
}

// Empty reports whether no matching attribute is set. Name alone does not
// make a profile matchable.
func (p Profile) Empty() bool {
	return p.Target == "" && p.Disease == "" && p.Line == "" && p.Biomarker == "" && p.MoA == ""
}

// DisplayName returns the program name used in report headings.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return "Our Program"
}
