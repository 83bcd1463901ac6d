package model

import "time"

// Config carries every tuneable of the analysis pipeline. Instances are
// read-only once constructed and safe for concurrent use.
type Config struct {
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	Stance      StanceConfig      `yaml:"stance" mapstructure:"stance"`
	Report      ReportConfig      `yaml:"report" mapstructure:"report"`
	Critic      CriticConfig      `yaml:"critic" mapstructure:"critic"`
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
}

// ScoringConfig shapes the detector's signal scores.
type ScoringConfig struct {
	BaseScore     float64 `yaml:"base_score" mapstructure:"base_score"`
	CriticalBoost float64 `yaml:"critical_boost" mapstructure:"critical_boost"`
	HighBoost     float64 `yaml:"high_boost" mapstructure:"high_boost"`
	MediumBoost   float64 `yaml:"medium_boost" mapstructure:"medium_boost"`
	MinScore      float64 `yaml:"min_score" mapstructure:"min_score"`
	MaxScore      float64 `yaml:"max_score" mapstructure:"max_score"`
}

// StanceConfig holds the overlap weights (sum to 1.0) and tier thresholds.
type StanceConfig struct {
	TargetWeight    float64 `yaml:"target_weight" mapstructure:"target_weight"`
	DiseaseWeight   float64 `yaml:"disease_weight" mapstructure:"disease_weight"`
	LineWeight      float64 `yaml:"line_weight" mapstructure:"line_weight"`
	BiomarkerWeight float64 `yaml:"biomarker_weight" mapstructure:"biomarker_weight"`
	MoAWeight       float64 `yaml:"moa_weight" mapstructure:"moa_weight"`
	HighOverlap     float64 `yaml:"high_overlap" mapstructure:"high_overlap"`
	MediumOverlap   float64 `yaml:"medium_overlap" mapstructure:"medium_overlap"`
}

// ReportConfig bounds the writer's sections.
type ReportConfig struct {
	MaxSummaryBullets   int     `yaml:"max_summary_bullets" mapstructure:"max_summary_bullets"`
	MaxWhatHappened     int     `yaml:"max_what_happened" mapstructure:"max_what_happened"`
	MaxValuesPerFact    int     `yaml:"max_values_per_fact" mapstructure:"max_values_per_fact"`
	MaxTableNumbers     int     `yaml:"max_table_numbers" mapstructure:"max_table_numbers"`
	MinActions          int     `yaml:"min_actions" mapstructure:"min_actions"`
	MaxNumericMagnitude float64 `yaml:"max_numeric_magnitude" mapstructure:"max_numeric_magnitude"`
}

// CriticConfig bounds the validation gates.
type CriticConfig struct {
	MaxSentenceSplits int      `yaml:"max_sentence_splits" mapstructure:"max_sentence_splits"`
	VagueTimePhrases  []string `yaml:"vague_time_phrases" mapstructure:"vague_time_phrases"`
}

// ExtractConfig configures the external LLM fact-extraction collaborator.
type ExtractConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"`
	Model             string        `yaml:"model" mapstructure:"model"`
	APIKey            string        `yaml:"-" mapstructure:"-"`
	BaseURL           string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens         int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ConcurrencyConfig bounds batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			BaseScore:     0.8,
			CriticalBoost: 0.15,
			HighBoost:     0.10,
			MediumBoost:   0.05,
			MinScore:      0.1,
			MaxScore:      1.0,
		},
		Stance: StanceConfig{
			TargetWeight:    0.35,
			DiseaseWeight:   0.25,
			LineWeight:      0.20,
			BiomarkerWeight: 0.15,
			MoAWeight:       0.05,
			HighOverlap:     0.55,
			MediumOverlap:   0.30,
		},
		Report: ReportConfig{
			MaxSummaryBullets:   5,
			MaxWhatHappened:     7,
			MaxValuesPerFact:    2,
			MaxTableNumbers:     3,
			MinActions:          3,
			MaxNumericMagnitude: 1e15,
		},
		Critic: CriticConfig{
			MaxSentenceSplits: 100,
			VagueTimePhrases: []string{
				"recently", "soon", "shortly", "upcoming",
				"in the coming months", "in the near future",
				"next month", "last month", "this week", "last week",
				"yesterday", "tomorrow", "today",
			},
		},
		Extract: ExtractConfig{
			Provider:          "",
			Model:             "gpt-4o-mini",
			Timeout:           30 * time.Second,
			MaxTokens:         2000,
			CacheTTL:          1 * time.Hour,
			RequestsPerSecond: 1,
		},
		Concurrency: ConcurrencyConfig{Workers: 4},
	}
}
