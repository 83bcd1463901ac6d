package model

import "time"

// TraceMetrics are aggregate coverage statistics recorded for
// observability. They never gate behavior on their own; the critic's
// verdict does.
type TraceMetrics struct {
	TotalFacts          int     `json:"total_facts"`
	TotalSignals        int     `json:"total_signals"`
	TotalActions        int     `json:"total_actions"`
	CitationCoverage    float64 `json:"citation_coverage"`    // % of narrative sentences carrying [S#]
	NumericTraceability float64 `json:"numeric_traceability"` // % of numeric tokens traced to quotes
	ActionCompleteness  float64 `json:"action_completeness"`  // % of actions with owner + horizon
}

// CIReport is the aggregate root produced by the writer: the ordered
// inputs, the derived actions, the rendered markdown narrative, and trace
// metrics. A report that fails the critic is never persisted.
type CIReport struct {
	ID          string       `json:"id"`
	Query       string       `json:"query"`
	ProgramName string       `json:"program_name"`
	Facts       []Fact       `json:"facts"`
	Signals     []Signal     `json:"signals"`
	Actions     []Action     `json:"actions"`
	Trace       TraceMetrics `json:"trace"`
	Markdown    string       `json:"-"`
	GeneratedAt time.Time    `json:"generated_at"`
}
