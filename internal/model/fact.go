package model

import (
	"math"
	"strings"
	"time"
)

// Fact is an atomic, cited claim about a competitor event. Facts arrive
// from the external extraction stage and are consumed read-only by the
// analysis pipeline. The verbatim quote backs numeric traceability.
type Fact struct {
	ID         string             `json:"id"`
	Entities   []string           `json:"entities"`
	EventType  string             `json:"event_type"`
	Values     map[string]float64 `json:"values,omitempty"`
	Date       string             `json:"date"`
	SourceID   string             `json:"source_id"`
	Quote      string             `json:"quote"`
	Confidence float64            `json:"confidence"`
}

// NewFact validates f and returns an owned copy. A Fact that fails
// validation is never observable.
func NewFact(f Fact) (Fact, error) {
	if err := f.Validate(); err != nil {
		return Fact{}, err
	}
	f.Entities = append([]string(nil), f.Entities...)
	if f.Values != nil {
		values := make(map[string]float64, len(f.Values))
		for k, v := range f.Values {
			values[k] = v
		}
		f.Values = values
	}
	return f, nil
}

// Validate checks every field. Used both by NewFact and after decoding
// fact records from JSON.
func (f Fact) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return invalid("Fact", "", "id", "must be non-empty")
	}
	if f.Quote == "" {
		return invalid("Fact", f.ID, "quote", "verbatim quote is required for traceability")
	}
	if strings.TrimSpace(f.SourceID) == "" {
		return invalid("Fact", f.ID, "source_id", "must be non-empty")
	}
	if strings.TrimSpace(f.EventType) == "" {
		return invalid("Fact", f.ID, "event_type", "must be non-empty")
	}
	if len(f.Entities) == 0 {
		return invalid("Fact", f.ID, "entities", "at least one entity is required")
	}
	for _, e := range f.Entities {
		if strings.TrimSpace(e) == "" {
			return invalid("Fact", f.ID, "entities", "entities must be non-empty strings")
		}
	}
	for k, v := range f.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid("Fact", f.ID, "values", "value for "+k+" is not finite")
		}
	}
	if f.Date == "" {
		return invalid("Fact", f.ID, "date", "must be non-empty")
	}
	if _, err := time.Parse("2006-01-02", f.Date); err != nil {
		return invalid("Fact", f.ID, "date", "must be an ISO-8601 date (YYYY-MM-DD), got "+f.Date)
	}
	if f.Confidence < 0 || f.Confidence > 1 {
		return invalid("Fact", f.ID, "confidence", "must be within [0, 1]")
	}
	return nil
}

// ContextText returns the lowercase text the stance analyzer matches
// profile attributes against: entities, event type, and quote.
func (f Fact) ContextText() string {
	var b strings.Builder
	for _, e := range f.Entities {
		b.WriteString(e)
		b.WriteString(" ")
	}
	b.WriteString(f.EventType)
	b.WriteString(" ")
	b.WriteString(f.Quote)
	return strings.ToLower(b.String())
}
