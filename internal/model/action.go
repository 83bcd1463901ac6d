package model

import "strings"

// Horizon is the urgency classification of a recommended action.
type Horizon string

const (
	HorizonImmediate Horizon = "Immediate"
	HorizonShortTerm Horizon = "Short-term"
	HorizonLongTerm  Horizon = "Long-term"
)

// Valid reports whether h is a member of the closed enum.
func (h Horizon) Valid() bool {
	switch h {
	case HorizonImmediate, HorizonShortTerm, HorizonLongTerm:
		return true
	}
	return false
}

// Action is a recommended response derived from one or more signals.
type Action struct {
	ID              string   `json:"id"`
	Description     string   `json:"description"`
	Owner           string   `json:"owner"`
	Horizon         Horizon  `json:"horizon"`
	Confidence      float64  `json:"confidence"`
	SourceSignalIDs []string `json:"source_signal_ids"`
}

// NewAction validates and returns an action. Placeholder owners are
// rejected the same way missing ones are.
func NewAction(id, description, owner string, horizon Horizon, confidence float64, signalIDs []string) (Action, error) {
	if strings.TrimSpace(id) == "" {
		return Action{}, invalid("Action", "", "id", "must be non-empty")
	}
	if strings.TrimSpace(description) == "" {
		return Action{}, invalid("Action", id, "description", "must be non-empty")
	}
	switch strings.ToLower(strings.TrimSpace(owner)) {
	case "", "tbd", "unknown":
		return Action{}, invalid("Action", id, "owner", "must name a responsible owner")
	}
	if !horizon.Valid() {
		return Action{}, invalid("Action", id, "horizon", "unknown horizon "+string(horizon))
	}
	if confidence < 0 || confidence > 1 {
		return Action{}, invalid("Action", id, "confidence", "must be within [0, 1]")
	}
	return Action{
		ID:              id,
		Description:     description,
		Owner:           owner,
		Horizon:         horizon,
		Confidence:      confidence,
		SourceSignalIDs: append([]string(nil), signalIDs...),
	}, nil
}
