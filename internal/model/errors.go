package model

import "fmt"

// ValidationError reports a rejected field during value construction.
// Construction never yields a partially valid object: the constructor
// returns the zero value alongside the error.
type ValidationError struct {
	Kind   string // "Fact", "Signal", "Action", ...
	ID     string // identifier of the offending object, if known
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: invalid %s: %s", e.Kind, e.ID, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: invalid %s: %s", e.Kind, e.Field, e.Reason)
}

func invalid(kind, id, field, reason string) error {
	return &ValidationError{Kind: kind, ID: id, Field: field, Reason: reason}
}
