package report

import (
	"encoding/json"
	"fmt"

	"cibrief/internal/model"
)

// Sidecar renders the structured JSON artifact carrying the same facts,
// signals, actions, and trace metrics as the narrative.
func Sidecar(rep *model.CIReport) ([]byte, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sidecar: %w", err)
	}
	return data, nil
}

// ParseSidecar decodes a sidecar back into a report aggregate,
// re-validating every fact so a tampered artifact cannot reintroduce
// invalid state.
func ParseSidecar(data []byte) (*model.CIReport, error) {
	var rep model.CIReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("parse sidecar: %w", err)
	}
	for _, f := range rep.Facts {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("parse sidecar: %w", err)
		}
	}
	return &rep, nil
}
