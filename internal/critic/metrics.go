package critic

import "cibrief/internal/model"

// Metrics computes the traceability figures recorded in the report's
// trace block. Coverage ratios reuse the gate scanners so the numbers
// always agree with the verdict.
func (c *Critic) Metrics(rep *model.CIReport) model.TraceMetrics {
	_, sentences, cited := c.checkCitations(rep)
	_, numbers, traced := c.checkNumbers(rep)

	complete := 0
	for _, a := range rep.Actions {
		if actionComplete(a) {
			complete++
		}
	}

	m := model.TraceMetrics{
		TotalFacts:   len(rep.Facts),
		TotalSignals: len(rep.Signals),
		TotalActions: len(rep.Actions),
	}
	if sentences > 0 {
		m.CitationCoverage = float64(cited) / float64(sentences)
	}
	if numbers > 0 {
		m.NumericTraceability = float64(traced) / float64(numbers)
	} else {
		m.NumericTraceability = 1
	}
	if len(rep.Actions) > 0 {
		m.ActionCompleteness = float64(complete) / float64(len(rep.Actions))
	}
	return m
}
