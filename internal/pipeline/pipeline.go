package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cibrief/internal/critic"
	"cibrief/internal/detect"
	"cibrief/internal/model"
	"cibrief/internal/report"
	"cibrief/internal/stance"
)

// Pipeline orchestrates the full brief: detect signals, analyze stance,
// draft the report, and review it. The detector and critic are built once
// per pipeline; the stance analyzer and writer are rebuilt per request
// because they are bound to the request's program profile.
type Pipeline struct {
	detector *detect.Detector
	reviewer *critic.Critic
	config   *model.Config
	log      *zap.Logger
}

// NewPipeline creates a pipeline with the given configuration. A nil rule
// set selects the built-in rule table.
func NewPipeline(cfg *model.Config, rules []detect.Rule, log *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: nil config")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if rules == nil {
		rules = detect.DefaultRules()
	}
	return &Pipeline{
		detector: detect.NewDetector(rules, cfg.Scoring, log),
		reviewer: critic.NewCritic(cfg.Critic, cfg.Report.MinActions, log),
		config:   cfg,
		log:      log,
	}, nil
}

// Request carries one brief's inputs. Facts arrive already structured;
// upstream extraction is a separate concern.
type Request struct {
	Query   string        `json:"query"`
	Profile model.Profile `json:"profile"`
	Facts   []model.Fact  `json:"facts"`
}

// Result pairs the drafted report with its review verdict. The report is
// always populated so failed drafts can be inspected; renderers consult
// the verdict before persisting anything.
type Result struct {
	Report  *model.CIReport
	Verdict critic.Verdict
}

// Run executes the stages in order for a single request. Every fact is
// validated up front; a single malformed fact rejects the whole request
// rather than silently thinning the evidence base.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("run: empty query")
	}
	for _, f := range req.Facts {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("run: %w", err)
		}
	}

	signals, err := p.detector.Detect(req.Facts)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analyzer := stance.NewAnalyzer(req.Profile, p.config.Stance, p.log)
	if err := analyzer.Apply(signals, req.Facts); err != nil {
		return nil, fmt.Errorf("stance: %w", err)
	}

	writer := report.NewWriter(req.Profile.DisplayName(), p.config.Report, p.log)
	actions, err := writer.DeriveActions(signals)
	if err != nil {
		return nil, fmt.Errorf("actions: %w", err)
	}
	rep := writer.Draft(req.Query, req.Facts, signals, actions)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	verdict := p.reviewer.Review(rep)
	rep.Trace = p.reviewer.Metrics(rep)

	p.log.Info("brief complete",
		zap.String("query", req.Query),
		zap.Int("facts", len(req.Facts)),
		zap.Int("signals", len(signals)),
		zap.Int("actions", len(actions)),
		zap.Bool("passed", verdict.Passed))

	return &Result{Report: rep, Verdict: verdict}, nil
}
