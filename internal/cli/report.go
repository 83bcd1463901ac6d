package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cibrief/internal/detect"
	"cibrief/internal/model"
	"cibrief/internal/pipeline"
)

var (
	reportFacts   string
	reportProfile string
	reportRules   string
	reportJSON    string
	reportMD      string
	reportTimeout time.Duration
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <query>",
	Short: "Generate a reviewed brief from a fact file",
	Long: `Report runs the full pipeline over a file of structured facts:
- Classify each fact into impact signals via the rule table
- Analyze stance against your program profile
- Draft the seven-section brief with a JSON sidecar
- Review the draft against its own evidence

A brief that fails review prints its violations and exits non-zero;
nothing is written.

Example:
  cibrief report "Drug-X program threats" --facts facts.json --profile program.yaml --md brief.md
  cibrief report "Q3 landscape" --facts facts.json --rules rules.yaml --json brief.json`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportFacts, "facts", "facts.json", "input facts JSON path")
	reportCmd.Flags().StringVar(&reportProfile, "profile", "", "program profile YAML path (optional)")
	reportCmd.Flags().StringVar(&reportRules, "rules", "", "signal rule table YAML path (default: built-in rules)")
	reportCmd.Flags().StringVar(&reportJSON, "json", "", "output JSON sidecar path (optional)")
	reportCmd.Flags().StringVar(&reportMD, "md", "brief.md", "output Markdown path")
	reportCmd.Flags().DurationVar(&reportTimeout, "timeout", 1*time.Minute, "overall run timeout")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()
	defer func() { _ = log.Sync() }()

	facts, err := loadFacts(reportFacts)
	if err != nil {
		return err
	}
	profile, err := loadProfile(reportProfile)
	if err != nil {
		return err
	}
	rules, err := loadRules(reportRules)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg, rules, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	result, err := p.Run(ctx, pipeline.Request{
		Query:   args[0],
		Profile: profile,
		Facts:   facts,
	})
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	renderer := pipeline.NewRenderer(verbose)
	renderer.RenderSummary(result)
	if !result.Verdict.Passed {
		return fmt.Errorf("brief failed review with %d violations", len(result.Verdict.Violations))
	}

	if reportMD != "" {
		if err := renderer.RenderMarkdown(result, reportMD); err != nil {
			return err
		}
	}
	if reportJSON != "" {
		if err := renderer.RenderJSON(result, reportJSON); err != nil {
			return err
		}
	}
	return nil
}

func loadFacts(path string) ([]model.Fact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facts: %w", err)
	}
	var facts []model.Fact
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, fmt.Errorf("parse facts: %w", err)
	}
	return facts, nil
}

func loadProfile(path string) (model.Profile, error) {
	if path == "" {
		return model.Profile{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	var profile model.Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return model.Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	return profile, nil
}

func loadRules(path string) ([]detect.Rule, error) {
	if path == "" {
		return nil, nil
	}
	return detect.LoadRules(path)
}
