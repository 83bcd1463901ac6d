package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cibrief/internal/pipeline"
	"cibrief/internal/worker"
)

var (
	batchRequests string
	batchOutDir   string
	batchRules    string
	batchWorkers  int
	batchTimeout  time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate briefs for many requests concurrently",
	Long: `Batch runs the pipeline over a JSON array of requests, each with its
own query, profile, and facts. Briefs run concurrently across a worker
pool; the pipeline is deterministic, so concurrency never changes
report content.

Each passing brief is written as brief_NNN.md plus brief_NNN.json in
the output directory. Failing briefs are reported and skipped.

Example:
  cibrief batch --requests requests.json --out-dir briefs/ --workers 8`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchRequests, "requests", "requests.json", "input requests JSON path")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "briefs", "output directory")
	batchCmd.Flags().StringVar(&batchRules, "rules", "", "signal rule table YAML path (default: built-in rules)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent briefs (default: config concurrency.workers)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "overall batch timeout")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()
	defer func() { _ = log.Sync() }()

	data, err := os.ReadFile(batchRequests)
	if err != nil {
		return fmt.Errorf("read requests: %w", err)
	}
	var reqs []pipeline.Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return fmt.Errorf("parse requests: %w", err)
	}
	if len(reqs) == 0 {
		return fmt.Errorf("no requests in %s", batchRequests)
	}

	rules, err := loadRules(batchRules)
	if err != nil {
		return err
	}
	p, err := pipeline.NewPipeline(cfg, rules, log)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	pool := worker.NewPool(workers, p.Run)
	results := pool.Process(ctx, reqs)

	renderer := pipeline.NewRenderer(verbose)
	written, failed := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Request.Query, res.Err)
			continue
		}
		if !res.Result.Verdict.Passed {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: failed review with %d violations\n",
				res.Request.Query, len(res.Result.Verdict.Violations))
			continue
		}
		base := filepath.Join(batchOutDir, fmt.Sprintf("brief_%03d", res.Index+1))
		if err := renderer.RenderMarkdown(res.Result, base+".md"); err != nil {
			return err
		}
		if err := renderer.RenderJSON(res.Result, base+".json"); err != nil {
			return err
		}
		written++
	}

	fmt.Printf("\nBatch complete: %d written, %d failed, %d total\n", written, failed, len(reqs))
	if failed > 0 {
		return fmt.Errorf("%d of %d briefs failed", failed, len(reqs))
	}
	return nil
}
