package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cibrief/internal/extract"
)

var (
	extractDocs    string
	extractOut     string
	extractTimeout time.Duration
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured facts from raw documents via an LLM provider",
	Long: `Extract sends raw document text to the configured LLM provider and
writes the validated facts as JSON, ready for the report command.

The provider is configured via the config file or CIBRIEF_* env vars;
the API key is read from OPENAI_API_KEY. Extraction is the only stage
that touches a model. Everything downstream is deterministic, so the
extracted fact file is the audit boundary: inspect it before briefing.

Example:
  cibrief extract --docs docs.json --out facts.json`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractDocs, "docs", "docs.json", "input documents JSON path")
	extractCmd.Flags().StringVar(&extractOut, "out", "facts.json", "output facts JSON path")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 5*time.Minute, "overall extraction timeout")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()
	defer func() { _ = log.Sync() }()

	provider, err := extract.NewProvider(cfg.Extract)
	if err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("no extraction provider configured (set extract.provider in config or CIBRIEF_EXTRACT_PROVIDER)")
	}

	data, err := os.ReadFile(extractDocs)
	if err != nil {
		return fmt.Errorf("read documents: %w", err)
	}
	var docs []extract.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("parse documents: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	extractor := extract.NewExtractor(provider, cfg.Extract, log)
	facts, err := extractor.Extract(ctx, docs)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	out, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode facts: %w", err)
	}
	if err := os.WriteFile(extractOut, out, 0o644); err != nil {
		return fmt.Errorf("write facts: %w", err)
	}
	fmt.Printf("✓ Extracted %d facts from %d documents: %s\n", len(facts), len(docs), extractOut)
	return nil
}
