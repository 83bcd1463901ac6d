package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"cibrief/internal/cache"
	"cibrief/internal/model"
)

// Extractor turns raw documents into validated facts through an LLM
// provider. Responses are cached by document digest and calls are rate
// limited, so batch runs stay polite and rerunning a brief costs nothing.
type Extractor struct {
	provider Provider
	store    cache.Cache
	limiter  *rate.Limiter
	log      *zap.Logger
}

// NewExtractor creates an extractor around the given provider.
func NewExtractor(provider Provider, cfg model.ExtractConfig, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Extractor{
		provider: provider,
		store:    cache.NewMemoryCache(cfg.CacheTTL),
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		log:      log,
	}
}

// Extract runs every document through the provider and returns the facts
// that survive validation. Malformed facts are logged and skipped; a
// provider or decode failure on a document aborts the whole call.
func (e *Extractor) Extract(ctx context.Context, docs []Document) ([]model.Fact, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("extract: no provider configured")
	}

	var facts []model.Fact
	for _, doc := range docs {
		if doc.SourceID == "" || strings.TrimSpace(doc.Text) == "" {
			return nil, fmt.Errorf("extract: document needs a source_id and text")
		}
		raw, err := e.complete(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", doc.SourceID, err)
		}
		parsed, err := decodeFacts(raw)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", doc.SourceID, err)
		}
		for _, f := range parsed {
			f.SourceID = doc.SourceID
			if f.ID == "" {
				f.ID = fmt.Sprintf("fact_%03d", len(facts)+1)
			}
			valid, err := model.NewFact(f)
			if err != nil {
				e.log.Warn("dropping malformed extracted fact",
					zap.String("source_id", doc.SourceID),
					zap.Error(err))
				continue
			}
			facts = append(facts, valid)
		}
	}
	e.log.Info("extraction complete",
		zap.Int("documents", len(docs)),
		zap.Int("facts", len(facts)))
	return facts, nil
}

func (e *Extractor) complete(ctx context.Context, doc Document) (string, error) {
	if raw, ok := e.store.GetResponse(doc.SourceID, doc.Text); ok {
		e.log.Debug("extraction cache hit", zap.String("source_id", doc.SourceID))
		return string(raw), nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}
	raw, err := e.provider.Complete(ctx, buildPrompt(doc))
	if err != nil {
		return "", err
	}
	_ = e.store.SetResponse(doc.SourceID, doc.Text, []byte(raw))
	return raw, nil
}

// decodeFacts parses the provider's JSON, ignoring markdown code fences
// some models wrap around otherwise valid output.
func decodeFacts(raw string) ([]model.Fact, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var facts []model.Fact
	if err := json.Unmarshal([]byte(raw), &facts); err != nil {
		return nil, fmt.Errorf("decode facts: %w", err)
	}
	return facts, nil
}

func buildPrompt(doc Document) string {
	return fmt.Sprintf(`Extract every discrete, verifiable claim from the document below as a JSON array of facts.

Each fact object has these fields:
  "id": short identifier like "fact_001"
  "entities": array of drug, company, or trial names involved
  "event_type": one of "trial_update", "regulatory", "publication", "commercial", "safety"
  "values": object of named numeric values taken verbatim from the text, e.g. {"orr": 45.0}
  "date": event date as YYYY-MM-DD
  "source_id": "%s"
  "quote": the exact sentence from the document supporting the fact
  "confidence": your confidence in the extraction, 0.0 to 1.0

Rules:
- Every number in "values" must appear verbatim in "quote".
- Do not infer or compute numbers that are not in the text.
- Omit the fact entirely rather than guessing a missing field.
- Respond with the JSON array only.

Document:
%s`, doc.SourceID, doc.Text)
}
