package extract

import (
	"fmt"
	"strings"

	"cibrief/internal/model"
)

// NewProvider builds the configured provider. An empty provider name
// disables extraction and returns (nil, nil); callers then work from
// pre-structured fact files only.
func NewProvider(cfg model.ExtractConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown extraction provider: %s (supported: openai)", cfg.Provider)
	}
}
