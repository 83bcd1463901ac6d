package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Cache stores raw extraction responses keyed by the document they were
// produced from, so repeated runs over the same document do not re-spend
// provider tokens. Implementations own their expiry policy.
type Cache interface {
	GetResponse(sourceID, text string) ([]byte, bool)
	SetResponse(sourceID, text string, value []byte) error
	Clear() error
}

// Key derives a stable cache key from a document's source id and text.
// The version segment invalidates old entries when the extraction prompt
// changes shape.
func Key(sourceID, text string) string {
	hash := sha256.Sum256([]byte(sourceID + "\x00" + text))
	return "cibrief:v1:" + hex.EncodeToString(hash[:])
}
