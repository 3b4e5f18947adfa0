package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/articlescore/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// RecordKey derives a content-addressed key for an analyzed record.
// The lexicon fingerprint is part of the key so that editing a word list
// never serves stale scores.
func RecordKey(lexiconFingerprint, text string) string {
	h := sha256.New()
	h.Write([]byte(lexiconFingerprint))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return "articlescore:v1:" + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by cfg, or nil when caching is disabled
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}
