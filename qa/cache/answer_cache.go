package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/andyjacy/aicommonplatform/qa"
)

// AnswerCache caches computed answers keyed by a hash of the normalized
// question text. It is bounded and entries expire, so it never grows without
// limit; one instance is constructed at process start and handed to the
// pipeline.
type AnswerCache struct {
	lru *LRU[string, qa.Answer]
}

// NewAnswerCache creates an answer cache with the given capacity and TTL.
func NewAnswerCache(capacity int, ttl time.Duration) *AnswerCache {
	return &AnswerCache{lru: NewLRU[string, qa.Answer](capacity, ttl)}
}

// Key derives the cache key from the question text. Normalization is limited
// to trimming and lowercasing so that trivially re-typed questions still hit.
func Key(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached answer for a question, if present and fresh.
func (c *AnswerCache) Get(question string) (qa.Answer, bool) {
	return c.lru.Get(Key(question))
}

// Set stores the answer for a question.
func (c *AnswerCache) Set(question string, answer qa.Answer) {
	c.lru.Set(Key(question), answer)
}

// Size returns the number of cached answers.
func (c *AnswerCache) Size() int {
	return c.lru.Size()
}
