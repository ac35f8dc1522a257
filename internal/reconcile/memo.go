package reconcile

import (
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/umarmf343/vea-2025-sub005/internal/models"
)

// InsightMemo caches the computed insight keyed by the content of the
// assignment collection: an unchanged collection skips recomputation and
// any change to an id, status or score invalidates the entry.
type InsightMemo struct {
	mu      sync.Mutex
	key     uint64
	insight models.AssignmentInsight
	valid   bool
}

func NewInsightMemo() *InsightMemo {
	return &InsightMemo{}
}

// Insight returns the memoized insight for the collection, recomputing
// only when the collection content changed since the previous call.
func (m *InsightMemo) Insight(assignments []models.Assignment) models.AssignmentInsight {
	key := insightKey(assignments)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.key == key {
		return m.insight
	}

	m.insight = ComputeInsight(assignments)
	m.key = key
	m.valid = true
	return m.insight
}

// Reset drops the memoized state.
func (m *InsightMemo) Reset() {
	m.mu.Lock()
	m.valid = false
	m.mu.Unlock()
}

// insightKey hashes the fields the insight depends on, order sensitive.
func insightKey(assignments []models.Assignment) uint64 {
	h := fnv.New64a()
	for _, a := range assignments {
		h.Write([]byte(a.ID))
		h.Write([]byte{'|'})
		h.Write([]byte(a.Status))
		h.Write([]byte{'|'})
		if a.Score != nil {
			h.Write([]byte(strconv.FormatFloat(*a.Score, 'f', -1, 64)))
		}
		h.Write([]byte{0x1e})
	}
	return h.Sum64()
}

// TokenCache memoizes NameTokens results. The same few teacher names
// repeat across subjects, timetable slots and assignments, so one
// reconciliation pass would otherwise re-derive identical token sets many
// times over.
type TokenCache struct {
	mu      sync.Mutex
	maxSize int
	tokens  map[string]TokenSet
}

// NewTokenCache builds a cache bounded to maxSize distinct names; zero or
// negative picks the default bound.
func NewTokenCache(maxSize int) *TokenCache {
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &TokenCache{maxSize: maxSize, tokens: make(map[string]TokenSet)}
}

// Tokens returns the cached token set for name, deriving it on miss.
func (c *TokenCache) Tokens(name string) TokenSet {
	c.mu.Lock()
	defer c.mu.Unlock()

	if set, ok := c.tokens[name]; ok {
		return set
	}

	if len(c.tokens) >= c.maxSize {
		// drop everything rather than tracking eviction order
		c.tokens = make(map[string]TokenSet, c.maxSize)
	}

	set := NameTokens(name)
	c.tokens[name] = set
	return set
}
