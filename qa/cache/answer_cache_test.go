package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andyjacy/aicommonplatform/qa"
)

// TestKey_Normalization tests that trivially re-typed questions share a key.
func TestKey_Normalization(t *testing.T) {
	testCases := []struct {
		name string
		a    string
		b    string
		same bool
	}{
		{"identical", "销售额是多少", "销售额是多少", true},
		{"surrounding whitespace", "  销售额是多少  ", "销售额是多少", true},
		{"letter case", "What Is The Revenue", "what is the revenue", true},
		{"different questions", "销售额是多少", "员工总数是多少", false},
		{"interior whitespace preserved", "a b", "ab", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.same {
				assert.Equal(t, Key(tc.a), Key(tc.b))
			} else {
				assert.NotEqual(t, Key(tc.a), Key(tc.b))
			}
		})
	}
}

// TestKey_Shape tests that keys are hex-encoded SHA-256 digests.
func TestKey_Shape(t *testing.T) {
	assert.Len(t, Key("销售额是多少"), 64)
}

// TestAnswerCache_RoundTrip tests storing and retrieving answers.
func TestAnswerCache_RoundTrip(t *testing.T) {
	cache := NewAnswerCache(10, time.Minute)

	answer := qa.Answer{
		Text:       "Q1销售额为5000万元",
		Sources:    []string{"erp_system", "sales_report_2026.pdf"},
		Confidence: 0.95,
	}
	cache.Set("今年Q1的销售额是多少?", answer)

	got, ok := cache.Get("  今年q1的销售额是多少?  ")
	require.True(t, ok, "normalized question should hit")
	assert.Equal(t, answer, got)
	assert.Equal(t, 1, cache.Size())

	_, ok = cache.Get("员工总数是多少")
	assert.False(t, ok)
}

// TestAnswerCache_TTL tests that cached answers expire.
func TestAnswerCache_TTL(t *testing.T) {
	cache := NewAnswerCache(10, 50*time.Millisecond)

	cache.Set("q", qa.Answer{Text: "a"})
	time.Sleep(60 * time.Millisecond)

	_, ok := cache.Get("q")
	assert.False(t, ok, "answer should expire after TTL")
}

// TestAnswerCache_Bounded tests that the cache never exceeds its capacity.
func TestAnswerCache_Bounded(t *testing.T) {
	cache := NewAnswerCache(3, time.Minute)

	cache.Set("q1", qa.Answer{Text: "a1"})
	cache.Set("q2", qa.Answer{Text: "a2"})
	cache.Set("q3", qa.Answer{Text: "a3"})
	cache.Set("q4", qa.Answer{Text: "a4"})

	assert.Equal(t, 3, cache.Size())

	_, ok := cache.Get("q1")
	assert.False(t, ok, "oldest answer should be evicted")
	_, ok = cache.Get("q4")
	assert.True(t, ok)
}
