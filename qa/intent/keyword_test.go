package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestKeywordClassifier_Intents tests intent recognition over the default
// keyword table.
func TestKeywordClassifier_Intents(t *testing.T) {
	classifier := NewKeywordClassifier()

	testCases := []struct {
		question string
		expected Intent
	}{
		{"今年Q1的销售额是多少?", IntentSales},
		{"销售数据在哪里看", IntentSales},
		{"查询销售目标完成情况", IntentSales},
		{"人力资源部门的招聘流程", IntentHR},
		{"hr 政策有更新吗", IntentHR},
		{"api 接口文档在哪里", IntentTechnical},
		{"财务报表怎么导出", IntentFinancial},
		{"投诉：如何处理", IntentCustomer},
		{"火星殖民计划", IntentGeneral},
		{"今天天气怎么样", IntentGeneral},
		{"", IntentGeneral},
	}

	for _, tc := range testCases {
		got := classifier.Classify(tc.question)
		assert.Equal(t, tc.expected, got, "question %q", tc.question)
	}
}

// TestKeywordClassifier_CaseInsensitive tests that English keywords match
// regardless of letter case.
func TestKeywordClassifier_CaseInsensitive(t *testing.T) {
	classifier := NewKeywordClassifier()

	assert.Equal(t, IntentTechnical, classifier.Classify("API 网关怎么配置"))
	assert.Equal(t, IntentHR, classifier.Classify("HR 政策在哪里查"))
}

// TestKeywordClassifier_BoundaryVsSubstring tests that short keywords require
// token boundaries while longer keywords fall back to substring matching.
func TestKeywordClassifier_BoundaryVsSubstring(t *testing.T) {
	classifier := NewKeywordClassifier()

	t.Run("short keyword inside a word does not match", func(t *testing.T) {
		// "thrill" contains "hr" but not on a boundary.
		assert.Equal(t, IntentGeneral, classifier.Classify("thrill seekers unite"))
	})

	t.Run("short keyword on a boundary matches", func(t *testing.T) {
		assert.Equal(t, IntentHR, classifier.Classify("hr 请假流程"))
	})

	t.Run("long keyword matches as substring", func(t *testing.T) {
		// "销售额" is embedded with no surrounding punctuation.
		assert.Equal(t, IntentSales, classifier.Classify("本季度销售额增长了吗"))
	})
}

// TestKeywordClassifier_LongestMatchWins tests that longer keywords take
// priority when several candidates could match.
func TestKeywordClassifier_LongestMatchWins(t *testing.T) {
	classifier := NewKeywordClassifierWithKeywords(map[Intent][]string{
		IntentSales:     {"销售"},
		IntentFinancial: {"销售预算"},
	})

	// Both keywords are substrings of the input; the 4-rune keyword is
	// checked first.
	assert.Equal(t, IntentFinancial, classifier.Classify("明年的销售预算是多少"))
}

// TestKeywordClassifier_CustomKeywords tests a custom keyword table.
func TestKeywordClassifier_CustomKeywords(t *testing.T) {
	classifier := NewKeywordClassifierWithKeywords(map[Intent][]string{
		IntentTechnical: {"kubernetes", "部署流程"},
	})

	assert.Equal(t, IntentTechnical, classifier.Classify("Kubernetes 集群怎么扩容"))
	assert.Equal(t, IntentTechnical, classifier.Classify("新服务的部署流程是什么"))
	assert.Equal(t, IntentGeneral, classifier.Classify("今年Q1的销售额是多少?"))
}
