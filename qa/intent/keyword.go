package intent

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// defaultKeywords maps each intent to its trigger keywords. Mixed Chinese and
// English terms match the vocabulary of the business systems behind the
// platform.
var defaultKeywords = map[Intent][]string{
	IntentSales:     {"销售部", "销售数据", "销售额", "销售目标", "业绩", "收入", "营收", "销售量"},
	IntentHR:        {"员工", "人力资源", "薪资", "福利", "考勤", "招聘", "hr", "人事"},
	IntentTechnical: {"系统", "架构", "技术", "代码", "开发", "编程", "api", "接口"},
	IntentFinancial: {"财务", "预算", "成本", "利润", "账户", "财务报表", "收支"},
	IntentCustomer:  {"客户", "客服", "订单", "投诉", "反馈", "咨询"},
}

// substringFallbackMinLen is the minimum keyword length (in runes) for which a
// plain substring match is attempted after the boundary-aware match fails.
// Short keywords only fire on exact token boundaries to limit false positives.
const substringFallbackMinLen = 3

type candidate struct {
	keyword  string
	intent   Intent
	length   int
	boundary *regexp.Regexp
}

// KeywordClassifier implements Classifier with weighted keyword matching.
// Candidates are checked longest-first so longer keywords win ties and short
// substrings do not shadow more specific matches.
type KeywordClassifier struct {
	candidates []candidate
}

// NewKeywordClassifier creates a classifier with the default keyword table.
func NewKeywordClassifier() *KeywordClassifier {
	return NewKeywordClassifierWithKeywords(defaultKeywords)
}

// NewKeywordClassifierWithKeywords creates a classifier with a custom keyword
// table. Keywords are matched case-insensitively.
func NewKeywordClassifierWithKeywords(keywords map[Intent][]string) *KeywordClassifier {
	c := &KeywordClassifier{}
	for it, kws := range keywords {
		for _, kw := range kws {
			kw = strings.ToLower(kw)
			c.candidates = append(c.candidates, candidate{
				keyword: kw,
				intent:  it,
				length:  utf8.RuneCountInString(kw),
				// Keyword flanked by start/end of string, whitespace,
				// or CJK/ASCII punctuation.
				boundary: regexp.MustCompile(`(^|[\s，。！？,.!?、;；:：])` + regexp.QuoteMeta(kw) + `($|[\s，。！？,.!?、;；:：])`),
			})
		}
	}
	// Longest first; keyword text breaks ties for deterministic ordering.
	sort.Slice(c.candidates, func(i, j int) bool {
		if c.candidates[i].length != c.candidates[j].length {
			return c.candidates[i].length > c.candidates[j].length
		}
		return c.candidates[i].keyword > c.candidates[j].keyword
	})
	return c
}

// Classify returns the intent of the first matching candidate, preferring
// boundary-aware matches and falling back to plain substring matches for
// keywords of at least substringFallbackMinLen runes. Defaults to
// IntentGeneral when nothing matches.
func (c *KeywordClassifier) Classify(question string) Intent {
	lower := strings.ToLower(question)
	for _, cand := range c.candidates {
		if cand.boundary.MatchString(lower) {
			return cand.intent
		}
		if cand.length >= substringFallbackMinLen && strings.Contains(lower, cand.keyword) {
			return cand.intent
		}
	}
	return IntentGeneral
}
