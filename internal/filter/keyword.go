package filter

import (
	"context"
	"regexp"

	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/model"
)

// Breakdown keys emitted by the keyword filter.
const (
	KeyHighPriority   = "high_priority_keywords"
	KeyMediumPriority = "medium_priority_keywords"
	KeyLowPriority    = "low_priority_keywords"
)

// Fixed vocabulary of IT-operations relevance, tiered by urgency. Security
// incidents and major-vendor terms score highest; general tech vocabulary
// only provides weak signal.
var (
	highPriorityKeywords = []string{
		"security", "vulnerability", "breach", "hack", "cyber",
		"outage", "downtime", "crash", "failure", "bug",
		"cve", "exploit", "malware", "ransomware", "phishing",
		"patch", "update", "fix", "critical", "urgent",
		"aws", "amazon web services", "azure", "microsoft azure",
		"gcp", "google cloud", "office 365", "o365", "github", "zoom",
	}
	mediumPriorityKeywords = []string{
		"update", "upgrade", "maintenance", "performance",
		"compatibility", "integration", "deployment",
		"monitoring", "backup", "recovery", "disaster",
		"compliance", "regulation", "policy", "governance",
	}
	lowPriorityKeywords = []string{
		"technology", "software", "hardware", "cloud",
		"data", "network", "server", "database", "api",
		"development", "testing", "release", "version",
	}
)

// Per-occurrence weight and cap for each tier. The item score is the maximum
// category score, not the sum: one strong high-priority hit must not be
// diluted by weak signal elsewhere.
const (
	highWeight, highCap     = 0.3, 1.0
	mediumWeight, mediumCap = 0.2, 0.8
	lowWeight, lowCap       = 0.1, 0.5
)

// KeywordFilter scores items by counting whole-word keyword occurrences in
// the lower-cased title+body text. Word-boundary matching avoids false
// positives like "cloud" inside "clouded".
type KeywordFilter struct {
	high   []*regexp.Regexp
	medium []*regexp.Regexp
	low    []*regexp.Regexp
	log    *zap.Logger
}

// NewKeywordFilter compiles the keyword patterns once up front.
func NewKeywordFilter(log *zap.Logger) *KeywordFilter {
	return &KeywordFilter{
		high:   compileKeywords(highPriorityKeywords),
		medium: compileKeywords(mediumPriorityKeywords),
		low:    compileKeywords(lowPriorityKeywords),
		log:    log,
	}
}

func compileKeywords(keywords []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return patterns
}

func (f *KeywordFilter) Name() string { return "keyword" }

// Score scores every item; keyword matching cannot fail, so the error is
// always nil.
func (f *KeywordFilter) Score(ctx context.Context, items []model.Item) ([]model.ScoredItem, error) {
	out := make([]model.ScoredItem, 0, len(items))
	for _, item := range items {
		breakdown, _ := f.Breakdown(ctx, item)
		scored, err := model.NewScoredItem(item, maxValue(breakdown), breakdown)
		if err != nil {
			return nil, err
		}
		out = append(out, scored)
	}
	f.log.Debug("keyword filter scored batch", zap.Int("items", len(out)))
	return out, nil
}

// Breakdown reports the three category scores for one item.
func (f *KeywordFilter) Breakdown(_ context.Context, item model.Item) (map[string]float64, error) {
	text := item.Text()
	return map[string]float64{
		KeyHighPriority:   capped(float64(countMatches(text, f.high))*highWeight, highCap),
		KeyMediumPriority: capped(float64(countMatches(text, f.medium))*mediumWeight, mediumCap),
		KeyLowPriority:    capped(float64(countMatches(text, f.low))*lowWeight, lowCap),
	}, nil
}

func countMatches(text string, patterns []*regexp.Regexp) int {
	count := 0
	for _, p := range patterns {
		count += len(p.FindAllStringIndex(text, -1))
	}
	return count
}

func capped(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}

func maxValue(m map[string]float64) float64 {
	var best float64
	for _, v := range m {
		if v > best {
			best = v
		}
	}
	return best
}
