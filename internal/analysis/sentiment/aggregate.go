// Package sentiment turns scored news items into the sentiment factor
// snapshot: time-decayed per-category scores, recession probability,
// speculative-bubble risk and overall market tone.
package sentiment

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// Config holds aggregation weights, thresholds and keyword lists.
type Config struct {
	Decay          float64 `mapstructure:"decay"           yaml:"decay"`          // per-day weight multiplier
	UndatedWeight  float64 `mapstructure:"undated_weight"  yaml:"undated_weight"` // weight of items without a date
	LabelThreshold float64 `mapstructure:"label_threshold" yaml:"label_threshold"`
	ToneMargin     float64 `mapstructure:"tone_margin"     yaml:"tone_margin"`

	// Risk = min(min(density, DensityCap) + NegativeWeight*negShare, RiskCap)
	DensityCap     float64 `mapstructure:"density_cap"     yaml:"density_cap"`
	NegativeWeight float64 `mapstructure:"negative_weight" yaml:"negative_weight"`
	RiskCap        float64 `mapstructure:"risk_cap"        yaml:"risk_cap"`

	RecessionCategory string   `mapstructure:"recession_category" yaml:"recession_category"`
	RecessionKeywords []string `mapstructure:"recession_keywords" yaml:"recession_keywords"`
	BubbleCategory    string   `mapstructure:"bubble_category"    yaml:"bubble_category"`
	BubbleKeywords    []string `mapstructure:"bubble_keywords"    yaml:"bubble_keywords"`
	// BubbleQualifiers must also appear for a keyword hit outside the
	// bubble category to count.
	BubbleQualifiers []string `mapstructure:"bubble_qualifiers" yaml:"bubble_qualifiers"`
	BullishKeywords  []string `mapstructure:"bullish_keywords"  yaml:"bullish_keywords"`
	BearishKeywords  []string `mapstructure:"bearish_keywords"  yaml:"bearish_keywords"`
}

// DefaultConfig returns the standard aggregation parameters.
func DefaultConfig() Config {
	return Config{
		Decay:             0.9,
		UndatedWeight:     0.5,
		LabelThreshold:    0.05,
		ToneMargin:        0.15,
		DensityCap:        0.8,
		NegativeWeight:    0.15,
		RiskCap:           0.9,
		RecessionCategory: models.CategoryRecession,
		RecessionKeywords: []string{
			"recession", "downturn", "contraction", "unemployment",
			"layoffs", "jobless", "economic crisis", "depression",
			"negative growth", "gdp decline", "slowdown", "weak economy",
		},
		BubbleCategory: models.CategoryAIBubble,
		BubbleKeywords: []string{
			"bubble", "overvalued", "overvaluation", "correction",
			"crash", "ai hype", "tech bubble", "speculation",
			"unsustainable", "irrational exuberance",
		},
		BubbleQualifiers: []string{"ai", "tech", "technology", "nvidia", "artificial intelligence"},
		BullishKeywords: []string{
			"rally", "surge", "gain", "rise", "bull market",
			"positive", "growth", "expansion", "optimistic",
			"strong economy", "recovery", "upturn",
		},
		BearishKeywords: []string{
			"fall", "decline", "drop", "bear market", "crash",
			"plunge", "slump", "negative", "pessimistic",
			"weak", "concerns", "fears", "worries",
		},
	}
}

// Aggregator computes SentimentFactors from scored items.
type Aggregator struct {
	cfg Config
}

// NewAggregator creates an aggregator with the given parameters.
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Extract aggregates items as of asOf. Focus lists the categories pooled
// into Overall; an empty focus pools everything. An empty item set yields
// neutral zero scores with Unavailable set.
func (a *Aggregator) Extract(items []models.NewsItem, focus []string, asOf time.Time) models.SentimentFactors {
	sf := models.SentimentFactors{
		Categories: map[string]models.CategorySentiment{},
		Overall:    models.CategorySentiment{Category: "overall", Label: models.SentimentNeutral},
		MarketTone: models.ToneNeutral,
	}
	if len(items) == 0 {
		sf.Unavailable = true
		return sf
	}

	sorted := sortedItems(items)
	sf.TotalArticles = len(sorted)

	byCat := map[string][]models.NewsItem{}
	for _, it := range sorted {
		byCat[it.Category] = append(byCat[it.Category], it)
	}
	for cat, group := range byCat {
		sf.Categories[cat] = a.category(cat, group, asOf)
	}

	var pooled []models.NewsItem
	if len(focus) == 0 {
		pooled = sorted
	} else {
		for _, it := range sorted {
			if contains(focus, it.Category) {
				pooled = append(pooled, it)
			}
		}
	}
	sf.Overall = a.category("overall", pooled, asOf)

	sf.RecessionProbability, sf.RecessionArticles = a.keywordRisk(sorted, a.cfg.RecessionCategory, a.cfg.RecessionKeywords, nil)
	sf.BubbleRisk, sf.BubbleArticles = a.keywordRisk(sorted, a.cfg.BubbleCategory, a.cfg.BubbleKeywords, a.cfg.BubbleQualifiers)
	sf.MarketTone, sf.BullishRatio, sf.BearishRatio = a.tone(sorted)
	return sf
}

// category computes the decayed weighted mean of one group.
func (a *Aggregator) category(name string, items []models.NewsItem, asOf time.Time) models.CategorySentiment {
	cs := models.CategorySentiment{Category: name, ArticleCount: len(items), Label: models.SentimentNeutral}
	if len(items) == 0 {
		return cs
	}
	scores := make([]float64, len(items))
	weights := make([]float64, len(items))
	for i, it := range items {
		s := clamp(it.Score, -1, 1)
		scores[i] = s
		weights[i] = a.weight(it.PublishedAt, asOf)
		switch {
		case s > a.cfg.LabelThreshold:
			cs.PositiveCount++
		case s < -a.cfg.LabelThreshold:
			cs.NegativeCount++
		}
	}
	cs.WeightedScore = clamp(stat.Mean(scores, weights), -1, 1)
	cs.Label = a.label(cs.WeightedScore)
	return cs
}

func (a *Aggregator) weight(published, asOf time.Time) float64 {
	if published.IsZero() {
		return a.cfg.UndatedWeight
	}
	age := asOf.Sub(published).Hours() / 24
	if age < 0 {
		age = 0
	}
	return math.Pow(a.cfg.Decay, age)
}

func (a *Aggregator) label(score float64) models.SentimentLabel {
	switch {
	case score > a.cfg.LabelThreshold:
		return models.SentimentPositive
	case score < -a.cfg.LabelThreshold:
		return models.SentimentNegative
	}
	return models.SentimentNeutral
}

// keywordRisk scores one risk theme. An item matches when it belongs to
// the theme's category or its text hits a keyword (and a qualifier, when
// qualifiers are given). Adding a matched negative item never lowers the
// result: both the match density and the negative share are non-decreasing.
func (a *Aggregator) keywordRisk(items []models.NewsItem, category string, keywords, qualifiers []string) (float64, int) {
	matched, negative := 0, 0
	for _, it := range items {
		hit := category != "" && it.Category == category
		if !hit {
			text := strings.ToLower(it.Title + " " + it.Summary)
			hit = matchesAny(text, keywords) && (len(qualifiers) == 0 || matchesAny(text, qualifiers))
		}
		if !hit {
			continue
		}
		matched++
		if it.Score <= -a.cfg.LabelThreshold {
			negative++
		}
	}
	if matched == 0 {
		return 0, 0
	}
	density := math.Min(float64(matched)/float64(len(items)), a.cfg.DensityCap)
	negShare := float64(negative) / float64(matched)
	return math.Min(density+a.cfg.NegativeWeight*negShare, a.cfg.RiskCap), matched
}

func (a *Aggregator) tone(items []models.NewsItem) (models.MarketTone, float64, float64) {
	bull, bear := 0, 0
	for _, it := range items {
		text := strings.ToLower(it.Title + " " + it.Summary)
		if matchesAny(text, a.cfg.BullishKeywords) {
			bull++
		}
		if matchesAny(text, a.cfg.BearishKeywords) {
			bear++
		}
	}
	total := float64(len(items))
	bullRatio, bearRatio := float64(bull)/total, float64(bear)/total
	switch {
	case bullRatio > bearRatio+a.cfg.ToneMargin:
		return models.ToneBullish, bullRatio, bearRatio
	case bearRatio > bullRatio+a.cfg.ToneMargin:
		return models.ToneBearish, bullRatio, bearRatio
	}
	return models.ToneNeutral, bullRatio, bearRatio
}

// sortedItems returns a copy ordered by publish time then title, so the
// floating-point sums do not depend on feed order.
func sortedItems(items []models.NewsItem) []models.NewsItem {
	out := append([]models.NewsItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.Before(out[j].PublishedAt)
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// matchesAny reports whether text contains any keyword as a whole word.
func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if containsWord(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// containsWord finds word in text with non-letter boundaries on both sides,
// so "ai" does not match "said". Plural and verb suffixes are accepted.
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)
		if boundaryBefore(text, i) && boundaryAfter(text, end) {
			return true
		}
		start = i + 1
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r := rune(text[i-1])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(text string, end int) bool {
	rest := text[end:]
	for _, suffix := range []string{"es", "s", "ed", "ing"} {
		if strings.HasPrefix(rest, suffix) {
			rest = rest[len(suffix):]
			break
		}
	}
	if rest == "" {
		return true
	}
	r := rune(rest[0])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
