package sentiment

import (
	"strings"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

// ------------------------------------------------------------------
// Keyword-based headline scorer (offline, deterministic).
// The news collaborator runs every fetched item through ScoreItem
// before it is stored; the aggregator itself only consumes scores.
// ------------------------------------------------------------------

// term is one lexicon entry. Positive weights are bullish, negative bearish.
type term struct {
	word   string
	weight float64
}

// lexicon is matched on whole words (see containsWord), so "rise" does not
// fire on "surprise" and "gain" does not fire on "against".
var lexicon = []term{
	{"bullish", 0.7}, {"rally", 0.6}, {"rallie", 0.6}, {"surge", 0.7},
	{"upbeat", 0.5}, {"positive", 0.4}, {"growth", 0.4}, {"upgrade", 0.6},
	{"outperform", 0.6}, {"gain", 0.4}, {"rise", 0.3}, {"rose", 0.3},
	{"strong", 0.4}, {"recovery", 0.5}, {"record high", 0.7},
	{"all-time high", 0.7}, {"beat", 0.5}, {"optimistic", 0.5},
	{"rebound", 0.5}, {"expansion", 0.4}, {"rate cut", 0.4},
	{"soft landing", 0.5}, {"upturn", 0.5},

	{"bearish", -0.7}, {"crash", -0.8}, {"plunge", -0.7}, {"slump", -0.6},
	{"slide", -0.5}, {"negative", -0.4}, {"downgrade", -0.6},
	{"underperform", -0.6}, {"selloff", -0.7}, {"sell-off", -0.7},
	{"weak", -0.4}, {"decline", -0.5}, {"fall", -0.4}, {"fell", -0.4},
	{"drop", -0.4}, {"correction", -0.5}, {"recession", -0.6},
	{"default", -0.7}, {"fear", -0.5}, {"worry", -0.4}, {"worries", -0.4},
	{"concern", -0.3}, {"pessimistic", -0.5}, {"layoff", -0.5},
	{"bubble", -0.4}, {"tumble", -0.6},
}

// ScoreHeadline returns the net tone of text in [-1, 1]: the bullish minus
// bearish keyword weight over their sum. Text with no lexicon hit scores 0.
func ScoreHeadline(text string) float64 {
	lower := strings.ToLower(text)
	var bull, bear float64
	for _, t := range lexicon {
		if !containsWord(lower, t.word) {
			continue
		}
		if t.weight > 0 {
			bull += t.weight
		} else {
			bear -= t.weight
		}
	}
	if bull+bear == 0 {
		return 0
	}
	return (bull - bear) / (bull + bear)
}

// ScoreItem returns a copy of item with Score set from its title and summary.
func ScoreItem(item models.NewsItem) models.NewsItem {
	text := item.Title
	if item.Summary != "" {
		text += " " + item.Summary
	}
	item.Score = ScoreHeadline(text)
	return item
}
