package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/indexadvisor/internal/analysis/sentiment"
	"github.com/seenimoa/indexadvisor/internal/infra"
	"github.com/seenimoa/indexadvisor/pkg/models"
)

// ErrUnknownCategory is returned for a news category with no feed.
var ErrUnknownCategory = errors.New("unknown news category")

// GoogleNewsURL is the Google News RSS search endpoint.
const GoogleNewsURL = "https://news.google.com/rss/search"

// YahooNewsURL is the Yahoo Finance headline feed.
const YahooNewsURL = "https://finance.yahoo.com/news/rssindex"

// DefaultNewsQueries maps each category to its Google News search query.
// Categories with an empty query use the Yahoo Finance headline feed.
var DefaultNewsQueries = map[string]string{
	models.CategorySP500:         "S&P 500 stock market",
	models.CategoryCW8:           "MSCI World index global stocks",
	models.CategoryMarketGeneral: "",
	models.CategoryRecession:     "recession economy unemployment GDP",
	models.CategoryAIBubble:      "AI artificial intelligence bubble tech stocks valuation",
	models.CategoryFedPolicy:     "Federal Reserve Fed interest rates policy",
	models.CategoryECBPolicy:     "European Central Bank ECB euro policy",
	models.CategoryDollarEUR:     "dollar euro EUR/USD exchange rate currency",
	models.CategoryM2Liquidity:   "money supply liquidity M2 monetary policy",
}

// News fetches category feeds and scores every headline.
type News struct {
	client    *infra.Client
	cache     *infra.Cache
	queries   map[string]string
	googleURL string
	yahooURL  string
	maxItems  int
}

// NewNews creates a news source with DefaultNewsQueries. When
// opts.BaseURL is set it replaces both feed endpoints.
func NewNews(opts Options) *News {
	return &News{
		client:    opts.client(),
		cache:     infra.NewCache(opts.CacheTTL),
		queries:   DefaultNewsQueries,
		googleURL: opts.baseURL(GoogleNewsURL),
		yahooURL:  opts.baseURL(YahooNewsURL),
		maxItems:  30,
	}
}

// Name returns the data source name.
func (n *News) Name() string { return "News RSS" }

// Categories returns the categories with a configured feed, sorted.
func (n *News) Categories() []string {
	out := make([]string, 0, len(n.queries))
	for c := range n.queries {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// News returns the scored items of one category published at or after
// since, newest first. Undated items are kept. Duplicate headlines are
// dropped.
func (n *News) News(ctx context.Context, category string, since time.Time) ([]models.NewsItem, error) {
	feedURL, err := n.feedURL(category)
	if err != nil {
		return nil, err
	}

	items, ok := n.cachedFeed(feedURL)
	if !ok {
		items, err = n.fetchRSS(ctx, feedURL, category)
		if err != nil {
			return nil, err
		}
		n.cache.Set("news:"+feedURL, items)
	}

	out := make([]models.NewsItem, 0, len(items))
	for _, it := range items {
		if !it.PublishedAt.IsZero() && it.PublishedAt.Before(since) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (n *News) cachedFeed(feedURL string) ([]models.NewsItem, bool) {
	cached, ok := n.cache.Get("news:" + feedURL)
	if !ok {
		return nil, false
	}
	return cached.([]models.NewsItem), true
}

func (n *News) feedURL(category string) (string, error) {
	q, ok := n.queries[category]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	if q == "" {
		return n.yahooURL, nil
	}
	v := url.Values{}
	v.Set("q", q)
	v.Set("hl", "en-US")
	v.Set("gl", "US")
	v.Set("ceid", "US:en")
	return n.googleURL + "?" + v.Encode(), nil
}

// fetchRSS parses a feed and returns deduplicated, scored items.
func (n *News) fetchRSS(ctx context.Context, feedURL, category string) ([]models.NewsItem, error) {
	body, err := n.client.Get(ctx, feedURL, map[string]string{
		"Accept": "application/rss+xml, application/xml, text/xml",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch RSS %s: %w", category, err)
	}
	defer body.Close()

	// gofeed.Parser lazily installs its translators, so one is not safe
	// to share between concurrent fetches.
	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", category, err)
	}

	google := feedURL != n.yahooURL
	seen := make(map[string]bool, len(feed.Items))
	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, fi := range feed.Items {
		title := strings.TrimSpace(fi.Title)
		if title == "" {
			continue
		}
		headline, source := title, ""
		if google {
			headline, source = splitSource(title)
		}
		key := titleKey(headline)
		if seen[key] {
			continue
		}
		seen[key] = true

		if source == "" {
			source = feed.Title
		}
		it := models.NewsItem{
			Title:    headline,
			URL:      fi.Link,
			Source:   source,
			Summary:  cleanHTML(fi.Description),
			Category: category,
		}
		if fi.PublishedParsed != nil {
			it.PublishedAt = fi.PublishedParsed.UTC()
		}
		items = append(items, sentiment.ScoreItem(it))
		if n.maxItems > 0 && len(items) >= n.maxItems {
			break
		}
	}
	sortItemsByDate(items)
	return items, nil
}

// --- Internal helpers ---

// titleKey is the de-duplication key: the first 50 characters of the
// lower-cased title.
func titleKey(title string) string {
	r := []rune(strings.ToLower(strings.TrimSpace(title)))
	if len(r) > 50 {
		r = r[:50]
	}
	return string(r)
}

// splitSource splits Google News titles of the form "Headline - Publisher".
func splitSource(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 || i+3 >= len(title) {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// sortItemsByDate sorts items newest first; undated items go last.
func sortItemsByDate(items []models.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.After(b)
	})
}
