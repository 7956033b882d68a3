package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	appLog "vestacal/internal/log"
)

// Article is one RSS entry: a headline and where it points.
type Article struct {
	Title string
	Link  string
}

// Fetcher pulls headlines from an RSS feed and article text from the web.
type Fetcher struct {
	parser     *gofeed.Parser
	httpClient *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		parser: gofeed.NewParser(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Headlines fetches the feed and returns its entries in feed order.
func (f *Fetcher) Headlines(ctx context.Context, feedURL string) ([]Article, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		articles = append(articles, Article{Title: item.Title, Link: item.Link})
	}

	appLog.Debug("fetched feed", "url", feedURL, "articles", len(articles))
	return articles, nil
}

// ArticleText fetches an article page and returns its paragraph text
// joined with spaces. A simple extraction; sites with unusual markup will
// yield noisy text.
func (f *Fetcher) ArticleText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch article: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse article: %w", err)
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, s.Text())
	})

	return strings.Join(paragraphs, " "), nil
}
