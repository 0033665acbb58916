package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paper-tiger/internal/sentiment"

	"go.opentelemetry.io/otel/trace"
)

const newsBaseURL = "https://feeds.finance.yahoo.com"

// NewsProvider fetches per-symbol headlines from the Yahoo Finance RSS
// feed for the sentiment scorer.
type NewsProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewNewsProvider(tracer trace.Tracer) *NewsProvider {
	return &NewsProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: newsBaseURL,
		tracer:  tracer,
	}
}

// FetchNews returns up to maxItems recent headlines for the symbol.
// Feed failures surface as errors; the caller decides whether to fall
// back to technical-only signals.
func (p *NewsProvider) FetchNews(ctx context.Context, symbol string, maxItems int) ([]sentiment.NewsItem, error) {
	_, span := p.tracer.Start(ctx, "news.fetch-news")
	defer span.End()

	if maxItems <= 0 {
		maxItems = 20
	}

	u := fmt.Sprintf("%s/rss/2.0/headline?s=%s&region=US&lang=en-US",
		p.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("news fetch error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var rss struct {
		Channel struct {
			Items []struct {
				Title       string `xml:"title"`
				Description string `xml:"description"`
				PubDate     string `xml:"pubDate"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, fmt.Errorf("decode news payload: %w", err)
	}

	items := make([]sentiment.NewsItem, 0, len(rss.Channel.Items))
	for _, row := range rss.Channel.Items {
		if len(items) >= maxItems {
			break
		}
		title := sanitizeText(row.Title, 300)
		if title == "" {
			continue
		}
		publishedAt := parseNewsDate(row.PubDate)
		if publishedAt.IsZero() {
			publishedAt = time.Now().UTC()
		}
		items = append(items, sentiment.NewsItem{
			ID:          int64(len(items) + 1),
			Symbol:      symbol,
			Title:       title,
			Excerpt:     sanitizeText(htmlStrip(row.Description), 420),
			PublishedAt: publishedAt,
		})
	}

	return items, nil
}

func parseNewsDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func sanitizeText(in string, maxLen int) string {
	out := strings.Join(strings.Fields(strings.TrimSpace(in)), " ")
	if maxLen > 0 {
		// Truncate on rune boundaries, headlines are not always ASCII.
		if runes := []rune(out); len(runes) > maxLen {
			out = string(runes[:maxLen])
		}
	}
	return out
}

func htmlStrip(in string) string {
	if strings.TrimSpace(in) == "" {
		return ""
	}
	var b strings.Builder
	inside := false
	for _, r := range in {
		switch r {
		case '<':
			inside = true
			continue
		case '>':
			inside = false
			continue
		}
		if !inside {
			b.WriteRune(r)
		}
	}
	return b.String()
}
