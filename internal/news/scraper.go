package news

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"tradesense/internal/api"
	"tradesense/internal/logger"
	"tradesense/internal/types"
)

// Scraper collects headlines for a ticker from financial news sources.
type Scraper struct {
	sources []Source
	client  *api.Client
	timeout time.Duration
}

// Source describes one news site to scrape.
type Source struct {
	Name       string
	BaseURL    string
	SearchPath string // "{ticker}" is substituted
	Selectors  HeadlineSelectors
	RateLimit  time.Duration
}

// HeadlineSelectors are the CSS selectors for extracting headline data.
type HeadlineSelectors struct {
	Container string
	Title     string
	URL       string
	Published string
}

// NewScraper creates a scraper with the default sources.
func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		sources: defaultSources(),
		client: api.NewClient(
			api.WithTimeout(timeout),
			api.WithHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		),
		timeout: timeout,
	}
}

func defaultSources() []Source {
	return []Source{
		{
			Name:       "YahooFinance",
			BaseURL:    "https://finance.yahoo.com",
			SearchPath: "/quote/{ticker}/news",
			Selectors: HeadlineSelectors{
				Container: "li.stream-item",
				Title:     "h3 a, h2 a",
				URL:       "h3 a, h2 a",
				Published: "div.publishing",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "MarketWatch",
			BaseURL:    "https://www.marketwatch.com",
			SearchPath: "/investing/stock/{ticker}",
			Selectors: HeadlineSelectors{
				Container: "div.article__content",
				Title:     "a.link",
				URL:       "a.link",
				Published: "span.article__timestamp",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

// ScrapeHeadlines fetches headlines for a ticker from every source.
// Per-source failures are logged and skipped.
func (s *Scraper) ScrapeHeadlines(ctx context.Context, ticker string, maxHeadlines int) ([]types.NewsHeadline, error) {
	logger.Info(ctx, "Starting headline scraping", "ticker", ticker, "sources", len(s.sources))

	all := []types.NewsHeadline{}
	perSource := maxHeadlines / len(s.sources)
	if perSource < 1 {
		perSource = 1
	}

	for _, source := range s.sources {
		headlines, err := s.scrapeSource(ctx, source, ticker, perSource)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", source.Name, "ticker", ticker)
			continue
		}
		all = append(all, headlines...)

		time.Sleep(source.RateLimit)
	}

	logger.Info(ctx, "Headline scraping completed", "ticker", ticker, "headlines", len(all))
	return all, nil
}

func (s *Scraper) scrapeSource(ctx context.Context, source Source, ticker string, maxHeadlines int) ([]types.NewsHeadline, error) {
	headlines := []types.NewsHeadline{}

	c := colly.NewCollector(
		colly.AllowedDomains(hostOf(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnHTML(source.Selectors.Container, func(e *colly.HTMLElement) {
		if len(headlines) >= maxHeadlines {
			return
		}

		title := strings.TrimSpace(e.ChildText(source.Selectors.Title))
		if title == "" {
			return
		}
		headlineURL := e.ChildAttr(source.Selectors.URL, "href")
		if headlineURL == "" {
			return
		}
		if !strings.HasPrefix(headlineURL, "http") {
			headlineURL = source.BaseURL + headlineURL
		}

		headlines = append(headlines, types.NewsHeadline{
			Title:       title,
			URL:         headlineURL,
			Source:      source.Name,
			PublishedAt: strings.TrimSpace(e.ChildText(source.Selectors.Published)),
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "source", source.Name, "url", r.Request.URL.String())
	})

	searchURL := source.BaseURL + strings.ReplaceAll(source.SearchPath, "{ticker}", url.PathEscape(ticker))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", searchURL, err)
	}
	c.Wait()

	return headlines, nil
}

// ScrapeGoogleNews is the fallback when the primary sources return nothing.
func (s *Scraper) ScrapeGoogleNews(ctx context.Context, ticker string, maxHeadlines int) ([]types.NewsHeadline, error) {
	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s%%20stock", url.QueryEscape(ticker))

	body, err := s.client.GET(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("google news fetch: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("google news parse: %w", err)
	}

	headlines := []types.NewsHeadline{}
	doc.Find("article").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Find("a.JtKRv").Text())
		if title == "" {
			title = strings.TrimSpace(sel.Find("h3, h4").Text())
		}
		if title == "" {
			return true
		}
		href, _ := sel.Find("a").First().Attr("href")
		if strings.HasPrefix(href, "./") {
			href = "https://news.google.com" + strings.TrimPrefix(href, ".")
		}
		headlines = append(headlines, types.NewsHeadline{
			Title:       title,
			URL:         href,
			Source:      "GoogleNews",
			PublishedAt: strings.TrimSpace(sel.Find("time").Text()),
		})
		return len(headlines) < maxHeadlines
	})

	return headlines, nil
}

func hostOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
