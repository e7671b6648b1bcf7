// Package websearch provides the live web-search fallback used when document
// retrieval cannot answer a question on its own.
//
// Two backends are supported: a SearXNG instance queried over its JSON API
// (preferred, self-hosted) and the DuckDuckGo HTML endpoint scraped with
// goquery. Search failures degrade to an empty result set, a chat reply must
// never fail because the web was unreachable.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/docchat/docchat/internal/log"
)

const (
	// DefaultMaxResults caps how many results one query returns.
	DefaultMaxResults = 8

	// minSnippetChars drops low-quality results with trivial snippets.
	minSnippetChars = 20

	// maxResponseSize bounds how much of a backend response is read.
	maxResponseSize = 4 << 20

	duckduckgoURL  = "https://html.duckduckgo.com/html/"
	requestTimeout = 15 * time.Second
)

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"link"`
	Snippet string `json:"snippet"`
}

// Client queries a search backend. The zero value is not usable, construct
// with NewClient.
type Client struct {
	httpClient *http.Client
	searxngURL string
	ddgURL     string
	maxResults int
	logger     log.Logger
}

// NewClient creates a search client. searxngURL selects the backend: a
// non-empty base URL uses that SearXNG instance, empty falls back to the
// DuckDuckGo HTML endpoint. maxResults <= 0 uses DefaultMaxResults.
func NewClient(searxngURL string, maxResults int, logger log.Logger) *Client {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		searxngURL: strings.TrimRight(searxngURL, "/"),
		ddgURL:     duckduckgoURL,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Search runs the query against the configured backend. Results with
// snippets shorter than 20 characters are dropped, and at most the
// configured maximum is returned.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	var (
		results []Result
		err     error
	)
	if c.searxngURL != "" {
		results, err = c.searchSearXNG(ctx, query)
	} else {
		results, err = c.searchDuckDuckGo(ctx, query)
	}
	if err != nil {
		return nil, err
	}

	filtered := results[:0]
	for _, r := range results {
		r.Snippet = strings.TrimSpace(r.Snippet)
		r.Title = strings.TrimSpace(r.Title)
		if len(r.Snippet) < minSnippetChars {
			continue
		}
		filtered = append(filtered, r)
		if len(filtered) >= c.maxResults {
			break
		}
	}

	c.logger.Debug("web search completed", "query", query, "results", len(filtered))
	return filtered, nil
}

// searxngResponse mirrors the fields we need from the SearXNG JSON API.
type searxngResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (c *Client) searchSearXNG(ctx context.Context, query string) ([]Result, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&format=json", c.searxngURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building searxng request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying searxng: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searxng returned status %d", resp.StatusCode)
	}

	var parsed searxngResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding searxng response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return results, nil
}

func (c *Client) searchDuckDuckGo(ctx context.Context, query string) ([]Result, error) {
	endpoint := c.ddgURL + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building duckduckgo request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; docchat/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying duckduckgo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("parsing duckduckgo response: %w", err)
	}

	var results []Result
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		link := s.Find(".result__a")
		href, _ := link.Attr("href")
		results = append(results, Result{
			Title:   link.Text(),
			URL:     cleanDuckDuckGoURL(href),
			Snippet: s.Find(".result__snippet").Text(),
		})
	})
	return results, nil
}

// cleanDuckDuckGoURL unwraps the redirect links the HTML endpoint returns
// (//duckduckgo.com/l/?uddg=<encoded target>).
func cleanDuckDuckGoURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// Format renders results as the web-search context block for the generation
// capability. No results yields an empty string so the block can be
// concatenated unconditionally.
func Format(results []Result) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("### WEB SEARCH RESULTS (Current Information):\n")
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. **%s**\n   %s\n   Source: %s", i+1, r.Title, r.Snippet, r.URL)
	}
	b.WriteString("\n\n")
	return b.String()
}
