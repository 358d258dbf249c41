package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// DefaultSearchEndpoint is the DuckDuckGo HTML results page.
const DefaultSearchEndpoint = "https://html.duckduckgo.com/html/"

// SearchConfig configures SearchWeb.
type SearchConfig struct {
	Endpoint     string
	MaxResults   int
	Timeout      time.Duration
	Truncation   int
	UserAgent    string
	FetchContent bool
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// DefaultSearchConfig returns the stock search settings.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Endpoint:     DefaultSearchEndpoint,
		MaxResults:   5,
		Timeout:      10 * time.Second,
		Truncation:   1000,
		UserAgent:    "Mozilla/5.0 (compatible; heavy)",
		FetchContent: true,
	}
}

// SearchHit is one web search result.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Content string `json:"content,omitempty"`
}

// SearchWeb queries DuckDuckGo and optionally fetches each result page.
type SearchWeb struct {
	cfg SearchConfig
}

// NewSearchWeb creates the search tool, filling unset fields with defaults.
func NewSearchWeb(cfg SearchConfig) *SearchWeb {
	def := DefaultSearchConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = def.MaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Truncation <= 0 {
		cfg.Truncation = def.Truncation
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	return &SearchWeb{cfg: cfg}
}

func (*SearchWeb) Name() string { return "search_web" }

func (*SearchWeb) Description() string {
	return "Search the web for current information. Returns titles, URLs, snippets and extracted page text."
}

func (*SearchWeb) Parameters() map[string]any {
	return schema(map[string]any{
		"query":       prop("string", "Search query"),
		"max_results": prop("integer", "Maximum number of results (default: 5)"),
	}, "query")
}

func (s *SearchWeb) Execute(ctx context.Context, args map[string]any) (any, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("Search failed: empty query")
	}
	limit, err := optionalInt(args, "max_results", s.cfg.MaxResults)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.MaxResults
	}

	hits, err := s.search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("Search failed: %w", err)
	}

	if s.cfg.FetchContent {
		for i := range hits {
			text, err := s.fetchText(ctx, hits[i].URL)
			if err != nil {
				hits[i].Content = fmt.Sprintf("Could not fetch content: %v", err)
				continue
			}
			hits[i].Content = text
		}
	}

	return map[string]any{
		"query":   query,
		"results": hits,
	}, nil
}

func (s *SearchWeb) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	resp, err := s.cfg.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}

func (s *SearchWeb) search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	u, err := url.Parse(s.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	resp, err := s.get(ctx, u.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return parseResults(doc, limit), nil
}

// parseResults walks a DuckDuckGo results page. Each result is a
// "result__a" anchor followed by a "result__snippet" element.
func parseResults(doc *html.Node, limit int) []SearchHit {
	var hits []SearchHit
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(hits) >= limit && hits[len(hits)-1].Snippet != "" {
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a"):
				if len(hits) < limit {
					hits = append(hits, SearchHit{
						Title: collapseSpace(textOf(n)),
						URL:   resolveResultURL(attr(n, "href")),
					})
				}
				return
			case hasClass(n, "result__snippet"):
				if len(hits) > 0 && hits[len(hits)-1].Snippet == "" {
					hits[len(hits)-1].Snippet = collapseSpace(textOf(n))
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hits
}

// resolveResultURL unwraps DuckDuckGo redirect links (/l/?uddg=<target>).
func resolveResultURL(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// fetchText downloads a page and returns its visible text, truncated.
func (s *SearchWeb) fetchText(ctx context.Context, pageURL string) (string, error) {
	resp, err := s.get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}
	return truncate(collapseSpace(visibleText(doc)), s.cfg.Truncation), nil
}

// visibleText concatenates text nodes outside script, style and head.
func visibleText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head", "nav", "footer":
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
