package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	duckDuckGoBaseURL  = "https://lite.duckduckgo.com"
	duckDuckGoInterval = time.Second
	maxRetries429      = 3
)

// DuckDuckGo searches the web via DuckDuckGo's lite HTML interface. No API key.
type DuckDuckGo struct {
	src *httpSource
}

// NewDuckDuckGo creates a searcher. A nil client gets a 15s timeout.
func NewDuckDuckGo(cfg Backend, client *http.Client) *DuckDuckGo {
	return &DuckDuckGo{src: newHTTPSource(cfg.BaseURL, duckDuckGoBaseURL, client, cfg.Interval, duckDuckGoInterval)}
}

// webResult is one scraped hit.
type webResult struct {
	Title   string
	URL     string
	Snippet string
}

func (r webResult) format() string {
	if r.Snippet == "" {
		return r.Title
	}
	return r.Title + ": " + r.Snippet
}

// Fetch returns up to n formatted results.
func (d *DuckDuckGo) Fetch(ctx context.Context, query string, n int) ([]string, error) {
	results, err := d.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.format())
		if n > 0 && len(out) >= n {
			break
		}
	}
	return out, nil
}

// Search posts the query to the lite endpoint and scrapes the result table.
// 429 responses are retried with doubling back-off.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]webResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}
	form := url.Values{}
	form.Set("q", query)

	delay := time.Second
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.src.base+"/lite/", strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := d.src.do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries429 {
			resp.Body.Close()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			continue
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("duckduckgo http %d", resp.StatusCode)
		}
		return parseLiteResults(io.LimitReader(resp.Body, maxBodyBytes))
	}
}

// parseLiteResults extracts result links and their snippets, pairing them by position.
func parseLiteResults(r io.Reader) ([]webResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var links []webResult
	var snippets []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result-link"):
				links = append(links, webResult{Title: nodeText(n), URL: attr(n, "href")})
				return
			case n.Data == "td" && hasClass(n, "result-snippet"):
				snippets = append(snippets, nodeText(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	out := make([]webResult, 0, len(links))
	for i, l := range links {
		if l.Title == "" || l.URL == "" {
			continue
		}
		if i < len(snippets) {
			l.Snippet = snippets[i]
		}
		out = append(out, l)
	}
	return out, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
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

// nodeText concatenates descendant text, with whitespace collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapseSpace(b.String())
}
