package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	arxivBaseURL = "https://export.arxiv.org"
	// arXiv asks clients to space API calls by three seconds.
	arxivInterval = 3 * time.Second
)

// Arxiv queries the arXiv Atom export API for papers.
type Arxiv struct {
	src *httpSource
}

// NewArxiv creates a paper searcher. A nil client gets a 15s timeout.
func NewArxiv(cfg Backend, client *http.Client) *Arxiv {
	return &Arxiv{src: newHTTPSource(cfg.BaseURL, arxivBaseURL, client, cfg.Interval, arxivInterval)}
}

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Published string `xml:"published"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

func (e arxivEntry) format() string {
	names := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		names = append(names, collapseSpace(a.Name))
	}
	published := e.Published
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		published = t.Format("2006-01-02")
	}
	return fmt.Sprintf("Published: %s\nTitle: %s\nAuthors: %s\nSummary: %s",
		published, collapseSpace(e.Title), strings.Join(names, ", "), collapseSpace(e.Summary))
}

// Fetch returns up to n formatted paper summaries.
func (a *Arxiv) Fetch(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 0 {
		n = 1
	}
	q, _ := clampRunes(query, maxQueryRunes)
	params := url.Values{}
	params.Set("search_query", "all:"+q)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(n))

	body, err := a.src.get(ctx, a.src.base+"/api/query?"+params.Encode())
	if err != nil {
		return nil, err
	}
	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode atom feed: %w", err)
	}
	out := make([]string, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		// The API reports query errors as a single entry titled "Error".
		if strings.TrimSpace(e.Title) == "Error" {
			return nil, fmt.Errorf("arxiv: %s", collapseSpace(e.Summary))
		}
		out = append(out, e.format())
	}
	return out, nil
}
