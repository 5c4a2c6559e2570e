package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const wikipediaBaseURL = "https://en.wikipedia.org"

// Wikipedia searches article titles, then reads each page's lead summary.
type Wikipedia struct {
	src *httpSource
}

// NewWikipedia creates an encyclopedia searcher. A nil client gets a 15s timeout.
func NewWikipedia(cfg Backend, client *http.Client) *Wikipedia {
	return &Wikipedia{src: newHTTPSource(cfg.BaseURL, wikipediaBaseURL, client, cfg.Interval, -1)}
}

// Fetch returns up to n "Page/Summary" documents. Pages whose summary
// cannot be read are skipped.
func (w *Wikipedia) Fetch(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 0 {
		n = 1
	}
	titles, err := w.searchTitles(ctx, query, n)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(titles))
	for _, title := range titles {
		summary, err := w.summary(ctx, title)
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && se.code == http.StatusNotFound {
				continue
			}
			return nil, err
		}
		if summary == "" {
			continue
		}
		out = append(out, fmt.Sprintf("Page: %s\nSummary: %s", title, summary))
	}
	return out, nil
}

func (w *Wikipedia) searchTitles(ctx context.Context, query string, n int) ([]string, error) {
	q, _ := clampRunes(query, maxQueryRunes)
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", q)
	params.Set("srlimit", strconv.Itoa(n))
	params.Set("srprop", "")
	params.Set("format", "json")

	body, err := w.src.get(ctx, w.src.base+"/w/api.php?"+params.Encode())
	if err != nil {
		return nil, err
	}
	var payload struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode search: %w", err)
	}
	titles := make([]string, 0, len(payload.Query.Search))
	for _, s := range payload.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

func (w *Wikipedia) summary(ctx context.Context, title string) (string, error) {
	path := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	body, err := w.src.get(ctx, w.src.base+"/api/rest_v1/page/summary/"+path)
	if err != nil {
		return "", err
	}
	var page struct {
		Extract string `json:"extract"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return "", fmt.Errorf("decode summary: %w", err)
	}
	return strings.TrimSpace(page.Extract), nil
}
