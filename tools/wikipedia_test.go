package tools_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/petasbytes/search-agent/tools"
)

func wikiServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("srsearch") == "nothing" {
			_, _ = w.Write([]byte(`{"query":{"search":[]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"query":{"search":[{"title":"Machine learning"},{"title":"Missing page"}]}}`))
	})
	mux.HandleFunc("/api/rest_v1/page/summary/Machine_learning", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"Machine learning","extract":"Machine learning (ML) is a field of study in artificial intelligence."}`))
	})
	mux.HandleFunc("/api/rest_v1/page/summary/Missing_page", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	return httptest.NewServer(mux)
}

func wikiTool(t *testing.T, srv *httptest.Server, limits tools.Limits) tools.ToolDefinition {
	t.Helper()
	opts := tools.DefaultOptions()
	opts.Wikipedia = tools.Backend{BaseURL: srv.URL, Limits: limits, Interval: -1}
	d, _ := tools.Lookup(tools.Registry(opts), tools.NameWikipedia)
	return d
}

func TestWikipedia_PageSummary(t *testing.T) {
	srv := wikiServer(t)
	defer srv.Close()

	d := wikiTool(t, srv, tools.Limits{MaxResults: 1, MaxExcerptRunes: 200})
	out, err := d.Function(context.Background(), "What is machine learning?")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := "Page: Machine learning\nSummary: Machine learning (ML) is a field of study in artificial intelligence."
	if out != want {
		t.Fatalf("got %q want %q", out, want)
	}
}

func TestWikipedia_SkipsMissingPages(t *testing.T) {
	srv := wikiServer(t)
	defer srv.Close()

	d := wikiTool(t, srv, tools.Limits{MaxResults: 2, MaxExcerptRunes: 1000})
	out, err := d.Function(context.Background(), "ml")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := "Page: Machine learning\nSummary: Machine learning (ML) is a field of study in artificial intelligence."
	if out != want {
		t.Fatalf("got %q want %q", out, want)
	}
}

func TestWikipedia_NoResults_Sentinel(t *testing.T) {
	srv := wikiServer(t)
	defer srv.Close()

	d := wikiTool(t, srv, tools.Limits{MaxResults: 1, MaxExcerptRunes: 200})
	out, err := d.Function(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "No good Wikipedia Search Result was found" {
		t.Fatalf("unexpected output: %q", out)
	}
}
