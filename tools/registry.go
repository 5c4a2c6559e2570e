package tools

import "net/http"

// Tool names as the model must spell them.
const (
	NameSearch    = "search"
	NameArxiv     = "arxiv"
	NameWikipedia = "wikipedia"
)

// Options configures the registry. Zero-valued backends fall back to defaults.
type Options struct {
	HTTPClient *http.Client
	Search     Backend
	Arxiv      Backend
	Wikipedia  Backend
}

// DefaultOptions mirrors the limits the chatbot ships with.
func DefaultOptions() Options {
	return Options{
		Search:    Backend{Limits: Limits{MaxResults: 3, MaxExcerptRunes: 1000}},
		Arxiv:     Backend{Limits: Limits{MaxResults: 1, MaxExcerptRunes: 200}},
		Wikipedia: Backend{Limits: Limits{MaxResults: 1, MaxExcerptRunes: 200}},
	}
}

// Registry returns the closed set of lookup tools wired for the agent.
func Registry(opts Options) []ToolDefinition {
	ddg := NewDuckDuckGo(opts.Search, opts.HTTPClient)
	ax := NewArxiv(opts.Arxiv, opts.HTTPClient)
	wiki := NewWikipedia(opts.Wikipedia, opts.HTTPClient)
	return []ToolDefinition{
		newLookupTool(NameSearch, "DuckDuckGo Search",
			"Web search via DuckDuckGo. Useful for current events and general facts. Input should be a search query.",
			opts.Search.Limits, ddg.Fetch),
		newLookupTool(NameArxiv, "Arxiv",
			"Search scientific papers on arxiv.org. Useful for physics, mathematics, computer science, quantitative biology, quantitative finance, statistics, electrical engineering and economics. Input should be a search query.",
			opts.Arxiv.Limits, ax.Fetch),
		newLookupTool(NameWikipedia, "Wikipedia Search",
			"Search Wikipedia. Useful for general questions about people, places, companies, facts, historical events, or other subjects. Input should be a search query.",
			opts.Wikipedia.Limits, wiki.Fetch),
	}
}
