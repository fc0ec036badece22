package search

import (
	"context"
	"strings"
)

// Question is one People-Also-Ask entry.
type Question struct {
	Question    string `json:"question"`
	Snippet     string `json:"snippet,omitempty"`
	SourceTitle string `json:"source_title,omitempty"`
	SourceLink  string `json:"source_link,omitempty"`
}

// KeywordMetrics are volume and cost estimates for a keyword.
type KeywordMetrics struct {
	Volume      int     `json:"volume"`
	CPC         float64 `json:"cpc"`
	Competition float64 `json:"competition"`
}

// EstimatedMetrics are returned until a keyword-metrics provider is wired.
var EstimatedMetrics = KeywordMetrics{Volume: 1200, CPC: 2.45, Competition: 0.65}

// Intelligence is the search snapshot used to seed research.
type Intelligence struct {
	Questions []Question     `json:"questions"`
	Organic   string         `json:"organic"`
	Metrics   KeywordMetrics `json:"metrics"`
}

// ContextBlock renders the intelligence as the researcher's context seed.
func (in Intelligence) ContextBlock() string {
	var b strings.Builder
	b.WriteString("\n[REAL-TIME SEARCH INTELLIGENCE]\nORGANIC COMPETITORS:\n")
	b.WriteString(in.Organic)
	b.WriteString("\n\nPEOPLE ALSO ASK:\n")
	for i, q := range in.Questions {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(q.Question)
	}
	b.WriteString("\n")
	return b.String()
}

// Searcher fetches search intelligence for a keyword.
type Searcher interface {
	Intelligence(ctx context.Context, keyword string) (Intelligence, error)
}
