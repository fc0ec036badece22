package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aristath/zappy/internal/config"
)

// DefaultSerpAPIURL is the SerpAPI JSON search endpoint.
const DefaultSerpAPIURL = "https://serpapi.com/search.json"

// organicLimit is how many organic results are summarized.
const organicLimit = 5

// SerpAPIClient queries Google results through SerpAPI.
type SerpAPIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSerpAPIClient creates a client. An empty baseURL uses DefaultSerpAPIURL.
func NewSerpAPIClient(apiKey, baseURL string, httpClient *http.Client) *SerpAPIClient {
	if baseURL == "" {
		baseURL = DefaultSerpAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &SerpAPIClient{apiKey: apiKey, baseURL: baseURL, httpClient: httpClient}
}

type serpResponse struct {
	Error            string `json:"error"`
	RelatedQuestions []struct {
		Question string `json:"question"`
		Snippet  string `json:"snippet"`
		Title    string `json:"title"`
		Link     string `json:"link"`
	} `json:"related_questions"`
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

// Intelligence performs one search and derives PAA questions and the organic summary.
func (c *SerpAPIClient) Intelligence(ctx context.Context, keyword string) (Intelligence, error) {
	if c.apiKey == "" {
		return Intelligence{}, &config.ConfigurationError{Component: "serpapi", Missing: []string{"api_key"}}
	}

	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", keyword)
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Intelligence{}, fmt.Errorf("serpapi: building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Intelligence{}, fmt.Errorf("serpapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Intelligence{}, fmt.Errorf("serpapi: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Intelligence{}, fmt.Errorf("serpapi: decoding response: %w", err)
	}
	if data.Error != "" {
		return Intelligence{}, fmt.Errorf("serpapi: %s", data.Error)
	}

	in := Intelligence{
		Questions: make([]Question, 0, len(data.RelatedQuestions)),
		Metrics:   EstimatedMetrics,
	}
	for _, rq := range data.RelatedQuestions {
		in.Questions = append(in.Questions, Question{
			Question:    rq.Question,
			Snippet:     rq.Snippet,
			SourceTitle: rq.Title,
			SourceLink:  rq.Link,
		})
	}

	var sources []string
	for i, r := range data.OrganicResults {
		if i == organicLimit {
			break
		}
		sources = append(sources, fmt.Sprintf("Title: %s\nSource: %s\nSnippet: %s\n", r.Title, r.Link, r.Snippet))
	}
	in.Organic = strings.Join(sources, "\n---\n")
	if in.Organic == "" {
		in.Organic = "No organic competitive data found."
	}

	return in, nil
}
