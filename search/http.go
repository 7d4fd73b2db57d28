package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultMaxResults = 5

// HTTPClient queries a Tavily-compatible search API: POST a JSON body with
// the query and api key, receive scored results.
type HTTPClient struct {
	endpoint   string
	apiKey     string
	maxResults int
	client     *http.Client
}

// NewHTTPClient creates a client for the given endpoint. Timeouts come
// from the caller's context, not the transport.
func NewHTTPClient(endpoint, apiKey string) *HTTPClient {
	return &HTTPClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		maxResults: defaultMaxResults,
		client:     &http.Client{},
	}
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search implements Client.
func (h *HTTPClient) Search(ctx context.Context, query string) ([]Document, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:     h.apiKey,
		Query:      query,
		MaxResults: h.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(raw)}
	}

	var decoded searchResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]Document, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		docs = append(docs, Document{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
			Score:   r.Score,
		})
	}
	return docs, nil
}
