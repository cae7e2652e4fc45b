package overpass

import (
	"context"
	"fmt"
	"strings"
)

// MockResponse answers any query containing Match.
type MockResponse struct {
	Match string
	Body  string
	Err   error
}

// MockFetcher is an in-memory QueryFetcher for tests.
// Responses are tried in order; the first match wins.
type MockFetcher struct {
	responses []MockResponse
	Queries   []string
}

func NewMockFetcher(responses []MockResponse) *MockFetcher {
	return &MockFetcher{responses: responses}
}

func (f *MockFetcher) Fetch(ctx context.Context, query string) (string, error) {
	f.Queries = append(f.Queries, query)

	for _, r := range f.responses {
		if strings.Contains(query, r.Match) {
			return r.Body, r.Err
		}
	}

	return "", fmt.Errorf("mock: no response for query %q", query)
}
