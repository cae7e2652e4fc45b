package ports

import "context"

// Contract for sending a query to the geospatial data API.
type QueryFetcher interface {
	// Send query and return the raw response body.
	Fetch(ctx context.Context, query string) (string, error)
}
