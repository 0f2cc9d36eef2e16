package collector

import (
	"context"

	"ResultsMonitor/internal/model"
	"ResultsMonitor/internal/portal"
)

// Fetcher defines the interface for an authenticated results page fetch.
type Fetcher interface {
	FetchResults(ctx context.Context, creds model.Credentials) (*portal.Page, error)
	Name() string
}
