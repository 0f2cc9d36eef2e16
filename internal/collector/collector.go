package collector

import (
	"context"
	"fmt"
	"log"

	"ResultsMonitor/internal/decoder"
	"ResultsMonitor/internal/model"
	"ResultsMonitor/internal/portal"
)

// MockFetcher returns canned pages in order for development and testing.
// Once the pages run out the last one is repeated.
type MockFetcher struct {
	Pages  [][]byte
	Errors []error // Errors[i], when set, is returned instead of Pages[i]
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchResults(_ context.Context, _ model.Credentials) (*portal.Page, error) {
	i := m.Calls
	m.Calls++
	if i < len(m.Errors) && m.Errors[i] != nil {
		return nil, m.Errors[i]
	}
	if len(m.Pages) == 0 {
		return &portal.Page{Status: 200}, nil
	}
	if i >= len(m.Pages) {
		i = len(m.Pages) - 1
	}
	return &portal.Page{URL: "mock://results", Status: 200, Body: m.Pages[i]}, nil
}

// Collector orchestrates one authenticated fetch and the decode of its page.
type Collector struct {
	Fetcher Fetcher
	Decoder *decoder.Decoder
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, dec *decoder.Decoder) *Collector {
	return &Collector{Fetcher: fetcher, Decoder: dec}
}

// Collect logs in, fetches the results page and decodes it.
func (c *Collector) Collect(ctx context.Context, creds model.Credentials) (model.Outcome, error) {
	page, err := c.Fetcher.FetchResults(ctx, creds)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("fetch results from %s: %w", c.Fetcher.Name(), err)
	}

	outcome := c.Decoder.Decode(page.Body)
	switch outcome.Kind {
	case model.OutcomePartial:
		log.Printf("[WARN] results table ended mid-row, dropped %d trailing cell(s)", outcome.Dropped)
	case model.OutcomeEmpty:
		log.Printf("[WARN] no results decoded from %s (status %d)", page.URL, page.Status)
	}
	return outcome, nil
}
