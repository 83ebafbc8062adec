// Package social implements the external signal source: per-symbol
// social mention and news metrics.
package social

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "marketscan/internal/platform/http"
	"marketscan/models"
)

// catalystKeywords mark news headlines that tend to move price.
var catalystKeywords = []string{
	"etf", "halving", "listing", "partnership", "merger", "acquisition",
	"earnings", "upgrade", "approval", "fda", "buyback", "breakthrough",
	"mainnet", "airdrop",
}

// Client fetches signal enrichment from a signal aggregation service.
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new signal client.
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// NewClient creates a new signal source client.
func NewClient(opts ClientOptions) *Client {
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:    opts.RequestTimeout,
			MaxRetries: opts.MaxRetries,
			RetryDelay: opts.RetryDelay,
		}),
		logger: log.With().Str("component", "signal_client").Logger(),
	}
}

// Enrich fetches social/news metrics for one symbol. An empty payload
// is a valid "nothing heard" response.
func (c *Client) Enrich(ctx context.Context, symbol string) (models.SignalEnrichment, error) {
	reqURL := fmt.Sprintf("%s/api/signals?symbol=%s", c.baseURL, url.QueryEscape(symbol))

	var sig models.SignalEnrichment
	if err := c.httpClient.GetJSON(ctx, reqURL, &sig); err != nil {
		return models.SignalEnrichment{}, fmt.Errorf("fetching signals for %s: %w", symbol, err)
	}
	sig.Catalyst = DetectCatalyst(sig.News)
	return sig, nil
}

// DetectCatalyst reports whether any headline matches the curated
// catalyst keyword set.
func DetectCatalyst(news []models.NewsItem) bool {
	for _, item := range news {
		title := strings.ToLower(item.Title)
		for _, kw := range catalystKeywords {
			if strings.Contains(title, kw) {
				return true
			}
		}
	}
	return false
}

// None is a signal source that always reports zero activity, used when
// no signal service is configured.
type None struct{}

// Enrich returns an empty enrichment.
func (None) Enrich(context.Context, string) (models.SignalEnrichment, error) {
	return models.SignalEnrichment{}, nil
}

// Static serves fixed enrichment per symbol. Deterministic stand-in
// for tests and offline runs.
type Static map[string]models.SignalEnrichment

// Enrich returns the fixture for symbol, or an empty enrichment.
func (s Static) Enrich(_ context.Context, symbol string) (models.SignalEnrichment, error) {
	sig := s[symbol]
	sig.Catalyst = DetectCatalyst(sig.News)
	return sig, nil
}
