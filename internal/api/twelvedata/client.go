// Package twelvedata implements the equities market data source
// against the Twelve Data time series and quote endpoints.
package twelvedata

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "marketscan/internal/platform/http"
	"marketscan/models"
)

// Client is the Twelve Data API client.
type Client struct {
	apiKey     string
	baseURL    string
	symbols    []string
	interval   string
	outputSize int
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Twelve Data client.
type ClientOptions struct {
	APIKey         string
	BaseURL        string
	Symbols        []string
	Interval       string
	OutputSize     int
	RequestTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// NewClient creates a new Twelve Data API client.
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.twelvedata.com"
	}
	if opts.Interval == "" {
		opts.Interval = "5min"
	}
	if opts.OutputSize == 0 {
		opts.OutputSize = 100
	}
	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    opts.BaseURL,
		symbols:    opts.Symbols,
		interval:   opts.Interval,
		outputSize: opts.OutputSize,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:    opts.RequestTimeout,
			MaxRetries: opts.MaxRetries,
			RetryDelay: opts.RetryDelay,
		}),
		logger: log.With().Str("component", "twelvedata_client").Logger(),
	}
}

type seriesResponse struct {
	Values []struct {
		Datetime string  `json:"datetime"`
		Close    float64 `json:"close,string"`
		Volume   float64 `json:"volume,string,omitempty"`
	} `json:"values"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type quoteResponse struct {
	Name          string  `json:"name"`
	Close         float64 `json:"close,string"`
	Volume        float64 `json:"volume,string,omitempty"`
	PercentChange float64 `json:"percent_change,string"`
	Status        string  `json:"status"`
}

// Class identifies the asset class this source serves.
func (c *Client) Class() models.AssetClass {
	return models.ClassStocks
}

// Fetch pulls the configured symbols one by one. A symbol that fails
// is logged and skipped rather than failing the whole batch.
func (c *Client) Fetch(ctx context.Context) ([]models.Asset, error) {
	if len(c.symbols) == 0 {
		return nil, fmt.Errorf("no stock symbols configured")
	}

	var assets []models.Asset
	for _, symbol := range c.symbols {
		asset, err := c.fetchSymbol(ctx, symbol)
		if err != nil {
			c.logger.Warn().Err(err).Str("symbol", symbol).Msg("Skipping symbol")
			continue
		}
		assets = append(assets, asset)
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("all %d symbols failed", len(c.symbols))
	}

	c.logger.Debug().Int("count", len(assets)).Msg("Fetched stock assets")
	return assets, nil
}

func (c *Client) fetchSymbol(ctx context.Context, symbol string) (models.Asset, error) {
	seriesURL := fmt.Sprintf(
		"%s/time_series?symbol=%s&interval=%s&outputsize=%d&apikey=%s",
		c.baseURL, symbol, c.interval, c.outputSize, c.apiKey,
	)

	var series seriesResponse
	if err := c.httpClient.GetJSON(ctx, seriesURL, &series); err != nil {
		return models.Asset{}, fmt.Errorf("fetching series: %w", err)
	}
	if series.Status == "error" {
		return models.Asset{}, fmt.Errorf("twelve data error: %s", series.Message)
	}
	if len(series.Values) == 0 {
		return models.Asset{}, fmt.Errorf("empty series")
	}

	// API returns newest first; indicators need chronological order.
	sort.Slice(series.Values, func(i, j int) bool {
		return series.Values[i].Datetime < series.Values[j].Datetime
	})

	prices := make([]float64, len(series.Values))
	volumes := make([]float64, len(series.Values))
	for i, v := range series.Values {
		prices[i] = v.Close
		volumes[i] = v.Volume
	}

	quoteURL := fmt.Sprintf("%s/quote?symbol=%s&apikey=%s", c.baseURL, symbol, c.apiKey)
	var quote quoteResponse
	if err := c.httpClient.GetJSON(ctx, quoteURL, &quote); err != nil {
		return models.Asset{}, fmt.Errorf("fetching quote: %w", err)
	}
	if quote.Status == "error" || quote.Close <= 0 {
		return models.Asset{}, fmt.Errorf("invalid quote for %s", symbol)
	}

	return models.Asset{
		Symbol:    strings.ToUpper(symbol),
		Name:      quote.Name,
		Price:     quote.Close,
		Change24h: quote.PercentChange,
		Volume:    quote.Volume,
		Prices:    prices,
		Volumes:   volumes,
	}, nil
}
