// Package coingecko implements the crypto market data source against
// the CoinGecko markets endpoint.
package coingecko

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "marketscan/internal/platform/http"
	"marketscan/models"
)

// Client fetches crypto market data from CoinGecko.
type Client struct {
	baseURL    string
	count      int
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new CoinGecko client.
type ClientOptions struct {
	BaseURL        string
	Count          int
	RequestTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// NewClient creates a new CoinGecko API client.
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if opts.Count == 0 {
		opts.Count = 50
	}
	return &Client{
		baseURL: opts.BaseURL,
		count:   opts.Count,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:    opts.RequestTimeout,
			MaxRetries: opts.MaxRetries,
			RetryDelay: opts.RetryDelay,
		}),
		logger: log.With().Str("component", "coingecko_client").Logger(),
	}
}

type marketEntry struct {
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	CurrentPrice             float64 `json:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	TotalVolume              float64 `json:"total_volume"`
	MarketCap                float64 `json:"market_cap"`
	Sparkline                struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d"`
}

// Class identifies the asset class this source serves.
func (c *Client) Class() models.AssetClass {
	return models.ClassCrypto
}

// Fetch returns the top market-cap coins with their 7-day sparkline as
// the price series. CoinGecko exposes no per-sample volumes, so the
// volume series stays empty and VWAP degrades to 0 downstream.
func (c *Client) Fetch(ctx context.Context) ([]models.Asset, error) {
	url := fmt.Sprintf(
		"%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1&sparkline=true&price_change_percentage=24h",
		c.baseURL, c.count,
	)
	c.logger.Debug().Str("url", url).Msg("Fetching crypto markets")

	var entries []marketEntry
	if err := c.httpClient.GetJSON(ctx, url, &entries); err != nil {
		return nil, fmt.Errorf("fetching markets: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("empty markets response")
	}

	assets := make([]models.Asset, 0, len(entries))
	for _, e := range entries {
		if e.CurrentPrice <= 0 {
			continue
		}
		assets = append(assets, models.Asset{
			Symbol:    strings.ToUpper(e.Symbol),
			Name:      e.Name,
			Price:     e.CurrentPrice,
			Change24h: e.PriceChangePercentage24h,
			Volume:    e.TotalVolume,
			MarketCap: e.MarketCap,
			Prices:    e.Sparkline.Price,
		})
	}

	c.logger.Debug().Int("count", len(assets)).Msg("Fetched crypto assets")
	return assets, nil
}
