package models

import (
	"time"
)

// AssetClass identifies which screening branch an asset belongs to.
type AssetClass string

const (
	ClassCrypto AssetClass = "crypto"
	ClassStocks AssetClass = "stocks"
)

// Asset is one polled instrument as delivered by a market data source.
// Each pipeline stage derives new values from it; the record itself is
// never mutated after creation.
type Asset struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
	Volume    float64 `json:"volume"`
	MarketCap float64 `json:"marketCap,omitempty"` // crypto only

	// Prices is the chronological price series for the asset. At least
	// 50 samples are required for indicators to be computable.
	Prices []float64 `json:"-"`
	// Volumes, when present, is aligned 1:1 with Prices.
	Volumes []float64 `json:"-"`
}

// Indicators holds the technical indicators derived from an asset's
// price/volume series.
type Indicators struct {
	RSI        float64 `json:"rsi"`
	EMAShort   float64 `json:"emaShort"`
	EMAMid     float64 `json:"emaMid"`
	EMALong    float64 `json:"emaLong"`
	ATR        float64 `json:"atr"`
	VWAP       float64 `json:"vwap"`
	EMAAligned bool    `json:"emaAligned"`
	// SpikeRatio is (max-min)/min over the last 12 samples, roughly the
	// last hour at 5-minute sampling.
	SpikeRatio float64 `json:"spikeRatio"`
	// RVOL is the last volume sample divided by the trailing average;
	// zero when no volume series is available.
	RVOL         float64 `json:"rvol"`
	CurrentPrice float64 `json:"currentPrice"`
}

// NewsItem is a single news headline attached to an asset.
type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Sentiment   float64   `json:"sentiment"`
}

// SignalEnrichment carries social and news metrics for one symbol,
// supplied by an external signal source. A zero value is a valid
// "nothing heard" response.
type SignalEnrichment struct {
	Mentions   int        `json:"mentions"`
	Sentiment  float64    `json:"sentiment"` // 0.0 - 1.0
	Engagement int        `json:"engagement"`
	Influencer bool       `json:"influencer"`
	News       []NewsItem `json:"news,omitempty"`
	Catalyst   bool       `json:"catalyst"`
}

// AvgNewsSentiment returns the mean sentiment over the news items,
// zero when there are none.
func (s SignalEnrichment) AvgNewsSentiment() float64 {
	if len(s.News) == 0 {
		return 0
	}
	var sum float64
	for _, n := range s.News {
		sum += n.Sentiment
	}
	return sum / float64(len(s.News))
}

// RiskPlan is the trade management plan derived from current price and
// ATR. Recomputed every run, never persisted on its own.
type RiskPlan struct {
	EntryPrice   float64 `json:"entryPrice"`
	StopLoss     float64 `json:"stopLoss"`
	TakeProfit   float64 `json:"takeProfit"`
	PositionSize string  `json:"positionSize"`
	Exit         string  `json:"exit"`
}

// ScoredAsset is the terminal pipeline entity written to a snapshot.
type ScoredAsset struct {
	Asset
	Indicators Indicators       `json:"indicators"`
	Signals    SignalEnrichment `json:"signals"`
	Score      int              `json:"score"`
	Message    string           `json:"message"`
	Risk       RiskPlan         `json:"risk"`
	// Sparkline is the tail of the price series kept for dashboard
	// charts.
	Sparkline []float64 `json:"sparkline,omitempty"`
}

// Snapshot is the document a dashboard polls. Empty Data means "no
// matches this run"; a populated Error means the run failed wholesale.
type Snapshot struct {
	LastUpdated string        `json:"lastUpdated"`
	Data        []ScoredAsset `json:"data"`
	Error       string        `json:"error,omitempty"`
}

// LedgerFile is the on-disk form of the alert ledger.
type LedgerFile struct {
	LastUpdated string   `json:"lastUpdated"`
	Alerted     []string `json:"alerted"`
}
