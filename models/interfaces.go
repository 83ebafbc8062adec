package models

import "context"

// MarketDataSource supplies the raw asset records for one asset class.
type MarketDataSource interface {
	Class() AssetClass
	Fetch(ctx context.Context) ([]Asset, error)
}

// SignalSource supplies social/news enrichment per symbol. An empty
// SignalEnrichment is a valid response and must not fail the pipeline.
type SignalSource interface {
	Enrich(ctx context.Context, symbol string) (SignalEnrichment, error)
}

// Notifier delivers an alert for a newly surfaced asset.
type Notifier interface {
	Alert(ctx context.Context, asset ScoredAsset) error
}

// HistoryStore records the results of a completed run.
type HistoryStore interface {
	RecordRun(ctx context.Context, class AssetClass, results []ScoredAsset) error
}
