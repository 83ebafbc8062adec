// Package pipeline drives one screening run: fetch raw assets per
// class, evaluate each through indicators, cascade, scoring, and risk,
// then persist the snapshot and alert ledger.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"marketscan/config"
	"marketscan/internal/indicators"
	"marketscan/internal/ledger"
	"marketscan/internal/risk"
	"marketscan/internal/scoring"
	"marketscan/internal/screen"
	"marketscan/internal/snapshot"
	"marketscan/models"
)

// sparklineLen is how many trailing price samples ride along into the
// snapshot for dashboard charts.
const sparklineLen = 48

// Orchestrator wires the pipeline stages together for a run.
type Orchestrator struct {
	cfg      *config.Config
	sources  []models.MarketDataSource
	signals  models.SignalSource
	notifier models.Notifier     // optional
	history  models.HistoryStore // optional
	logger   zerolog.Logger
}

// New creates an orchestrator over the given market data sources.
// notifier and history may be nil.
func New(cfg *config.Config, signals models.SignalSource, notifier models.Notifier, history models.HistoryStore, sources ...models.MarketDataSource) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		sources:  sources,
		signals:  signals,
		notifier: notifier,
		history:  history,
		logger:   log.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes one full screening pass over all configured classes.
// Per-asset failures are isolated; a class whose collection fetch
// fails gets a failure snapshot while the other classes proceed.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RunTimeout)
		defer cancel()
	}

	led, err := ledger.Load(o.cfg.LedgerPath)
	if err != nil {
		// A corrupt ledger should not kill the run; start fresh and
		// let the save at run end replace it.
		o.logger.Warn().Err(err).Msg("Ledger unreadable, starting empty")
		led = ledger.New(o.cfg.LedgerPath)
	}

	var failed int
	for _, src := range o.sources {
		if err := o.runClass(ctx, src, led); err != nil {
			failed++
		}
	}

	if err := led.Save(); err != nil {
		o.logger.Error().Err(err).Msg("Saving ledger failed")
	}

	if failed == len(o.sources) {
		return fmt.Errorf("all %d asset classes failed", failed)
	}
	return nil
}

func (o *Orchestrator) runClass(ctx context.Context, src models.MarketDataSource, led *ledger.Ledger) error {
	class := src.Class()
	path := o.cfg.SnapshotPath(class)
	logger := o.logger.With().Str("class", string(class)).Logger()

	assets, err := src.Fetch(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Market data fetch failed")
		if werr := snapshot.WriteFailure(path, err.Error()); werr != nil {
			logger.Error().Err(werr).Msg("Writing failure snapshot failed")
		}
		return err
	}

	results := o.screenAll(ctx, assets, o.cfg.Profile(class))

	// Best candidates first.
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	// Ledger mutation and alerting stay serialized after the fan-out.
	for _, r := range results {
		if !led.ShouldAlert(r.Symbol) {
			continue
		}
		led.Record(r.Symbol)
		if o.notifier == nil {
			continue
		}
		if err := o.notifier.Alert(ctx, r); err != nil {
			logger.Warn().Err(err).Str("symbol", r.Symbol).Msg("Alert delivery failed")
		}
	}

	if err := snapshot.Write(path, results); err != nil {
		logger.Error().Err(err).Msg("Writing snapshot failed")
		return err
	}

	if o.history != nil {
		if err := o.history.RecordRun(ctx, class, results); err != nil {
			logger.Warn().Err(err).Msg("Recording run history failed")
		}
	}

	logger.Info().Int("screened", len(assets)).Int("matched", len(results)).Msg("Class run complete")
	return nil
}

// screenAll fans the assets out over a bounded worker pool. Workers
// only compute; the accumulator is the single mutation point.
func (o *Orchestrator) screenAll(ctx context.Context, assets []models.Asset, profile config.ScreenProfile) []models.ScoredAsset {
	workers := o.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan models.Asset)
	var (
		mu      sync.Mutex
		results []models.ScoredAsset
		seen    = make(map[string]struct{})
	)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for asset := range jobs {
				scored, ok, err := o.evaluate(ctx, asset, profile)
				if err != nil {
					// Per-asset errors never abort sibling assets.
					o.logger.Warn().Err(err).Str("symbol", asset.Symbol).Msg("Asset evaluation failed")
					continue
				}
				if !ok {
					continue
				}
				mu.Lock()
				if _, dup := seen[scored.Symbol]; !dup {
					seen[scored.Symbol] = struct{}{}
					results = append(results, scored)
				}
				mu.Unlock()
			}
		}()
	}

	for _, asset := range assets {
		select {
		case jobs <- asset:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// evaluate runs one asset through the whole stage chain. ok=false is a
// normal exclusion; a non-nil error means the asset had to be skipped.
func (o *Orchestrator) evaluate(ctx context.Context, asset models.Asset, profile config.ScreenProfile) (models.ScoredAsset, bool, error) {
	symbol := strings.ToUpper(asset.Symbol)

	ind, ok := indicators.Compute(asset.Prices, asset.Volumes)
	if !ok {
		o.logger.Debug().Str("symbol", symbol).Int("samples", len(asset.Prices)).Msg("Series too short")
		return models.ScoredAsset{}, false, nil
	}

	sig, err := o.signals.Enrich(ctx, symbol)
	if err != nil {
		return models.ScoredAsset{}, false, fmt.Errorf("enriching %s: %w", symbol, err)
	}

	if pass, reason := screen.Passes(asset, ind, sig, profile); !pass {
		o.logger.Debug().Str("symbol", symbol).Str("reason", reason).Msg("Filtered out")
		return models.ScoredAsset{}, false, nil
	}

	score, message := scoring.Score(ind, sig)
	if score < profile.ScoreFloor {
		o.logger.Debug().Str("symbol", symbol).Int("score", score).Msg("Below score floor")
		return models.ScoredAsset{}, false, nil
	}

	plan, err := risk.Compute(asset.Price, ind.ATR, ind.EMAShort, ind.EMAMid)
	if err != nil {
		// Zero volatility makes sizing undefined; drop, don't divide.
		o.logger.Debug().Err(err).Str("symbol", symbol).Msg("No risk plan")
		return models.ScoredAsset{}, false, nil
	}

	scored := models.ScoredAsset{
		Asset:      asset,
		Indicators: ind,
		Signals:    sig,
		Score:      score,
		Message:    message,
		Risk:       plan,
		Sparkline:  sparkline(asset.Prices),
	}
	scored.Symbol = symbol
	return scored, true, nil
}

func sparkline(prices []float64) []float64 {
	if len(prices) <= sparklineLen {
		return prices
	}
	return prices[len(prices)-sparklineLen:]
}
