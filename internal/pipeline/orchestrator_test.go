package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"marketscan/config"
	"marketscan/internal/api/social"
	"marketscan/internal/scoring"
	"marketscan/internal/snapshot"
	"marketscan/models"
)

type fakeSource struct {
	class  models.AssetClass
	assets []models.Asset
	err    error
}

func (f *fakeSource) Class() models.AssetClass { return f.class }

func (f *fakeSource) Fetch(context.Context) ([]models.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.assets, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	alerted []string
}

func (f *fakeNotifier) Alert(_ context.Context, asset models.ScoredAsset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerted = append(f.alerted, asset.Symbol)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DataDir:    dir,
		LedgerPath: filepath.Join(dir, "alerts.json"),
		Workers:    2,
		Crypto:     config.DefaultCryptoProfile(),
		Stocks:     config.DefaultStocksProfile(),
	}
}

func trendingSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 45 + 0.05*float64(i)
		if i%2 == 0 {
			s[i] += 0.2
		}
	}
	return s
}

func flatSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 50
	}
	return s
}

func candidateAsset() models.Asset {
	return models.Asset{
		Symbol:    "AAA",
		Name:      "Alpha",
		Price:     50,
		Change24h: 5,
		Volume:    20_000_000,
		MarketCap: 500_000_000,
		Prices:    trendingSeries(100),
	}
}

func candidateSignals() social.Static {
	return social.Static{
		"AAA": {
			Mentions:  20,
			Sentiment: 0.8,
			News:      []models.NewsItem{{Title: "Spot ETF approval expected", Sentiment: 0.7}},
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{
		class: models.ClassCrypto,
		assets: []models.Asset{
			candidateAsset(),
			// series too short for indicators
			{Symbol: "BBB", Name: "Beta", Price: 10, Change24h: 2, Volume: 20_000_000, MarketCap: 500_000_000, Prices: trendingSeries(10)},
			// flat series, no EMA alignment
			{Symbol: "CCC", Name: "Gamma", Price: 50, Change24h: 2, Volume: 20_000_000, MarketCap: 500_000_000, Prices: flatSeries(100)},
		},
	}

	orch := New(cfg, candidateSignals(), nil, nil, src)
	if err := orch.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	snap, err := snapshot.Read(cfg.SnapshotPath(models.ClassCrypto))
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if len(snap.Data) != 1 {
		t.Fatalf("snapshot has %d entries, want 1: %+v", len(snap.Data), snap.Data)
	}

	got := snap.Data[0]
	if got.Symbol != "AAA" {
		t.Errorf("Symbol = %q, want AAA", got.Symbol)
	}
	if got.Score < 65 {
		t.Errorf("Score = %d, want >= 65", got.Score)
	}
	if got.Message != scoring.MsgBullish {
		t.Errorf("Message = %q, want %q", got.Message, scoring.MsgBullish)
	}
	if got.Risk.Exit != "Hold" {
		t.Errorf("Risk.Exit = %q, want Hold", got.Risk.Exit)
	}
	if got.Risk.StopLoss >= got.Price || got.Risk.TakeProfit <= got.Price {
		t.Errorf("risk levels inverted: stop=%v tp=%v price=%v", got.Risk.StopLoss, got.Risk.TakeProfit, got.Price)
	}
	if len(got.Sparkline) == 0 {
		t.Error("Sparkline is empty")
	}
}

func TestRunFetchFailureWritesFailureSnapshot(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{class: models.ClassCrypto, err: errors.New("coingecko: 503")}

	orch := New(cfg, social.None{}, nil, nil, src)
	if err := orch.Run(context.Background()); err == nil {
		t.Fatal("Run() = nil, want error when every class fails")
	}

	snap, err := snapshot.Read(cfg.SnapshotPath(models.ClassCrypto))
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if snap.Error == "" {
		t.Error("failure snapshot has no error field")
	}
	if len(snap.Data) != 0 {
		t.Errorf("failure snapshot has data: %+v", snap.Data)
	}
}

func TestRunFailurePreservesLastGoodSnapshot(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{class: models.ClassCrypto, assets: []models.Asset{candidateAsset()}}
	orch := New(cfg, candidateSignals(), nil, nil, src)
	if err := orch.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	src.err = errors.New("coingecko: timeout")
	if err := orch.Run(context.Background()); err == nil {
		t.Fatal("Run() = nil, want error")
	}

	snap, err := snapshot.Read(cfg.SnapshotPath(models.ClassCrypto))
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if snap.Error != "" || len(snap.Data) != 1 {
		t.Errorf("last good snapshot was clobbered: %+v", snap)
	}
}

func TestLedgerSuppressesRepeatAlerts(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{class: models.ClassCrypto, assets: []models.Asset{candidateAsset()}}
	notifier := &fakeNotifier{}
	orch := New(cfg, candidateSignals(), notifier, nil, src)

	for i := 0; i < 2; i++ {
		if err := orch.Run(context.Background()); err != nil {
			t.Fatalf("Run() #%d error: %v", i+1, err)
		}
	}

	if len(notifier.alerted) != 1 {
		t.Errorf("alerted %v, want exactly one alert for AAA", notifier.alerted)
	}
}

func TestRunsAreDeterministic(t *testing.T) {
	first := runOnce(t)
	second := runOnce(t)

	if first.Score != second.Score || first.Message != second.Message {
		t.Errorf("identical input scored differently: %d/%q vs %d/%q",
			first.Score, first.Message, second.Score, second.Message)
	}
	if first.Risk != second.Risk {
		t.Errorf("risk plans differ: %+v vs %+v", first.Risk, second.Risk)
	}
}

func runOnce(t *testing.T) models.ScoredAsset {
	t.Helper()
	cfg := testConfig(t)
	src := &fakeSource{class: models.ClassCrypto, assets: []models.Asset{candidateAsset()}}
	orch := New(cfg, candidateSignals(), nil, nil, src)
	if err := orch.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	snap, err := snapshot.Read(cfg.SnapshotPath(models.ClassCrypto))
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if len(snap.Data) != 1 {
		t.Fatalf("snapshot has %d entries, want 1", len(snap.Data))
	}
	return snap.Data[0]
}
