package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"marketscan/models"
)

// ScreenProfile is one asset class's threshold set for the filter
// cascade. Zero-valued bounds disable the corresponding check.
type ScreenProfile struct {
	PriceMin     float64 `yaml:"price_min"`
	PriceMax     float64 `yaml:"price_max"`
	VolumeMin    float64 `yaml:"volume_min"`
	MarketCapMin float64 `yaml:"market_cap_min"`
	MarketCapMax float64 `yaml:"market_cap_max"`
	ChangeMin    float64 `yaml:"change_min"`
	ChangeMax    float64 `yaml:"change_max"`
	RSIMin       float64 `yaml:"rsi_min"`
	RSIMax       float64 `yaml:"rsi_max"`
	RVOLMin      float64 `yaml:"rvol_min"`
	VWAPMaxDiff  float64 `yaml:"vwap_max_diff"` // percent
	MinMentions  int     `yaml:"min_mentions"`
	MinSentiment float64 `yaml:"min_sentiment"`
	MinNewsSent  float64 `yaml:"min_news_sentiment"`
	ScoreFloor   int     `yaml:"score_floor"`
}

// Config holds everything the scanner needs for one run.
type Config struct {
	LogLevel string

	// DataDir is where snapshot files land; the dashboard serves them
	// as static files.
	DataDir    string
	LedgerPath string
	ProfileDir string

	TwelveAPIKey  string
	StockSymbols  []string
	CryptoCount   int
	SignalBaseURL string

	RequestTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	Workers      int
	ScanInterval time.Duration // 0 = single run
	RunTimeout   time.Duration // 0 = no run-level deadline

	TelegramToken  string
	TelegramChatID int64

	DatabaseURL string

	Crypto ScreenProfile
	Stocks ScreenProfile
}

// Load builds the config from environment variables plus the per-class
// YAML screening profiles. Missing profile files fall back to built-in
// defaults.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:       envString("LOG_LEVEL", "info"),
		DataDir:        envString("DATA_DIR", "public/data"),
		LedgerPath:     envString("LEDGER_PATH", "public/data/alerts.json"),
		ProfileDir:     envString("PROFILE_DIR", "config/profiles"),
		TwelveAPIKey:   os.Getenv("TWELVE_API_KEY"),
		CryptoCount:    envInt("CRYPTO_COUNT", 50),
		SignalBaseURL:  os.Getenv("SIGNAL_BASE_URL"),
		RequestTimeout: time.Duration(envInt("REQUEST_TIMEOUT", 15)) * time.Second,
		MaxRetries:     envInt("MAX_RETRIES", 3),
		RetryDelay:     time.Duration(envInt("RETRY_DELAY", 2)) * time.Second,
		Workers:        envInt("WORKERS", 4),
		ScanInterval:   time.Duration(envInt("SCAN_INTERVAL", 0)) * time.Second,
		RunTimeout:     time.Duration(envInt("RUN_TIMEOUT", 0)) * time.Second,
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
	}

	if symbols := os.Getenv("STOCK_SYMBOLS"); symbols != "" {
		for _, s := range strings.Split(symbols, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				cfg.StockSymbols = append(cfg.StockSymbols, s)
			}
		}
	} else {
		cfg.StockSymbols = []string{"AAPL", "MSFT", "NVDA", "TSLA", "AMD", "META", "AMZN", "GOOGL"}
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	var err error
	if cfg.Crypto, err = loadProfile(filepath.Join(cfg.ProfileDir, "crypto.yaml"), DefaultCryptoProfile()); err != nil {
		return nil, err
	}
	if cfg.Stocks, err = loadProfile(filepath.Join(cfg.ProfileDir, "stocks.yaml"), DefaultStocksProfile()); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Profile returns the screening profile for an asset class.
func (c *Config) Profile(class models.AssetClass) ScreenProfile {
	if class == models.ClassStocks {
		return c.Stocks
	}
	return c.Crypto
}

// SnapshotPath returns the snapshot file path for an asset class.
func (c *Config) SnapshotPath(class models.AssetClass) string {
	return filepath.Join(c.DataDir, string(class)+".json")
}

// DefaultCryptoProfile is the built-in crypto threshold set, used when
// no profile file is present.
func DefaultCryptoProfile() ScreenProfile {
	return ScreenProfile{
		PriceMin:     0.001,
		PriceMax:     100000,
		VolumeMin:    10_000_000,
		MarketCapMin: 50_000_000,
		MarketCapMax: 50_000_000_000,
		ChangeMin:    -10,
		ChangeMax:    60,
		RSIMin:       40,
		RSIMax:       75,
		RVOLMin:      0,
		VWAPMaxDiff:  3,
		MinMentions:  0,
		MinSentiment: 0,
		MinNewsSent:  0,
		ScoreFloor:   50,
	}
}

// DefaultStocksProfile is the built-in equities threshold set.
func DefaultStocksProfile() ScreenProfile {
	return ScreenProfile{
		PriceMin:     2,
		PriceMax:     10000,
		VolumeMin:    1_000_000,
		ChangeMin:    -8,
		ChangeMax:    40,
		RSIMin:       40,
		RSIMax:       75,
		RVOLMin:      0,
		VWAPMaxDiff:  2,
		MinMentions:  0,
		MinSentiment: 0,
		MinNewsSent:  0,
		ScoreFloor:   45,
	}
}

func loadProfile(path string, fallback ScreenProfile) (ScreenProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fallback, nil
		}
		return ScreenProfile{}, fmt.Errorf("reading profile %s: %w", path, err)
	}
	profile := fallback
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return ScreenProfile{}, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return profile, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
