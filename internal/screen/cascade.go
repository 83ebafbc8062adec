// Package screen implements the filter cascade: the ordered chain of
// pass/fail predicates an asset must clear before it is scored.
package screen

import (
	"marketscan/config"
	"marketscan/models"
)

// MaxSpikeRatio rejects assets whose short-window price range exceeds
// 50%, a guard against manipulated pumps.
const MaxSpikeRatio = 0.5

// Passes runs the asset through the cascade and reports the first
// failing check, if any. Cheap checks run first; an asset must clear
// every predicate to advance.
func Passes(a models.Asset, ind models.Indicators, sig models.SignalEnrichment, p config.ScreenProfile) (bool, string) {
	if a.Price < p.PriceMin || (p.PriceMax > 0 && a.Price > p.PriceMax) {
		return false, "price out of range"
	}
	if a.Volume < p.VolumeMin {
		return false, "volume too low"
	}
	if p.MarketCapMin > 0 || p.MarketCapMax > 0 {
		if a.MarketCap < p.MarketCapMin || (p.MarketCapMax > 0 && a.MarketCap > p.MarketCapMax) {
			return false, "market cap out of range"
		}
	}
	if a.Change24h < p.ChangeMin || (p.ChangeMax > 0 && a.Change24h > p.ChangeMax) {
		return false, "24h change out of range"
	}
	if ind.SpikeRatio > MaxSpikeRatio {
		return false, "price spike too large"
	}
	if ind.RSI < p.RSIMin || (p.RSIMax > 0 && ind.RSI > p.RSIMax) {
		return false, "rsi out of range"
	}
	if !ind.EMAAligned {
		return false, "no ema alignment"
	}
	if p.RVOLMin > 0 && ind.RVOL < p.RVOLMin {
		return false, "relative volume too low"
	}
	// VWAP 0 means no volume data was available; the check is skipped
	// rather than failed.
	if p.VWAPMaxDiff > 0 && ind.VWAP > 0 {
		diff := abs(ind.CurrentPrice-ind.VWAP) / ind.VWAP * 100
		if diff > p.VWAPMaxDiff {
			return false, "too far from vwap"
		}
	}
	if sig.Mentions < p.MinMentions {
		return false, "too few mentions"
	}
	if sig.Sentiment < p.MinSentiment {
		return false, "sentiment too low"
	}
	if p.MinNewsSent > 0 && sig.AvgNewsSentiment() < p.MinNewsSent {
		return false, "news sentiment too low"
	}
	return true, ""
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
