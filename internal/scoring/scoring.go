// Package scoring combines technical, social, news, and risk signals
// into a 0-100 composite score with a categorical message.
package scoring

import (
	"math"

	"marketscan/internal/screen"
	"marketscan/models"
)

const baseScore = 50.0

// Category weights. Technical signals dominate, social confirmation
// second, news third, the spike sanity check last.
const (
	weightTechnical = 0.4
	weightSocial    = 0.3
	weightNews      = 0.2
	weightRisk      = 0.1
)

// Validation messages keyed to score bands.
const (
	MsgStrongBuy = "strong buy — multiple confirmations"
	MsgBullish   = "bullish — good technicals and sentiment"
	MsgNeutral   = "neutral"
	MsgCaution   = "caution — mixed signals"
	MsgAvoid     = "avoid — weak technicals or negative sentiment"
)

// Score produces the composite score and its validation message. Each
// category subscore is bounded before weighting, so no single signal
// can dominate the result.
func Score(ind models.Indicators, sig models.SignalEnrichment) (int, string) {
	score := baseScore
	score += weightTechnical * technicalScore(ind)
	score += weightSocial * socialScore(sig)
	score += weightNews * newsScore(sig)
	score += weightRisk * riskScore(ind)

	final := int(math.Round(clamp(score, 0, 100)))
	return final, Message(final)
}

// Message maps a final score to its validation band.
func Message(score int) string {
	switch {
	case score >= 80:
		return MsgStrongBuy
	case score >= 65:
		return MsgBullish
	case score >= 50:
		return MsgNeutral
	case score >= 35:
		return MsgCaution
	default:
		return MsgAvoid
	}
}

// technicalScore: RSI proximity to 60 (max 20), EMA alignment bonus
// (20), VWAP proximity (max 10), RVOL (max 10).
func technicalScore(ind models.Indicators) float64 {
	score := clamp(20-math.Abs(ind.RSI-60)*2, 0, 20)
	if ind.EMAAligned {
		score += 20
	}
	if ind.VWAP > 0 {
		diff := math.Abs(ind.CurrentPrice-ind.VWAP) / ind.VWAP * 100
		score += clamp(10-diff*2, 0, 10)
	}
	score += math.Min(10, ind.RVOL*2)
	return score
}

// socialScore: mentions (max 15), sentiment (max 15), engagement
// (max 10), influencer bonus (10).
func socialScore(sig models.SignalEnrichment) float64 {
	score := math.Min(15, float64(sig.Mentions)*0.5)
	score += clamp(sig.Sentiment, 0, 1) * 15
	score += math.Min(10, float64(sig.Engagement)/100)
	if sig.Influencer {
		score += 10
	}
	return score
}

// newsScore: item count (max 10), average sentiment (max 10), catalyst
// bonus (10).
func newsScore(sig models.SignalEnrichment) float64 {
	score := math.Min(10, float64(len(sig.News))*2)
	score += clamp(sig.AvgNewsSentiment(), 0, 1) * 10
	if sig.Catalyst {
		score += 10
	}
	return score
}

// riskScore rewards passing the price-spike sanity check.
func riskScore(ind models.Indicators) float64 {
	if ind.SpikeRatio <= screen.MaxSpikeRatio {
		return 10
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
