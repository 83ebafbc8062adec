package indicators

import (
	"marketscan/models"
)

const (
	// MinSamples is the shortest price series indicators are valid for.
	MinSamples = 50

	trendWindow = 100 // EMA/ATR/VWAP lookback
	rsiWindow   = 24  // RSI lookback
	spikeWindow = 12  // ~1h at 5-minute sampling

	emaShortPeriod = 9
	emaMidPeriod   = 21
	emaLongPeriod  = 50
	rsiPeriod      = 14
	atrPeriod      = 14
	rvolPeriod     = 20
)

// Compute derives the full indicator set from a price series and an
// optional aligned volume series. It returns ok=false when the series
// is too short; that is a normal filter outcome, not an error.
func Compute(prices []float64, volumes []float64) (models.Indicators, bool) {
	if len(prices) < MinSamples {
		return models.Indicators{}, false
	}
	if len(volumes) != len(prices) {
		volumes = nil
	}

	trend := tail(prices, trendWindow)
	trendVol := volumes
	if trendVol != nil {
		trendVol = tail(volumes, trendWindow)
	}

	emaShort := ema(trend, emaShortPeriod)
	emaMid := ema(trend, emaMidPeriod)
	emaLong := ema(trend, emaLongPeriod)

	ind := models.Indicators{
		RSI:          rsi(tail(prices, rsiWindow), rsiPeriod),
		EMAShort:     emaShort,
		EMAMid:       emaMid,
		EMALong:      emaLong,
		ATR:          atr(trend, atrPeriod),
		VWAP:         vwap(trend, trendVol),
		EMAAligned:   emaShort > emaMid && emaMid > emaLong,
		SpikeRatio:   spikeRatio(tail(prices, spikeWindow)),
		RVOL:         rvol(volumes, rvolPeriod),
		CurrentPrice: prices[len(prices)-1],
	}
	return ind, true
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// rsi is the Wilder RSI over closing prices.
func rsi(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50.0
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	// Wilder smoothing for the remaining samples
	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// ema is an SMA-seeded exponential moving average over the series.
func ema(prices []float64, period int) float64 {
	if len(prices) < period {
		return prices[len(prices)-1]
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	value := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		value = (prices[i]-value)*multiplier + value
	}
	return value
}

// atr is a Wilder-smoothed average true range. With a close-only
// series the true range degrades to the absolute close-to-close move.
func atr(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 0
	}

	var sum float64
	for i := 1; i <= period; i++ {
		sum += abs(prices[i] - prices[i-1])
	}
	value := sum / float64(period)

	for i := period + 1; i < len(prices); i++ {
		tr := abs(prices[i] - prices[i-1])
		value = (value*float64(period-1) + tr) / float64(period)
	}
	return value
}

// vwap returns 0 when no volume series is available; callers treat
// that as "no VWAP signal", not an error.
func vwap(prices, volumes []float64) float64 {
	if len(volumes) != len(prices) || len(volumes) == 0 {
		return 0
	}
	var pv, vol float64
	for i := range prices {
		pv += prices[i] * volumes[i]
		vol += volumes[i]
	}
	if vol == 0 {
		return 0
	}
	return pv / vol
}

// spikeRatio is (max-min)/min over the window, the anti-manipulation
// guard against single-candle pumps.
func spikeRatio(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	min, max := prices[0], prices[0]
	for _, p := range prices {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	if min <= 0 {
		return 0
	}
	return (max - min) / min
}

// rvol compares the latest volume sample against the trailing average.
func rvol(volumes []float64, period int) float64 {
	if len(volumes) < 2 {
		return 0
	}
	current := volumes[len(volumes)-1]
	trailing := tail(volumes[:len(volumes)-1], period)
	var sum float64
	for _, v := range trailing {
		sum += v
	}
	avg := sum / float64(len(trailing))
	if avg == 0 {
		return 0
	}
	return current / avg
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
