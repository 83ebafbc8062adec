// Package risk derives stop-loss, take-profit, and position sizing
// from current price and volatility.
package risk

import (
	"errors"
	"fmt"

	"marketscan/models"
)

// ErrNoVolatility is returned when ATR is zero relative to price;
// position sizing is undefined and the caller must drop the asset.
var ErrNoVolatility = errors.New("risk: zero volatility, position sizing undefined")

const (
	stopMultiplier = 1.5
	tpMultiplier   = 3.0 // 1:2 risk/reward against the stop
	maxPositionPct = 10.0
)

// Compute builds the risk plan for a long entry at currentPrice.
func Compute(currentPrice, atr, emaShort, emaMid float64) (models.RiskPlan, error) {
	if currentPrice <= 0 {
		return models.RiskPlan{}, fmt.Errorf("risk: invalid price %.4f", currentPrice)
	}

	atrPercent := atr / currentPrice * 100
	if atrPercent == 0 {
		return models.RiskPlan{}, ErrNoVolatility
	}

	positionSize := (1 / atrPercent) * 100
	if positionSize > maxPositionPct {
		positionSize = maxPositionPct
	}

	exit := "Hold"
	if emaShort < emaMid {
		exit = "EMA Bearish Cross"
	}

	return models.RiskPlan{
		EntryPrice:   currentPrice,
		StopLoss:     currentPrice * (1 - atrPercent*stopMultiplier/100),
		TakeProfit:   currentPrice * (1 + atrPercent*tpMultiplier/100),
		PositionSize: fmt.Sprintf("%.1f%%", positionSize),
		Exit:         exit,
	}, nil
}
