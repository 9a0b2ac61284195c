package service

import "pricewatch/internal/domain"

// Trend analysis is a deliberate heuristic, not a forecast: two moving
// averages classify direction, and the prediction nudges below the series
// floor. Both functions are pure so the same series always yields the same
// answer.

const (
	shortWindow = 3
	longWindow  = 5

	// A short-window average this far under (over) the long-window average
	// counts as declining (rising).
	decliningRatio = 0.95
	risingRatio    = 1.05

	coldStartFactor = 0.9
)

// movingAverage averages the last window observations, or all of them when
// fewer exist.
func movingAverage(prices []float64, window int) float64 {
	if len(prices) == 0 {
		return 0
	}

	start := 0
	if len(prices) > window {
		start = len(prices) - window
	}

	sum := 0.0
	for _, p := range prices[start:] {
		sum += p
	}
	return sum / float64(len(prices)-start)
}

// DetectTrend classifies recent price direction from the ordered series
// (oldest first). Fewer than 3 observations is always stable.
func DetectTrend(prices []float64) domain.Trend {
	if len(prices) < 3 {
		return domain.TrendStable
	}

	recent := prices
	if len(prices) > longWindow {
		recent = prices[len(prices)-longWindow:]
	}

	short := movingAverage(recent, shortWindow)
	long := movingAverage(prices, longWindow)

	switch {
	case short < long*decliningRatio:
		return domain.TrendDeclining
	case short > long*risingRatio:
		return domain.TrendRising
	default:
		return domain.TrendStable
	}
}

// PredictTargetPrice computes the "good time to buy" threshold for a series
// and the current price.
func PredictTargetPrice(prices []float64, currentPrice float64) float64 {
	if len(prices) < 3 {
		return currentPrice * coldStartFactor
	}

	minPrice := prices[0]
	sum := 0.0
	for _, p := range prices {
		if p < minPrice {
			minPrice = p
		}
		sum += p
	}
	avgPrice := sum / float64(len(prices))
	midpoint := (minPrice + avgPrice) / 2

	switch DetectTrend(prices) {
	case domain.TrendDeclining:
		discounted := currentPrice * 0.95
		if discounted < midpoint {
			return discounted
		}
		return midpoint
	case domain.TrendRising:
		return minPrice * 1.05
	default:
		return midpoint
	}
}
