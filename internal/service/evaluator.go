package service

import (
	"time"

	"pricewatch/internal/domain"
)

// DefaultCooldown is the minimum elapsed time between consecutive
// notifications for the same alert.
const DefaultCooldown = 24 * time.Hour

// Decision is the outcome of evaluating one alert against a price.
type Decision int

const (
	// DecisionNotTriggered: the price is above the effective target.
	DecisionNotTriggered Decision = iota
	// DecisionFire: the alert triggered and is outside its cooldown window.
	DecisionFire
	// DecisionSuppressRecent: the alert triggered but a notification went
	// out within the cooldown window.
	DecisionSuppressRecent
)

func (d Decision) String() string {
	switch d {
	case DecisionFire:
		return "fire"
	case DecisionSuppressRecent:
		return "suppress_recent"
	default:
		return "not_triggered"
	}
}

// EffectiveTarget resolves the threshold an alert is compared against: the
// explicit target price when set, else the cached prediction, else the
// freshly computed prediction. The fallback applies regardless of the
// prediction-mode flag, so an alert with neither field still evaluates.
func EffectiveTarget(alert *domain.Alert, freshPrediction float64) float64 {
	if alert.TargetPrice != nil {
		return *alert.TargetPrice
	}
	if alert.PredictedPrice != nil {
		return *alert.PredictedPrice
	}
	return freshPrediction
}

// EvaluateAlert decides whether an alert fires. An alert triggers when the
// current price is at or below the target; a triggered alert is suppressed
// while the time since the last notification is within cooldown (the
// boundary itself still suppresses — strictly more than cooldown must have
// elapsed to re-fire). Pure: callers supply the clock.
func EvaluateAlert(currentPrice, target float64, notifiedAt *time.Time, now time.Time, cooldown time.Duration) Decision {
	if currentPrice > target {
		return DecisionNotTriggered
	}

	if notifiedAt != nil && now.Sub(*notifiedAt) <= cooldown {
		return DecisionSuppressRecent
	}

	return DecisionFire
}
