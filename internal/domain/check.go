package domain

import "time"

// Trend is a coarse classification of recent price direction.
type Trend string

const (
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
	TrendRising    Trend = "rising"
)

// CheckStatus is the per-product or per-alert outcome recorded in a cycle
// report.
type CheckStatus string

const (
	// StatusFailed means the price could not be fetched; the product was
	// left untouched.
	StatusFailed CheckStatus = "failed"
	// StatusAlertSent means an alert fired and a notification was attempted.
	StatusAlertSent CheckStatus = "alert_sent"
	// StatusRecentlyNotified means the alert triggered but is still inside
	// its cooldown window.
	StatusRecentlyNotified CheckStatus = "alert_recently_notified"
	// StatusChecked means the alert was evaluated and did not trigger.
	StatusChecked CheckStatus = "checked"
	// StatusCheckedNoAlerts means the price was recorded but the product has
	// no active alerts.
	StatusCheckedNoAlerts CheckStatus = "checked_no_alerts"
	// StatusError means an unexpected failure occurred while processing the
	// product after a successful fetch.
	StatusError CheckStatus = "error"
)

// CheckResult is one line of a cycle report.
type CheckResult struct {
	ASIN         string      `json:"asin"`
	Status       CheckStatus `json:"status"`
	CurrentPrice *float64    `json:"current_price,omitempty"`
	TargetPrice  *float64    `json:"target_price,omitempty"`
	Reason       string      `json:"reason,omitempty"`
}

// CycleReport is the sole externally observable output of one check cycle,
// alongside the persisted mutations.
type CycleReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Checked    int           `json:"checked"`
	Results    []CheckResult `json:"results"`
}
