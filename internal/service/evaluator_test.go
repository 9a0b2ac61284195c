package service

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"pricewatch/internal/domain"
)

// A price above the target never triggers, no matter the notification history
func TestProperty_AboveTargetNeverTriggers(t *testing.T) {
	properties := gopter.NewProperties(nil)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	properties.Property("current above target is not_triggered", prop.ForAll(
		func(target float64, excess float64, hoursAgo int64) bool {
			current := target + excess
			notified := now.Add(-time.Duration(hoursAgo) * time.Hour)

			withHistory := EvaluateAlert(current, target, &notified, now, DefaultCooldown)
			withoutHistory := EvaluateAlert(current, target, nil, now, DefaultCooldown)

			return withHistory == DecisionNotTriggered && withoutHistory == DecisionNotTriggered
		},
		gen.Float64Range(0.01, 10000),
		gen.Float64Range(0.01, 1000),
		gen.Int64Range(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestEvaluateAlert(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	hoursAgo := func(h time.Duration) *time.Time {
		ts := now.Add(-h * time.Hour)
		return &ts
	}

	tests := []struct {
		name       string
		current    float64
		target     float64
		notifiedAt *time.Time
		want       Decision
	}{
		{"below target, never notified", 80, 85, nil, DecisionFire},
		{"equal to target, never notified", 85, 85, nil, DecisionFire},
		{"above target, never notified", 90, 85, nil, DecisionNotTriggered},
		{"triggered, notified 23h ago", 80, 85, hoursAgo(23), DecisionSuppressRecent},
		{"triggered, notified exactly 24h ago", 80, 85, hoursAgo(24), DecisionSuppressRecent},
		{"triggered, notified 25h ago", 80, 85, hoursAgo(25), DecisionFire},
		{"above target, notified 25h ago", 90, 85, hoursAgo(25), DecisionNotTriggered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateAlert(tt.current, tt.target, tt.notifiedAt, now, DefaultCooldown)
			if got != tt.want {
				t.Errorf("EvaluateAlert(%v, %v, %v) = %v, want %v",
					tt.current, tt.target, tt.notifiedAt, got, tt.want)
			}
		})
	}
}

func TestEffectiveTarget(t *testing.T) {
	target := 50.0
	predicted := 40.0

	tests := []struct {
		name  string
		alert *domain.Alert
		want  float64
	}{
		{
			"explicit target wins over cached prediction",
			&domain.Alert{TargetPrice: &target, PredictedPrice: &predicted, UsePrediction: true},
			50.0,
		},
		{
			"cached prediction used when no target",
			&domain.Alert{PredictedPrice: &predicted, UsePrediction: true},
			40.0,
		},
		{
			"fresh prediction fallback when alert has neither",
			&domain.Alert{},
			33.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveTarget(tt.alert, 33.0); got != tt.want {
				t.Errorf("EffectiveTarget = %v, want %v", got, tt.want)
			}
		})
	}
}
