package notifier

import (
	"context"

	"pricewatch/internal/domain"
)

// Notifier delivers a price-drop notification to an alert's destination.
// Delivery is best-effort: the check engine logs failures but never lets
// them interrupt a cycle or undo the cooldown stamp.
type Notifier interface {
	Notify(ctx context.Context, product *domain.Product, alert *domain.Alert, currentPrice float64) error
}

// Nop is used when no email provider is configured; fire decisions are
// still recorded and stamped, nothing is delivered.
type Nop struct{}

func (Nop) Notify(ctx context.Context, product *domain.Product, alert *domain.Alert, currentPrice float64) error {
	return nil
}
