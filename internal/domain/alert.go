package domain

import (
	"time"

	"github.com/google/uuid"
)

// Alert subscribes an email address to price drops on one product.
//
// Exactly one pricing mode governs evaluation: TargetPrice wins when set;
// otherwise the cached PredictedPrice is used. PredictedPrice is refreshed
// by the check engine on every cycle while UsePrediction is set.
type Alert struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	ProductID      uuid.UUID  `json:"product_id" db:"product_id"`
	UserEmail      string     `json:"user_email" db:"user_email"`
	TargetPrice    *float64   `json:"target_price" db:"target_price"`
	UsePrediction  bool       `json:"use_prediction" db:"use_prediction"`
	PredictedPrice *float64   `json:"predicted_price" db:"predicted_price"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	NotifiedAt     *time.Time `json:"notified_at" db:"notified_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}
