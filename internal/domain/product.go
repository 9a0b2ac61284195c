package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a tracked marketplace listing. CurrentPrice and LastCheckedAt
// stay nil until the first successful price fetch.
type Product struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ASIN          string     `json:"asin" db:"asin"`
	URL           string     `json:"url" db:"url"`
	Title         string     `json:"title" db:"title"`
	CurrentPrice  *float64   `json:"current_price" db:"current_price"`
	ImageURL      *string    `json:"image_url" db:"image_url"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	LastCheckedAt *time.Time `json:"last_checked_at" db:"last_checked_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// PricePoint is one observation in a product's price history. Points are
// append-only and ordered by CheckedAt ascending.
type PricePoint struct {
	ID        int64     `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Price     float64   `json:"price" db:"price"`
	CheckedAt time.Time `json:"checked_at" db:"checked_at"`
}
