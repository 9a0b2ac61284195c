package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pricewatch/internal/domain"

	"github.com/google/uuid"
)

// PriceHistoryRepository defines the interface for the append-only price
// time series. Points are never updated or deleted.
type PriceHistoryRepository interface {
	Append(ctx context.Context, productID uuid.UUID, price float64, checkedAt time.Time) error
	// ListByProduct returns the full series ordered by checked_at ascending.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.PricePoint, error)
}

type priceHistoryRepository struct {
	db *sql.DB
}

// NewPriceHistoryRepository creates a new instance of PriceHistoryRepository
func NewPriceHistoryRepository(db *sql.DB) PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

// Append inserts one price observation for a product
func (r *priceHistoryRepository) Append(ctx context.Context, productID uuid.UUID, price float64, checkedAt time.Time) error {
	query := `
		INSERT INTO price_history (product_id, price, checked_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, productID, price, checkedAt)
	if err != nil {
		return fmt.Errorf("failed to append price point: %w", err)
	}

	return nil
}

// ListByProduct retrieves the complete price series for a product, oldest first
func (r *priceHistoryRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.PricePoint, error) {
	query := `
		SELECT id, product_id, price, checked_at
		FROM price_history
		WHERE product_id = $1
		ORDER BY checked_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list price history: %w", err)
	}
	defer rows.Close()

	points := []*domain.PricePoint{}
	for rows.Next() {
		point := &domain.PricePoint{}
		if err := rows.Scan(&point.ID, &point.ProductID, &point.Price, &point.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, point)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price history: %w", err)
	}

	return points, nil
}
