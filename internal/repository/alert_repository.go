package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pricewatch/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrAlertNotFound = errors.New("alert not found")
)

// AlertRepository defines the interface for alert data access
type AlertRepository interface {
	Create(ctx context.Context, alert *domain.Alert) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Alert, error)
	ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Alert, error)
	UpdatePredictedPrice(ctx context.Context, id uuid.UUID, predicted float64) error
	UpdateNotifiedAt(ctx context.Context, id uuid.UUID, notifiedAt time.Time) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type alertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new instance of AlertRepository
func NewAlertRepository(db *sql.DB) AlertRepository {
	return &alertRepository{db: db}
}

const alertColumns = `id, product_id, user_email, target_price, use_prediction, predicted_price, is_active, notified_at, created_at`

// Create inserts a new alert into the database using parameterized queries
func (r *alertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	query := `
		INSERT INTO alerts (id, product_id, user_email, target_price, use_prediction, predicted_price, is_active, notified_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		alert.ID,
		alert.ProductID,
		alert.UserEmail,
		alert.TargetPrice,
		alert.UsePrediction,
		alert.PredictedPrice,
		alert.IsActive,
		alert.NotifiedAt,
		alert.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	return nil
}

// FindByID retrieves an alert by ID
func (r *alertRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	query := fmt.Sprintf(`SELECT %s FROM alerts WHERE id = $1`, alertColumns)

	alert := &domain.Alert{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&alert.ID,
		&alert.ProductID,
		&alert.UserEmail,
		&alert.TargetPrice,
		&alert.UsePrediction,
		&alert.PredictedPrice,
		&alert.IsActive,
		&alert.NotifiedAt,
		&alert.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to find alert by ID: %w", err)
	}

	return alert, nil
}

// ListByProduct retrieves all alerts for a product
func (r *alertRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Alert, error) {
	query := fmt.Sprintf(`SELECT %s FROM alerts WHERE product_id = $1 ORDER BY created_at`, alertColumns)

	return r.queryMany(ctx, query, productID)
}

// ListActiveByProduct retrieves the alerts the check engine must evaluate
func (r *alertRepository) ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Alert, error) {
	query := fmt.Sprintf(`SELECT %s FROM alerts WHERE product_id = $1 AND is_active ORDER BY created_at`, alertColumns)

	return r.queryMany(ctx, query, productID)
}

// UpdatePredictedPrice refreshes the cached prediction for an alert
func (r *alertRepository) UpdatePredictedPrice(ctx context.Context, id uuid.UUID, predicted float64) error {
	query := `UPDATE alerts SET predicted_price = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, predicted)
	if err != nil {
		return fmt.Errorf("failed to update predicted price: %w", err)
	}

	return checkAffected(result, ErrAlertNotFound)
}

// UpdateNotifiedAt stamps the cooldown clock for an alert
func (r *alertRepository) UpdateNotifiedAt(ctx context.Context, id uuid.UUID, notifiedAt time.Time) error {
	query := `UPDATE alerts SET notified_at = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, notifiedAt)
	if err != nil {
		return fmt.Errorf("failed to update notified_at: %w", err)
	}

	return checkAffected(result, ErrAlertNotFound)
}

// SetActive toggles an alert
func (r *alertRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE alerts SET is_active = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to set alert active flag: %w", err)
	}

	return checkAffected(result, ErrAlertNotFound)
}

func (r *alertRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*domain.Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := []*domain.Alert{}
	for rows.Next() {
		alert := &domain.Alert{}
		err := rows.Scan(
			&alert.ID,
			&alert.ProductID,
			&alert.UserEmail,
			&alert.TargetPrice,
			&alert.UsePrediction,
			&alert.PredictedPrice,
			&alert.IsActive,
			&alert.NotifiedAt,
			&alert.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}

	return alerts, nil
}
