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
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product already tracked")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByASIN(ctx context.Context, asin string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	// ListActive returns active products ordered by id so cycles process
	// them in a stable order.
	ListActive(ctx context.Context) ([]*domain.Product, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, price float64, checkedAt time.Time) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, asin, url, title, current_price, image_url, is_active, last_checked_at, created_at, updated_at`

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, asin, url, title, current_price, image_url, is_active, last_checked_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.ASIN,
		product.URL,
		product.Title,
		product.CurrentPrice,
		product.ImageURL,
		product.IsActive,
		product.LastCheckedAt,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindByASIN retrieves a product by its catalog id
func (r *productRepository) FindByASIN(ctx context.Context, asin string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE asin = $1`, productColumns)

	product, err := r.scanOne(r.db.QueryRowContext(ctx, query, asin))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ASIN: %w", err)
	}

	return product, nil
}

// List retrieves all tracked products ordered by creation time
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY created_at DESC`, productColumns)

	return r.queryMany(ctx, query)
}

// ListActive retrieves all active products in stable id order
func (r *productRepository) ListActive(ctx context.Context) ([]*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE is_active ORDER BY id`, productColumns)

	return r.queryMany(ctx, query)
}

// UpdatePrice records the latest observed price and check time on the product
func (r *productRepository) UpdatePrice(ctx context.Context, id uuid.UUID, price float64, checkedAt time.Time) error {
	query := `
		UPDATE products
		SET current_price = $2, last_checked_at = $3, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, price, checkedAt)
	if err != nil {
		return fmt.Errorf("failed to update product price: %w", err)
	}

	return checkAffected(result, ErrProductNotFound)
}

// SetActive toggles tracking for a product; products are never deleted here
func (r *productRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE products SET is_active = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to set product active flag: %w", err)
	}

	return checkAffected(result, ErrProductNotFound)
}

func (r *productRepository) scanOne(row *sql.Row) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.ASIN,
		&product.URL,
		&product.Title,
		&product.CurrentPrice,
		&product.ImageURL,
		&product.IsActive,
		&product.LastCheckedAt,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.ASIN,
			&product.URL,
			&product.Title,
			&product.CurrentPrice,
			&product.ImageURL,
			&product.IsActive,
			&product.LastCheckedAt,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func checkAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
