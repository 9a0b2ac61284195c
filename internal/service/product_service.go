package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/repository"
	"pricewatch/internal/scraper"

	"github.com/google/uuid"
)

var (
	ErrInvalidProductURL  = scraper.ErrInvalidProductURL
	ErrProductUnavailable = errors.New("could not extract product details from page")
)

// ProductOverview is a product with its derived trend and related records,
// as returned to API clients.
type ProductOverview struct {
	Product *domain.Product      `json:"product"`
	Trend   domain.Trend         `json:"trend"`
	History []*domain.PricePoint `json:"history"`
	Alerts  []*domain.Alert      `json:"alerts"`
}

// RegistrationResult reports what Register did: the product (new or already
// tracked) and the alert created for the caller, if any.
type RegistrationResult struct {
	Product        *domain.Product `json:"product"`
	Alert          *domain.Alert   `json:"alert,omitempty"`
	AlreadyTracked bool            `json:"already_tracked"`
}

// ProductService defines the business logic for tracking products and
// managing their alerts.
type ProductService interface {
	Register(ctx context.Context, url, userEmail string, targetPrice *float64) (*RegistrationResult, error)
	List(ctx context.Context) ([]*ProductOverview, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductOverview, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	CreateAlert(ctx context.Context, productID uuid.UUID, userEmail string, targetPrice *float64) (*domain.Alert, error)
	DeactivateAlert(ctx context.Context, alertID uuid.UUID) error
}

type productService struct {
	products repository.ProductRepository
	history  repository.PriceHistoryRepository
	alerts   repository.AlertRepository
	scraper  scraper.ProductScraper
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	products repository.ProductRepository,
	history repository.PriceHistoryRepository,
	alerts repository.AlertRepository,
	pageScraper scraper.ProductScraper,
) ProductService {
	return &productService{
		products: products,
		history:  history,
		alerts:   alerts,
		scraper:  pageScraper,
	}
}

// Register starts tracking a product URL. Products are deduplicated by
// catalog id: registering an already tracked URL attaches an alert (when an
// email is given) instead of creating a second product.
func (s *productService) Register(ctx context.Context, url, userEmail string, targetPrice *float64) (*RegistrationResult, error) {
	asin, err := scraper.ExtractASIN(url)
	if err != nil {
		return nil, err
	}

	existing, err := s.products.FindByASIN(ctx, asin)
	if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to check existing product: %w", err)
	}
	if existing != nil {
		result := &RegistrationResult{Product: existing, AlreadyTracked: true}
		if userEmail != "" {
			alert, err := s.createAlert(ctx, existing.ID, userEmail, targetPrice)
			if err != nil {
				return nil, err
			}
			result.Alert = alert
		}
		return result, nil
	}

	page, err := s.scraper.FetchProduct(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductUnavailable, err)
	}

	now := time.Now()
	product := &domain.Product{
		ID:           uuid.New(),
		ASIN:         asin,
		URL:          url,
		Title:        page.Title,
		CurrentPrice: page.Price,
		ImageURL:     page.ImageURL,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if page.Price != nil {
		product.LastCheckedAt = &now
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	// Seed the series so the first scheduled cycle already has one point.
	if page.Price != nil {
		if err := s.history.Append(ctx, product.ID, *page.Price, now); err != nil {
			return nil, err
		}
	}

	result := &RegistrationResult{Product: product}
	if userEmail != "" {
		alert, err := s.createAlert(ctx, product.ID, userEmail, targetPrice)
		if err != nil {
			return nil, err
		}
		result.Alert = alert
	}

	return result, nil
}

// List returns every tracked product with its history, alerts, and trend.
func (s *productService) List(ctx context.Context) ([]*ProductOverview, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}

	overviews := make([]*ProductOverview, 0, len(products))
	for _, product := range products {
		overview, err := s.buildOverview(ctx, product)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, overview)
	}

	return overviews, nil
}

// Get returns one product with its history, alerts, and trend.
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*ProductOverview, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.buildOverview(ctx, product)
}

// Deactivate stops checking a product. Its history and alerts remain.
func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.products.SetActive(ctx, id, false)
}

// CreateAlert subscribes an email to a tracked product.
func (s *productService) CreateAlert(ctx context.Context, productID uuid.UUID, userEmail string, targetPrice *float64) (*domain.Alert, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	return s.createAlert(ctx, productID, userEmail, targetPrice)
}

// DeactivateAlert stops a subscription without deleting its record.
func (s *productService) DeactivateAlert(ctx context.Context, alertID uuid.UUID) error {
	return s.alerts.SetActive(ctx, alertID, false)
}

func (s *productService) createAlert(ctx context.Context, productID uuid.UUID, userEmail string, targetPrice *float64) (*domain.Alert, error) {
	alert := &domain.Alert{
		ID:        uuid.New(),
		ProductID: productID,
		UserEmail: userEmail,
		// No explicit target means the alert follows the prediction.
		TargetPrice:   targetPrice,
		UsePrediction: targetPrice == nil,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	return alert, nil
}

func (s *productService) buildOverview(ctx context.Context, product *domain.Product) (*ProductOverview, error) {
	points, err := s.history.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	alerts, err := s.alerts.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	prices := make([]float64, len(points))
	for i, point := range points {
		prices[i] = point.Price
	}

	return &ProductOverview{
		Product: product,
		Trend:   DetectTrend(prices),
		History: points,
		Alerts:  alerts,
	}, nil
}
