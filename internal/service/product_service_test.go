package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/scraper"

	"github.com/google/uuid"
)

type fakeProductScraper struct {
	fakeFetcher
	page    *scraper.ProductPage
	pageErr error
}

func (f *fakeProductScraper) FetchProduct(ctx context.Context, url string) (*scraper.ProductPage, error) {
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	return f.page, nil
}

func newTestProductService(
	products *mockProductRepository,
	history *mockHistoryRepository,
	alerts *mockAlertRepository,
	pageScraper *fakeProductScraper,
) ProductService {
	return NewProductService(products, history, alerts, pageScraper)
}

func TestRegister_InvalidURL(t *testing.T) {
	svc := newTestProductService(&mockProductRepository{}, newMockHistoryRepository(), &mockAlertRepository{}, &fakeProductScraper{})

	_, err := svc.Register(context.Background(), "https://example.com/not-a-product", "", nil)
	if !errors.Is(err, ErrInvalidProductURL) {
		t.Fatalf("expected ErrInvalidProductURL, got %v", err)
	}
}

func TestRegister_NewProductSeedsHistory(t *testing.T) {
	price := 129.99
	image := "https://example.com/image.jpg"
	products := &mockProductRepository{}
	history := newMockHistoryRepository()
	alerts := &mockAlertRepository{}
	pageScraper := &fakeProductScraper{
		page: &scraper.ProductPage{Title: "Mechanical Keyboard", Price: &price, ImageURL: &image},
	}

	svc := newTestProductService(products, history, alerts, pageScraper)

	result, err := svc.Register(context.Background(), "https://example.com/dp/B0TESTASIN", "buyer@example.com", nil)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if result.AlreadyTracked {
		t.Error("new product must not be reported as already tracked")
	}
	if result.Product.ASIN != "B0TESTASIN" {
		t.Errorf("ASIN = %q, want B0TESTASIN", result.Product.ASIN)
	}
	if result.Product.CurrentPrice == nil || *result.Product.CurrentPrice != price {
		t.Errorf("current_price = %v, want %v", result.Product.CurrentPrice, price)
	}
	if len(history.points[result.Product.ID]) != 1 {
		t.Errorf("expected one seeded history point, got %d", len(history.points[result.Product.ID]))
	}
	if result.Alert == nil {
		t.Fatal("expected an alert for the supplied email")
	}
	if !result.Alert.UsePrediction {
		t.Error("alert without explicit target must use prediction mode")
	}
}

func TestRegister_ExistingASINAttachesAlert(t *testing.T) {
	existing := newTestProduct("B0TESTASIN", "https://example.com/dp/B0TESTASIN")
	products := &mockProductRepository{products: []*domain.Product{existing}}
	history := newMockHistoryRepository()
	alerts := &mockAlertRepository{}
	pageScraper := &fakeProductScraper{pageErr: errors.New("should not be called")}

	svc := newTestProductService(products, history, alerts, pageScraper)

	target := 99.0
	result, err := svc.Register(context.Background(), "https://example.com/dp/B0TESTASIN", "buyer@example.com", &target)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if !result.AlreadyTracked {
		t.Error("expected already_tracked for a known ASIN")
	}
	if result.Product.ID != existing.ID {
		t.Error("expected the existing product, not a new one")
	}
	if len(products.products) != 1 {
		t.Errorf("no duplicate product may be created, have %d", len(products.products))
	}
	if result.Alert == nil || result.Alert.UsePrediction {
		t.Errorf("expected an explicit-target alert, got %+v", result.Alert)
	}
}

func TestRegister_UnavailablePage(t *testing.T) {
	pageScraper := &fakeProductScraper{pageErr: errors.New("no product title found on page")}
	svc := newTestProductService(&mockProductRepository{}, newMockHistoryRepository(), &mockAlertRepository{}, pageScraper)

	_, err := svc.Register(context.Background(), "https://example.com/dp/B0TESTASIN", "", nil)
	if !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("expected ErrProductUnavailable, got %v", err)
	}
}

func TestCreateAlert_UnknownProduct(t *testing.T) {
	svc := newTestProductService(&mockProductRepository{}, newMockHistoryRepository(), &mockAlertRepository{}, &fakeProductScraper{})

	_, err := svc.CreateAlert(context.Background(), uuid.New(), "buyer@example.com", nil)
	if err == nil {
		t.Fatal("expected error for unknown product")
	}
}

func TestListIncludesTrend(t *testing.T) {
	product := newTestProduct("B0TESTASIN", "https://example.com/dp/B0TESTASIN")
	products := &mockProductRepository{products: []*domain.Product{product}}
	history := newMockHistoryRepository()
	for _, p := range []float64{100, 95, 90, 85, 80} {
		if err := history.Append(context.Background(), product.ID, p, time.Now()); err != nil {
			t.Fatal(err)
		}
	}

	svc := newTestProductService(products, history, &mockAlertRepository{}, &fakeProductScraper{})

	overviews, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(overviews) != 1 {
		t.Fatalf("expected one overview, got %d", len(overviews))
	}
	if overviews[0].Trend != domain.TrendDeclining {
		t.Errorf("trend = %v, want declining", overviews[0].Trend)
	}
	if len(overviews[0].History) != 5 {
		t.Errorf("expected full history, got %d points", len(overviews[0].History))
	}
}
