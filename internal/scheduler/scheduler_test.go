package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/notifier"
	"pricewatch/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Minimal stubs: the scheduler only needs an engine whose cycle it can hold
// open while a second run is attempted.

type stubProducts struct {
	release chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (s *stubProducts) Create(ctx context.Context, p *domain.Product) error { return nil }
func (s *stubProducts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return nil, errors.New("not implemented")
}
func (s *stubProducts) FindByASIN(ctx context.Context, asin string) (*domain.Product, error) {
	return nil, errors.New("not implemented")
}
func (s *stubProducts) List(ctx context.Context) ([]*domain.Product, error) { return nil, nil }
func (s *stubProducts) ListActive(ctx context.Context) ([]*domain.Product, error) {
	s.once.Do(func() { close(s.entered) })
	if s.release != nil {
		<-s.release
	}
	return []*domain.Product{}, nil
}
func (s *stubProducts) UpdatePrice(ctx context.Context, id uuid.UUID, price float64, checkedAt time.Time) error {
	return nil
}
func (s *stubProducts) SetActive(ctx context.Context, id uuid.UUID, active bool) error { return nil }

type stubHistory struct{}

func (stubHistory) Append(ctx context.Context, productID uuid.UUID, price float64, checkedAt time.Time) error {
	return nil
}
func (stubHistory) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.PricePoint, error) {
	return nil, nil
}

type stubAlerts struct{}

func (stubAlerts) Create(ctx context.Context, alert *domain.Alert) error { return nil }
func (stubAlerts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	return nil, errors.New("not implemented")
}
func (stubAlerts) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Alert, error) {
	return nil, nil
}
func (stubAlerts) ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Alert, error) {
	return nil, nil
}
func (stubAlerts) UpdatePredictedPrice(ctx context.Context, id uuid.UUID, predicted float64) error {
	return nil
}
func (stubAlerts) UpdateNotifiedAt(ctx context.Context, id uuid.UUID, notifiedAt time.Time) error {
	return nil
}
func (stubAlerts) SetActive(ctx context.Context, id uuid.UUID, active bool) error { return nil }

type stubFetcher struct{}

func (stubFetcher) FetchPrice(ctx context.Context, url string) (float64, error) {
	return 0, errors.New("no price found on page")
}

func newTestScheduler(products *stubProducts) *Scheduler {
	engine := service.NewCheckEngine(
		products, stubHistory{}, stubAlerts{},
		stubFetcher{}, notifier.Nop{}, zap.NewNop(),
		0, 0,
	)
	return New(engine, zap.NewNop())
}

func TestRunNow_RejectsConcurrentCycles(t *testing.T) {
	products := &stubProducts{
		release: make(chan struct{}),
		entered: make(chan struct{}),
	}
	sched := newTestScheduler(products)

	done := make(chan error, 1)
	go func() {
		_, err := sched.RunNow(context.Background())
		done <- err
	}()

	// Wait until the first cycle is inside the engine.
	select {
	case <-products.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first cycle never started")
	}

	if _, err := sched.RunNow(context.Background()); !errors.Is(err, ErrCycleInProgress) {
		t.Fatalf("expected ErrCycleInProgress, got %v", err)
	}

	close(products.release)
	if err := <-done; err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}

	// The guard is released once the cycle finishes.
	if _, err := sched.RunNow(context.Background()); err != nil {
		t.Fatalf("expected a fresh cycle to run, got %v", err)
	}
}

func TestStart_EmptyScheduleDisablesCron(t *testing.T) {
	sched := newTestScheduler(&stubProducts{})
	if err := sched.Start(""); err != nil {
		t.Fatalf("empty schedule must be accepted: %v", err)
	}
	sched.Stop()
}

func TestStart_InvalidSpec(t *testing.T) {
	sched := newTestScheduler(&stubProducts{})
	if err := sched.Start("not a cron spec"); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}
