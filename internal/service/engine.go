package service

import (
	"context"
	"fmt"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/notifier"
	"pricewatch/internal/repository"
	"pricewatch/internal/scraper"

	"go.uber.org/zap"
)

// DefaultItemDelay is the pause between products within a cycle, to avoid
// hammering the remote source.
const DefaultItemDelay = 2 * time.Second

// CheckEngine runs price-check cycles over all active products. Each cycle
// is strictly sequential with per-product isolation: one unreachable page or
// one bad row never aborts the rest. The engine assumes at most one cycle
// runs at a time; the scheduler enforces that.
type CheckEngine struct {
	products  repository.ProductRepository
	history   repository.PriceHistoryRepository
	alerts    repository.AlertRepository
	fetcher   scraper.PriceFetcher
	notifier  notifier.Notifier
	logger    *zap.Logger
	itemDelay time.Duration
	cooldown  time.Duration
	now       func() time.Time
}

// NewCheckEngine creates a check engine. Zero itemDelay disables pacing;
// zero cooldown falls back to DefaultCooldown.
func NewCheckEngine(
	products repository.ProductRepository,
	history repository.PriceHistoryRepository,
	alerts repository.AlertRepository,
	fetcher scraper.PriceFetcher,
	notif notifier.Notifier,
	logger *zap.Logger,
	itemDelay time.Duration,
	cooldown time.Duration,
) *CheckEngine {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}

	return &CheckEngine{
		products:  products,
		history:   history,
		alerts:    alerts,
		fetcher:   fetcher,
		notifier:  notif,
		logger:    logger,
		itemDelay: itemDelay,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// RunCycle processes every active product once and returns the cycle report.
// It returns an error only when the active-product list itself cannot be
// loaded; every per-product failure is recorded in the report instead.
// Cancellation is honored between products: processed products keep their
// updates, unprocessed ones are omitted from the report.
func (e *CheckEngine) RunCycle(ctx context.Context) (*domain.CycleReport, error) {
	products, err := e.products.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}

	report := &domain.CycleReport{
		StartedAt: e.now(),
		Results:   []domain.CheckResult{},
	}

	e.logger.Info("Starting price check cycle", zap.Int("products", len(products)))

	for i, product := range products {
		if i > 0 {
			if err := e.pause(ctx); err != nil {
				e.logger.Info("Cycle cancelled", zap.Int("processed", i))
				break
			}
		}
		if ctx.Err() != nil {
			e.logger.Info("Cycle cancelled", zap.Int("processed", i))
			break
		}
		report.Checked++

		price, err := e.fetcher.FetchPrice(ctx, product.URL)
		if err != nil {
			// Expected and frequent: scrape targets are flaky by default.
			e.logger.Warn("Price fetch failed",
				zap.String("asin", product.ASIN),
				zap.Error(err),
			)
			report.Results = append(report.Results, domain.CheckResult{
				ASIN:   product.ASIN,
				Status: domain.StatusFailed,
				Reason: err.Error(),
			})
			continue
		}

		results, err := e.processProduct(ctx, product, price)
		report.Results = append(report.Results, results...)
		if err != nil {
			e.logger.Error("Product check failed",
				zap.String("asin", product.ASIN),
				zap.Error(err),
			)
			report.Results = append(report.Results, domain.CheckResult{
				ASIN:   product.ASIN,
				Status: domain.StatusError,
				Reason: err.Error(),
			})
		}
	}

	report.FinishedAt = e.now()
	e.logger.Info("Price check cycle finished",
		zap.Int("products", report.Checked),
		zap.Int("results", len(report.Results)),
	)

	return report, nil
}

// processProduct persists the observation, recomputes the prediction, and
// evaluates every active alert. Results gathered before an error are
// returned alongside it so the report keeps them.
func (e *CheckEngine) processProduct(ctx context.Context, product *domain.Product, price float64) ([]domain.CheckResult, error) {
	now := e.now()
	results := []domain.CheckResult{}

	if err := e.history.Append(ctx, product.ID, price, now); err != nil {
		return results, err
	}
	if err := e.products.UpdatePrice(ctx, product.ID, price, now); err != nil {
		return results, err
	}

	points, err := e.history.ListByProduct(ctx, product.ID)
	if err != nil {
		return results, err
	}
	prices := make([]float64, len(points))
	for i, point := range points {
		prices[i] = point.Price
	}
	predicted := PredictTargetPrice(prices, price)

	alerts, err := e.alerts.ListActiveByProduct(ctx, product.ID)
	if err != nil {
		return results, err
	}

	if len(alerts) == 0 {
		results = append(results, domain.CheckResult{
			ASIN:         product.ASIN,
			Status:       domain.StatusCheckedNoAlerts,
			CurrentPrice: &price,
		})
		return results, nil
	}

	for _, alert := range alerts {
		// The cached prediction is refreshed on every check while
		// prediction mode is on, independent of the trigger outcome.
		if alert.UsePrediction {
			if err := e.alerts.UpdatePredictedPrice(ctx, alert.ID, predicted); err != nil {
				return results, err
			}
			alert.PredictedPrice = &predicted
		}

		target := EffectiveTarget(alert, predicted)
		result := domain.CheckResult{
			ASIN:         product.ASIN,
			CurrentPrice: &price,
			TargetPrice:  &target,
		}

		switch EvaluateAlert(price, target, alert.NotifiedAt, now, e.cooldown) {
		case DecisionFire:
			// Delivery is best-effort. notified_at is stamped on the fire
			// decision, not on confirmed delivery, so a broken provider
			// cannot cause an alert storm next cycle.
			if err := e.notifier.Notify(ctx, product, alert, price); err != nil {
				e.logger.Warn("Notification delivery failed",
					zap.String("asin", product.ASIN),
					zap.String("alert_id", alert.ID.String()),
					zap.Error(err),
				)
			}
			if err := e.alerts.UpdateNotifiedAt(ctx, alert.ID, now); err != nil {
				return results, err
			}
			result.Status = domain.StatusAlertSent

		case DecisionSuppressRecent:
			result.Status = domain.StatusRecentlyNotified

		default:
			result.Status = domain.StatusChecked
		}

		results = append(results, result)
	}

	return results, nil
}

// pause waits the inter-item delay, returning early when the cycle is
// cancelled.
func (e *CheckEngine) pause(ctx context.Context) error {
	if e.itemDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(e.itemDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
