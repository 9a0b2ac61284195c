package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrPriceNotFound reports that a page was reached but no price could be
// extracted from it. Callers treat this the same as any other fetch failure:
// a frequent, recoverable outcome, not a fault.
var ErrPriceNotFound = errors.New("no price found on page")

// PriceFetcher fetches the current price for a product page. Implementations
// must bound their own network time and must return an error (never panic)
// for malformed or unextractable responses.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, url string) (float64, error)
}

// ProductPage is what can be scraped from a listing on registration.
// Price and ImageURL may be absent.
type ProductPage struct {
	Title    string
	Price    *float64
	ImageURL *string
}

// ProductScraper additionally extracts title and image for registration.
type ProductScraper interface {
	PriceFetcher
	FetchProduct(ctx context.Context, url string) (*ProductPage, error)
}

// Price markup shifts between marketplace layouts, so extraction tries a
// chain of patterns in order: the split whole-price span, the screen-reader
// offscreen span, then the embedded JSON blob.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`<span[^>]*class="[^"]*a-price-whole[^"]*"[^>]*>([\d,]+)`),
	regexp.MustCompile(`<span[^>]*class="[^"]*a-offscreen[^"]*">\$([\d,]+\.\d{2})`),
	regexp.MustCompile(`"price":"\$([\d,]+\.\d{2})"`),
}

var imagePattern = regexp.MustCompile(`"large":"([^"]+)"`)

// AmazonScraper scrapes amazon.com product pages.
type AmazonScraper struct {
	client    *http.Client
	userAgent string
}

// NewAmazonScraper builds a scraper whose requests are bounded by timeout.
func NewAmazonScraper(timeout time.Duration, userAgent string) *AmazonScraper {
	return &AmazonScraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// FetchPrice retrieves the page and extracts the current price.
func (s *AmazonScraper) FetchPrice(ctx context.Context, url string) (float64, error) {
	html, err := s.get(ctx, url)
	if err != nil {
		return 0, err
	}

	price, ok := extractPrice(html)
	if !ok {
		return 0, ErrPriceNotFound
	}

	return price, nil
}

// FetchProduct retrieves the page and extracts title, price, and image for
// product registration. A missing title is an error; a missing price is not.
func (s *AmazonScraper) FetchProduct(ctx context.Context, url string) (*ProductPage, error) {
	html, err := s.get(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse product page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("#productTitle").First().Text())
	if title == "" {
		return nil, errors.New("no product title found on page")
	}

	page := &ProductPage{Title: title}

	if price, ok := extractPrice(html); ok {
		page.Price = &price
	}

	if match := imagePattern.FindStringSubmatch(html); match != nil {
		imageURL := match[1]
		page.ImageURL = &imageURL
	}

	return page, nil
}

func (s *AmazonScraper) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	// Without browser headers the marketplace serves a bot interstitial.
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status fetching page: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}

	return string(body), nil
}

func extractPrice(html string) (float64, bool) {
	for _, pattern := range pricePatterns {
		match := pattern.FindStringSubmatch(html)
		if match == nil {
			continue
		}

		price, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil {
			continue
		}

		return price, true
	}

	return 0, false
}
