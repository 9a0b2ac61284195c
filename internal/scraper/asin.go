package scraper

import (
	"errors"
	"regexp"
)

var ErrInvalidProductURL = errors.New("could not extract ASIN from URL")

var asinPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/dp/([A-Z0-9]{10})`),
	regexp.MustCompile(`/gp/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`/ASIN/([A-Z0-9]{10})`),
	regexp.MustCompile(`/product/([A-Z0-9]{10})`),
}

// ExtractASIN pulls the 10-character catalog id out of a product URL.
func ExtractASIN(url string) (string, error) {
	for _, pattern := range asinPatterns {
		if match := pattern.FindStringSubmatch(url); match != nil {
			return match[1], nil
		}
	}
	return "", ErrInvalidProductURL
}
