package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pricewatch/internal/domain"
)

const defaultResendURL = "https://api.resend.com/emails"

// ResendNotifier delivers alert emails through the Resend REST API.
type ResendNotifier struct {
	client  *http.Client
	apiKey  string
	from    string
	baseURL string
}

// NewResendNotifier creates a notifier backed by the Resend API.
func NewResendNotifier(apiKey, from string) *ResendNotifier {
	return &ResendNotifier{
		client:  &http.Client{Timeout: 15 * time.Second},
		apiKey:  apiKey,
		from:    from,
		baseURL: defaultResendURL,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Notify sends a price-drop email to the alert's address.
func (n *ResendNotifier) Notify(ctx context.Context, product *domain.Product, alert *domain.Alert, currentPrice float64) error {
	subject := fmt.Sprintf("Price drop: %s is now $%.2f", product.Title, currentPrice)

	payload, err := json.Marshal(resendRequest{
		From:    n.from,
		To:      []string{alert.UserEmail},
		Subject: subject,
		HTML:    buildEmailHTML(product, alert, currentPrice),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email delivery rejected with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

func buildEmailHTML(product *domain.Product, alert *domain.Alert, currentPrice float64) string {
	var target string
	var savings string
	if alert.TargetPrice != nil {
		target = fmt.Sprintf("$%.2f", *alert.TargetPrice)
		if *alert.TargetPrice > 0 {
			savings = fmt.Sprintf("%.1f%% below your target", (*alert.TargetPrice-currentPrice) / *alert.TargetPrice*100)
		}
	} else if alert.PredictedPrice != nil {
		target = fmt.Sprintf("$%.2f (predicted)", *alert.PredictedPrice)
	}

	var buf bytes.Buffer
	buf.WriteString(`<!DOCTYPE html><html><body style="font-family:sans-serif">`)
	fmt.Fprintf(&buf, `<h2>%s</h2>`, product.Title)
	fmt.Fprintf(&buf, `<p>The price dropped to <strong>$%.2f</strong>.</p>`, currentPrice)
	if target != "" {
		fmt.Fprintf(&buf, `<p>Your target: %s.</p>`, target)
	}
	if savings != "" {
		fmt.Fprintf(&buf, `<p>%s</p>`, savings)
	}
	fmt.Fprintf(&buf, `<p><a href="%s">View the product</a></p>`, product.URL)
	buf.WriteString(`</body></html>`)

	return buf.String()
}
