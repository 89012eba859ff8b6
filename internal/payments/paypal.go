package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	PayPalSandboxURL    = "https://api-m.sandbox.paypal.com"
	PayPalProductionURL = "https://api-m.paypal.com"
)

type PayPalAdapter struct {
	baseURL    string
	httpClient *http.Client
}

// NewPayPalAdapter returns an adapter whose HTTP client fetches and refreshes
// a client-credentials token on its own.
func NewPayPalAdapter(clientID, secret, baseURL string) *PayPalAdapter {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = PayPalSandboxURL
	}

	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: secret,
		TokenURL:     baseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	return &PayPalAdapter{
		baseURL:    baseURL,
		httpClient: cfg.Client(context.Background()),
	}
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalOrder struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		ReferenceID string        `json:"reference_id"`
		Amount      *paypalAmount `json:"amount"`
		Payments    *struct {
			Captures []struct {
				ID     string        `json:"id"`
				Status string        `json:"status"`
				Amount *paypalAmount `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
	Links []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

func (p *PayPalAdapter) do(ctx context.Context, method, path string, payload any) (*paypalOrder, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("paypal %s %s failed: http=%d body=%s", method, path, resp.StatusCode, string(raw))
	}

	var order paypalOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("paypal decode: %w body=%s", err, string(raw))
	}
	return &order, nil
}

func (p *PayPalAdapter) InitiatePayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error) {
	if req.AmountMinor <= 0 {
		return PaymentResponse{}, fmt.Errorf("paypal order amount must be positive, got %d", req.AmountMinor)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"reference_id": req.Reference,
			"description":  req.Description,
			"amount": paypalAmount{
				CurrencyCode: currency,
				Value:        FormatMinor(req.AmountMinor),
			},
		}},
	}

	order, err := p.do(ctx, http.MethodPost, "/v2/checkout/orders", payload)
	if err != nil {
		return PaymentResponse{}, err
	}

	out := PaymentResponse{ProviderRef: order.ID, Status: order.Status}
	for _, l := range order.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			out.ApproveURL = l.Href
			break
		}
	}
	return out, nil
}

// ConfirmPayment captures an approved order.
func (p *PayPalAdapter) ConfirmPayment(ctx context.Context, req PaymentVerifyRequest) (PaymentVerifyResponse, error) {
	id := strings.TrimSpace(req.ProviderRef)
	if id == "" {
		return PaymentVerifyResponse{}, fmt.Errorf("paypal capture requires an order id")
	}
	order, err := p.do(ctx, http.MethodPost, "/v2/checkout/orders/"+id+"/capture", map[string]any{})
	if err != nil {
		return PaymentVerifyResponse{}, err
	}
	return orderResponse(order), nil
}

// VerifyPayment succeeds only when the order and its first capture are both
// COMPLETED.
func (p *PayPalAdapter) VerifyPayment(ctx context.Context, req PaymentVerifyRequest) (PaymentVerifyResponse, error) {
	id := strings.TrimSpace(req.ProviderRef)
	if id == "" {
		return PaymentVerifyResponse{}, fmt.Errorf("paypal verify requires an order id")
	}
	order, err := p.do(ctx, http.MethodGet, "/v2/checkout/orders/"+id, nil)
	if err != nil {
		return PaymentVerifyResponse{}, err
	}
	return orderResponse(order), nil
}

func orderResponse(order *paypalOrder) PaymentVerifyResponse {
	out := PaymentVerifyResponse{
		State:       order.Status,
		ProviderRef: order.ID,
		Raw:         order,
	}

	captureStatus := ""
	if len(order.PurchaseUnits) > 0 {
		unit := order.PurchaseUnits[0]
		out.Reference = unit.ReferenceID
		amount := unit.Amount
		if unit.Payments != nil && len(unit.Payments.Captures) > 0 {
			c := unit.Payments.Captures[0]
			captureStatus = c.Status
			if c.Amount != nil {
				amount = c.Amount
			}
		}
		if amount != nil {
			out.Currency = amount.CurrencyCode
			out.AmountMinor, _ = ParseMinor(amount.Value)
		}
	}

	out.CaptureStatus = captureStatus
	out.Success = order.Status == "COMPLETED" && captureStatus == "COMPLETED"
	switch order.Status {
	case "COMPLETED", "VOIDED":
		out.Terminal = true
	}
	return out
}

// FormatMinor renders cents as a decimal string, 499 -> "4.99".
func FormatMinor(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

// ParseMinor converts a decimal amount string to cents.
func ParseMinor(value string) (int64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(value), ".")
	if len(frac) > 2 {
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	return w*100 + f, nil
}
