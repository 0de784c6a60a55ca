// Package payment wraps the Stripe SDK for hosted checkout and price lookups.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"instructor-portal/internal/data/entity"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/price"
	"go.uber.org/zap"
)

// APIError carries the provider's own message so it can be shown to the user
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment provider error %d: %s", e.StatusCode, e.Message)
}

type LineItem struct {
	PriceID  string
	Quantity int
}

type CheckoutSessionParams struct {
	LineItems     []LineItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type SessionLineItem struct {
	PriceID     string
	Description string
	Quantity    int
	AmountTotal int64
}

type CheckoutSession struct {
	ID            string
	URL           string
	CustomerEmail string
	AmountTotal   int64
	Currency      string
	PaymentStatus string
	Metadata      map[string]string
	LineItems     []SessionLineItem
}

type Config struct {
	// BaseURL overrides the Stripe API host; empty means api.stripe.com
	BaseURL    string
	SecretKey  string
	MaxRetries int64
	Timeout    time.Duration
}

type Client struct {
	sessions session.Client
	prices   price.Client
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		LeveledLogger:     log.With(zap.String("client", "stripe")).Sugar(),
		MaxNetworkRetries: stripe.Int64(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	return &Client{
		sessions: session.Client{B: backend, Key: cfg.SecretKey},
		prices:   price.Client{B: backend, Key: cfg.SecretKey},
	}
}

// CreateCheckoutSession requests a hosted checkout session and returns its redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error) {
	p := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		Metadata:   params.Metadata,
	}
	p.Context = ctx
	if params.CustomerEmail != "" {
		p.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	for _, item := range params.LineItems {
		p.LineItems = append(p.LineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(item.PriceID),
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	s, err := c.sessions.New(p)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", toAPIError(err))
	}
	return toSession(s), nil
}

// RetrieveSession re-reads a checkout session including its line items.
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	p := &stripe.CheckoutSessionParams{}
	p.Context = ctx
	p.AddExpand("line_items")

	s, err := c.sessions.Get(sessionID, p)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session %s: %w", sessionID, toAPIError(err))
	}
	return toSession(s), nil
}

// RetrievePrice resolves a price reference into amount, currency and product name.
func (c *Client) RetrievePrice(ctx context.Context, priceID string) (*entity.Price, error) {
	p := &stripe.PriceParams{}
	p.Context = ctx
	p.AddExpand("product")

	pr, err := c.prices.Get(priceID, p)
	if err != nil {
		return nil, fmt.Errorf("retrieve price %s: %w", priceID, toAPIError(err))
	}

	out := &entity.Price{
		ID:         pr.ID,
		UnitAmount: pr.UnitAmount,
		Currency:   string(pr.Currency),
	}
	if pr.Product != nil {
		out.ProductName = pr.Product.Name
	}
	return out, nil
}

func toAPIError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return err
	}
	return &APIError{
		StatusCode: stripeErr.HTTPStatusCode,
		Type:       string(stripeErr.Type),
		Message:    stripeErr.Msg,
	}
}

func toSession(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		CustomerEmail: s.CustomerEmail,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
	if out.CustomerEmail == "" && s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	if s.LineItems != nil {
		for _, li := range s.LineItems.Data {
			item := SessionLineItem{
				Description: li.Description,
				Quantity:    int(li.Quantity),
				AmountTotal: li.AmountTotal,
			}
			if li.Price != nil {
				item.PriceID = li.Price.ID
			}
			out.LineItems = append(out.LineItems, item)
		}
	}
	return out
}
