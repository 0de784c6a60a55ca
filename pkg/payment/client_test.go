package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, SecretKey: "sk_test_123"}, zap.NewNop())
}

func TestCreateCheckoutSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "price_basic", r.PostForm.Get("line_items[0][price]"))
		assert.Equal(t, "2", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "buyer@example.com", r.PostForm.Get("customer_email"))
		assert.Equal(t, `[{"id":"ecard-basic"}]`, r.PostForm.Get("metadata[items]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	})

	s, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
		LineItems:     []LineItem{{PriceID: "price_basic", Quantity: 2}},
		CustomerEmail: "buyer@example.com",
		SuccessURL:    "https://portal.example.com/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "https://portal.example.com/cart",
		Metadata:      map[string]string{"items": `[{"id":"ecard-basic"}]`},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", s.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", s.URL)
}

func TestRetrieveSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		assert.Equal(t, "line_items", r.URL.Query().Get("expand[0]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cs_test_1",
			"object": "checkout.session",
			"amount_total": 9000,
			"currency": "usd",
			"payment_status": "paid",
			"customer_details": {"email": "buyer@example.com"},
			"metadata": {"items": "[]"},
			"line_items": {"object": "list", "data": [
				{"id": "li_1", "object": "item", "description": "Basic eCard", "quantity": 2, "amount_total": 9000, "price": {"id": "price_basic", "object": "price"}}
			]}
		}`))
	})

	s, err := client.RetrieveSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, "paid", s.PaymentStatus)
	assert.Equal(t, "buyer@example.com", s.CustomerEmail)
	assert.Equal(t, int64(9000), s.AmountTotal)
	assert.Equal(t, "usd", s.Currency)
	require.Len(t, s.LineItems, 1)
	assert.Equal(t, SessionLineItem{PriceID: "price_basic", Description: "Basic eCard", Quantity: 2, AmountTotal: 9000}, s.LineItems[0])
}

func TestRetrievePrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/prices/price_basic", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"price_basic","object":"price","unit_amount":4500,"currency":"usd","product":{"id":"prod_1","object":"product","name":"Basic eCard"}}`))
	})

	p, err := client.RetrievePrice(context.Background(), "price_basic")
	require.NoError(t, err)
	assert.Equal(t, int64(4500), p.UnitAmount)
	assert.Equal(t, "usd", p.Currency)
	assert.Equal(t, "Basic eCard", p.ProductName)
}

func TestProviderErrorsKeepTheirMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such price: 'price_gone'"}}`))
	})

	_, err := client.RetrievePrice(context.Background(), "price_gone")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "invalid_request_error", apiErr.Type)
	assert.Equal(t, "No such price: 'price_gone'", apiErr.Message)
}
