package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"instructor-portal/internal/data/entity"
	"instructor-portal/internal/data/repository"
	"instructor-portal/pkg/mailer"
	"instructor-portal/pkg/metrics"
	"instructor-portal/pkg/payment"
	"instructor-portal/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePayment struct {
	createFn   func(ctx context.Context, params payment.CheckoutSessionParams) (*payment.CheckoutSession, error)
	retrieveFn func(ctx context.Context, id string) (*payment.CheckoutSession, error)
	prices     map[string]*entity.Price
	created    []payment.CheckoutSessionParams
}

func (f *fakePayment) CreateCheckoutSession(ctx context.Context, params payment.CheckoutSessionParams) (*payment.CheckoutSession, error) {
	f.created = append(f.created, params)
	return f.createFn(ctx, params)
}

func (f *fakePayment) RetrieveSession(ctx context.Context, id string) (*payment.CheckoutSession, error) {
	return f.retrieveFn(ctx, id)
}

func (f *fakePayment) RetrievePrice(_ context.Context, priceID string) (*entity.Price, error) {
	price, ok := f.prices[priceID]
	if !ok {
		return nil, &payment.APIError{StatusCode: 404, Message: "No such price"}
	}
	return price, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail func(msg mailer.Message) error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.fail != nil {
		if err := m.fail(msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type memoryLedger struct {
	mu       sync.Mutex
	claimed  map[string]bool
	released []string
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{claimed: map[string]bool{}}
}

func (l *memoryLedger) Claim(_ context.Context, n *entity.CheckoutNotification) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.claimed[n.SessionID] {
		return false, nil
	}
	l.claimed[n.SessionID] = true
	return true, nil
}

func (l *memoryLedger) Release(_ context.Context, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.claimed, sessionID)
	l.released = append(l.released, sessionID)
	return nil
}

func testConfig() *utils.Config {
	return &utils.Config{
		App:   utils.AppConfig{BaseURL: "https://portal.example.com/", Env: "test"},
		Email: utils.EmailConfig{From: "portal@example.com", Operator: "ops@example.com"},
	}
}

func TestBuildCheckoutRequest(t *testing.T) {
	cart := NewCart()
	cart.Add(productA, 2)
	cart.Add(productB, 1)

	req, err := BuildCheckoutRequest(cart, "buyer@example.com", "https://portal.example.com/")
	require.NoError(t, err)

	assert.Equal(t, int64(4500), req.AmountTotal)
	assert.Equal(t, []payment.LineItem{
		{PriceID: "price_a", Quantity: 2},
		{PriceID: "price_b", Quantity: 1},
	}, req.Params.LineItems)
	assert.Equal(t, "buyer@example.com", req.Params.CustomerEmail)
	assert.Equal(t, "https://portal.example.com/checkout/success?session_id={CHECKOUT_SESSION_ID}", req.Params.SuccessURL)
	assert.Equal(t, "https://portal.example.com/cart", req.Params.CancelURL)
	assert.JSONEq(t,
		`[{"id":"A","name":"BLS eCard","quantity":2},{"id":"B","name":"ACLS eCard","quantity":1}]`,
		req.Params.Metadata["items"],
	)
	assert.Equal(t, "$45.00", FormatAmount(req.AmountTotal, "usd"))
}

func TestBuildCheckoutRequest_RejectsQuantityOutOfRange(t *testing.T) {
	for _, qty := range []int{0, 101} {
		t.Run(fmt.Sprintf("qty %d", qty), func(t *testing.T) {
			// Cart itself never holds these, so build the invalid snapshot directly
			cart := &Cart{items: []entity.CartItem{
				{Product: productA, Quantity: qty},
				{Product: productB, Quantity: 1},
			}}

			_, err := BuildCheckoutRequest(cart, "buyer@example.com", "https://portal.example.com")

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "items[0].quantity")
		})
	}
}

func TestBuildCheckoutRequest_RejectsEmptyCartAndBadEmail(t *testing.T) {
	_, err := BuildCheckoutRequest(NewCart(), "not-an-email", "https://portal.example.com")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items")
	assert.Contains(t, verr.Fields, "email")
}

func TestOrderMetadata_SplitsLongValues(t *testing.T) {
	var lines []entity.OrderLine
	for i := 0; i < 30; i++ {
		lines = append(lines, entity.OrderLine{ID: fmt.Sprintf("product-%02d", i), Name: strings.Repeat("x", 20), Quantity: i + 1})
	}

	metadata, err := encodeOrderMetadata(lines)
	require.NoError(t, err)

	_, single := metadata["items"]
	assert.False(t, single)
	require.Contains(t, metadata, "items_0")
	require.Contains(t, metadata, "items_1")
	for _, v := range metadata {
		assert.LessOrEqual(t, len([]rune(v)), 500)
	}

	decoded, err := decodeOrderMetadata(metadata)
	require.NoError(t, err)
	assert.Equal(t, lines, decoded)
}

func newCheckoutFixture(t *testing.T) (*checkoutService, *fakePayment, *recordingMailer, *memoryLedger, *CartStore) {
	t.Helper()

	pay := &fakePayment{}
	mail := &recordingMailer{}
	ledger := newMemoryLedger()
	store := NewCartStore(repository.NewMemoryCartStorage(), zap.NewNop())

	svc := NewCheckoutService(store, ledger, pay, mail, metrics.Nop{}, testConfig(), zap.NewNop()).(*checkoutService)
	return svc, pay, mail, ledger, store
}

func TestCheckoutService_Checkout(t *testing.T) {
	svc, pay, _, _, store := newCheckoutFixture(t)
	ctx := context.Background()

	cart := NewCart()
	cart.Add(productA, 2)
	cart.Add(productB, 1)
	require.NoError(t, store.Save(ctx, "cart-1", cart))

	pay.createFn = func(_ context.Context, params payment.CheckoutSessionParams) (*payment.CheckoutSession, error) {
		return &payment.CheckoutSession{ID: "cs_1", URL: "https://pay.example.com/cs_1"}, nil
	}

	res, err := svc.Checkout(ctx, "cart-1", "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_1", res.URL)
	assert.Equal(t, int64(4500), res.AmountTotal)
	require.Len(t, pay.created, 1)
}

func TestCheckoutService_CheckoutProviderFailureKeepsCart(t *testing.T) {
	svc, pay, _, _, store := newCheckoutFixture(t)
	ctx := context.Background()

	cart := NewCart()
	cart.Add(productA, 1)
	require.NoError(t, store.Save(ctx, "cart-1", cart))

	pay.createFn = func(context.Context, payment.CheckoutSessionParams) (*payment.CheckoutSession, error) {
		return nil, &payment.APIError{StatusCode: 400, Message: "No such price: 'price_a'"}
	}

	_, err := svc.Checkout(ctx, "cart-1", "buyer@example.com")

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "No such price: 'price_a'", upErr.Message)

	kept, err := store.Load(ctx, "cart-1")
	require.NoError(t, err)
	assert.Equal(t, cart.Items(), kept.Items())
}

func TestCheckoutService_CheckoutValidatesBeforeProvider(t *testing.T) {
	svc, pay, _, _, _ := newCheckoutFixture(t)

	_, err := svc.Checkout(context.Background(), "empty-cart", "buyer@example.com")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, pay.created)
}

func paidSession() *payment.CheckoutSession {
	return &payment.CheckoutSession{
		ID:            "cs_paid",
		CustomerEmail: "buyer@example.com",
		AmountTotal:   4500,
		Currency:      "usd",
		PaymentStatus: "paid",
		Metadata:      map[string]string{"items": `[{"id":"A","name":"BLS eCard","quantity":2}]`},
	}
}

func TestCheckoutService_ConfirmSendsOnce(t *testing.T) {
	svc, pay, mail, _, _ := newCheckoutFixture(t)
	pay.retrieveFn = func(context.Context, string) (*payment.CheckoutSession, error) { return paidSession(), nil }

	res, err := svc.Confirm(context.Background(), "cs_paid")
	require.NoError(t, err)
	assert.False(t, res.AlreadyConfirmed)
	assert.Equal(t, []entity.OrderLine{{ID: "A", Name: "BLS eCard", Quantity: 2}}, res.Items)
	require.Len(t, mail.sent, 2)
	assert.Equal(t, []string{"ops@example.com"}, mail.sent[0].To)
	assert.Equal(t, []string{"buyer@example.com"}, mail.sent[1].To)
	assert.Contains(t, mail.sent[1].HTML, "$45.00")

	again, err := svc.Confirm(context.Background(), "cs_paid")
	require.NoError(t, err)
	assert.True(t, again.AlreadyConfirmed)
	assert.Len(t, mail.sent, 2)
}

func TestCheckoutService_ConfirmRequiresPaid(t *testing.T) {
	svc, pay, mail, _, _ := newCheckoutFixture(t)
	pay.retrieveFn = func(context.Context, string) (*payment.CheckoutSession, error) {
		s := paidSession()
		s.PaymentStatus = "unpaid"
		return s, nil
	}

	_, err := svc.Confirm(context.Background(), "cs_paid")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, mail.sent)
}

func TestCheckoutService_ConfirmUnknownSession(t *testing.T) {
	svc, pay, _, _, _ := newCheckoutFixture(t)
	pay.retrieveFn = func(context.Context, string) (*payment.CheckoutSession, error) {
		return nil, &payment.APIError{StatusCode: 404, Message: "No such checkout.session"}
	}

	_, err := svc.Confirm(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckoutService_ConfirmReleasesClaimWhenAllSendsFail(t *testing.T) {
	svc, pay, mail, ledger, _ := newCheckoutFixture(t)
	pay.retrieveFn = func(context.Context, string) (*payment.CheckoutSession, error) { return paidSession(), nil }
	mail.fail = func(mailer.Message) error { return errors.New("smtp down") }

	_, err := svc.Confirm(context.Background(), "cs_paid")

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, []string{"cs_paid"}, ledger.released)

	mail.fail = nil
	res, err := svc.Confirm(context.Background(), "cs_paid")
	require.NoError(t, err)
	assert.False(t, res.AlreadyConfirmed)
	assert.Len(t, mail.sent, 2)
}

func TestCheckoutService_ConfirmPartialEmailFailure(t *testing.T) {
	svc, pay, mail, ledger, _ := newCheckoutFixture(t)
	pay.retrieveFn = func(context.Context, string) (*payment.CheckoutSession, error) { return paidSession(), nil }
	mail.fail = func(msg mailer.Message) error {
		if msg.To[0] == "ops@example.com" {
			return errors.New("mailbox full")
		}
		return nil
	}

	res, err := svc.Confirm(context.Background(), "cs_paid")
	require.NoError(t, err)
	assert.Equal(t, []string{"operator notification failed"}, res.NotificationErrors)
	assert.Empty(t, ledger.released)
}
