package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"instructor-portal/internal/data/entity"
	"instructor-portal/internal/data/repository"
	"instructor-portal/internal/dto/response"
	"instructor-portal/pkg/mailer"
	"instructor-portal/pkg/metrics"
	"instructor-portal/pkg/payment"
	"instructor-portal/pkg/utils"

	"go.uber.org/zap"
)

const (
	MaxItemQuantity = 100

	// provider metadata values are strings capped at 500 characters
	metadataValueLimit = 500
	metadataItemsKey   = "items"

	paymentStatusPaid = "paid"
)

// CheckoutRequest is the provider request built from a cart.
type CheckoutRequest struct {
	Params      payment.CheckoutSessionParams
	AmountTotal int64
}

// BuildCheckoutRequest validates the cart and email and translates them into provider
// line items and order metadata. Nothing is sent.
func BuildCheckoutRequest(cart *Cart, customerEmail, baseURL string) (*CheckoutRequest, error) {
	fields := map[string]string{}

	items := cart.Items()
	if len(items) == 0 {
		fields["items"] = "cart is empty"
	}
	for i, item := range items {
		if item.Quantity < 1 || item.Quantity > MaxItemQuantity {
			fields[fmt.Sprintf("items[%d].quantity", i)] = "must be between 1 and 100"
		}
		if item.Product.PriceID == "" {
			fields[fmt.Sprintf("items[%d].price_id", i)] = "is missing"
		}
	}
	if !utils.ValidateEmail(customerEmail) {
		fields["email"] = "must be a valid email address"
	}

	if len(fields) > 0 {
		return nil, newValidationError(utils.FormatValidationErrors(fields), fields)
	}

	lineItems := make([]payment.LineItem, 0, len(items))
	lines := make([]entity.OrderLine, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, payment.LineItem{PriceID: item.Product.PriceID, Quantity: item.Quantity})
		lines = append(lines, entity.OrderLine{ID: item.Product.ID, Name: item.Product.Name, Quantity: item.Quantity})
	}

	metadata, err := encodeOrderMetadata(lines)
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(baseURL, "/")
	return &CheckoutRequest{
		Params: payment.CheckoutSessionParams{
			LineItems:     lineItems,
			CustomerEmail: customerEmail,
			SuccessURL:    base + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:     base + "/cart",
			Metadata:      metadata,
		},
		AmountTotal: cart.Total(),
	}, nil
}

// encodeOrderMetadata stores the order lines as JSON, split over items_0..items_n
// when the value is too long for one key.
func encodeOrderMetadata(lines []entity.OrderLine) (map[string]string, error) {
	raw, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("encode order metadata: %w", err)
	}

	value := []rune(string(raw))
	if len(value) <= metadataValueLimit {
		return map[string]string{metadataItemsKey: string(value)}, nil
	}

	metadata := map[string]string{}
	for i := 0; len(value) > 0; i++ {
		n := min(metadataValueLimit, len(value))
		metadata[metadataItemsKey+"_"+strconv.Itoa(i)] = string(value[:n])
		value = value[n:]
	}
	return metadata, nil
}

func decodeOrderMetadata(metadata map[string]string) ([]entity.OrderLine, error) {
	raw, ok := metadata[metadataItemsKey]
	if !ok {
		var sb strings.Builder
		for i := 0; ; i++ {
			part, ok := metadata[metadataItemsKey+"_"+strconv.Itoa(i)]
			if !ok {
				break
			}
			sb.WriteString(part)
		}
		raw = sb.String()
	}
	if raw == "" {
		return nil, nil
	}

	var lines []entity.OrderLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("decode order metadata: %w", err)
	}
	return lines, nil
}

type CheckoutService interface {
	Checkout(ctx context.Context, cartID, customerEmail string) (*response.CheckoutResponse, error)
	Confirm(ctx context.Context, sessionID string) (*response.ConfirmationResponse, error)
}

type checkoutService struct {
	carts         *CartStore
	notifications repository.CheckoutNotificationRepository
	payment       PaymentProvider
	mailer        Mailer
	metrics       metrics.Recorder
	config        *utils.Config
	log           *zap.Logger
}

func NewCheckoutService(
	carts *CartStore,
	notifications repository.CheckoutNotificationRepository,
	payment PaymentProvider,
	mailer Mailer,
	recorder metrics.Recorder,
	config *utils.Config,
	log *zap.Logger,
) CheckoutService {
	return &checkoutService{
		carts:         carts,
		notifications: notifications,
		payment:       payment,
		mailer:        mailer,
		metrics:       recorder,
		config:        config,
		log:           log.With(zap.String("service", "checkout")),
	}
}

func (s *checkoutService) Checkout(ctx context.Context, cartID, customerEmail string) (*response.CheckoutResponse, error) {
	cart, err := s.carts.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	req, err := BuildCheckoutRequest(cart, customerEmail, s.config.App.BaseURL)
	if err != nil {
		s.metrics.RecordCheckout("rejected")
		return nil, err
	}

	session, err := s.payment.CreateCheckoutSession(ctx, req.Params)
	if err != nil {
		s.metrics.RecordCheckout("failed")
		s.log.Error("Failed to create checkout session",
			zap.Error(err),
			zap.String("cart_id", cartID),
		)
		return nil, newUpstreamError("payment", providerMessage(err, "could not start checkout"), err)
	}

	s.metrics.RecordCheckout("created")
	s.log.Info("Checkout session created",
		zap.String("session_id", session.ID),
		zap.Int64("amount_total", req.AmountTotal),
		zap.Int("items", len(req.Params.LineItems)),
	)

	return &response.CheckoutResponse{
		SessionID:   session.ID,
		URL:         session.URL,
		AmountTotal: req.AmountTotal,
	}, nil
}

func (s *checkoutService) Confirm(ctx context.Context, sessionID string) (*response.ConfirmationResponse, error) {
	session, err := s.payment.RetrieveSession(ctx, sessionID)
	if err != nil {
		var apiErr *payment.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		s.log.Error("Failed to retrieve checkout session", zap.Error(err), zap.String("session_id", sessionID))
		return nil, newUpstreamError("payment", "could not verify the checkout session", err)
	}

	if session.PaymentStatus != paymentStatusPaid {
		return nil, newValidationError("payment has not been completed", map[string]string{"payment_status": session.PaymentStatus})
	}

	lines, err := decodeOrderMetadata(session.Metadata)
	if err != nil {
		s.log.Warn("Unreadable order metadata, using provider line items",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
	}
	if len(lines) == 0 {
		lines = linesFromSession(session)
	}

	res := &response.ConfirmationResponse{
		SessionID:     session.ID,
		CustomerEmail: session.CustomerEmail,
		AmountTotal:   session.AmountTotal,
		Currency:      session.Currency,
		Items:         lines,
	}

	claimed, err := s.notifications.Claim(ctx, &entity.CheckoutNotification{
		SessionID:     session.ID,
		CustomerEmail: session.CustomerEmail,
		AmountTotal:   session.AmountTotal,
		ProcessedAt:   time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record confirmation: %w", err)
	}
	if !claimed {
		res.AlreadyConfirmed = true
		return res, nil
	}

	operatorErr := s.send(ctx, "purchase_operator", mailer.Message{
		From:    s.config.Email.From,
		To:      []string{s.config.Email.Operator},
		ReplyTo: session.CustomerEmail,
		Subject: "New eCard purchase",
		HTML:    purchaseBody(session, lines, true),
	})
	if operatorErr != nil {
		res.NotificationErrors = append(res.NotificationErrors, "operator notification failed")
	}

	var purchaserErr error
	if session.CustomerEmail != "" {
		purchaserErr = s.send(ctx, "purchase_customer", mailer.Message{
			From:    s.config.Email.From,
			To:      []string{session.CustomerEmail},
			Subject: "Your eCard purchase",
			HTML:    purchaseBody(session, lines, false),
		})
	} else {
		purchaserErr = mailer.ErrNoRecipients
	}
	if purchaserErr != nil {
		res.NotificationErrors = append(res.NotificationErrors, "purchaser confirmation failed")
	}

	if operatorErr != nil && purchaserErr != nil {
		if err := s.notifications.Release(ctx, session.ID); err != nil {
			s.log.Error("Failed to release confirmation claim", zap.Error(err), zap.String("session_id", session.ID))
		}
		return nil, newUpstreamError("email", "confirmation emails could not be sent", errors.Join(operatorErr, purchaserErr))
	}

	s.metrics.RecordCheckout("confirmed")
	s.log.Info("Checkout confirmed",
		zap.String("session_id", session.ID),
		zap.Int64("amount_total", session.AmountTotal),
		zap.Strings("notification_errors", res.NotificationErrors),
	)
	return res, nil
}

func (s *checkoutService) send(ctx context.Context, kind string, msg mailer.Message) error {
	err := s.mailer.Send(ctx, msg)
	s.metrics.RecordNotification(kind, err)
	if err != nil {
		s.log.Error("Failed to send notification", zap.Error(err), zap.String("kind", kind))
	}
	return err
}

func linesFromSession(session *payment.CheckoutSession) []entity.OrderLine {
	lines := make([]entity.OrderLine, 0, len(session.LineItems))
	for _, item := range session.LineItems {
		lines = append(lines, entity.OrderLine{ID: item.PriceID, Name: item.Description, Quantity: item.Quantity})
	}
	return lines
}

func purchaseBody(session *payment.CheckoutSession, lines []entity.OrderLine, operator bool) string {
	sorted := make([]entity.OrderLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var sb strings.Builder
	if operator {
		fmt.Fprintf(&sb, "<p>New order from %s.</p>", html.EscapeString(session.CustomerEmail))
	} else {
		sb.WriteString("<p>Thank you for your purchase. Your eCards will be issued shortly.</p>")
	}
	sb.WriteString("<ul>")
	for _, line := range sorted {
		fmt.Fprintf(&sb, "<li>%s &times; %d</li>", html.EscapeString(line.Name), line.Quantity)
	}
	sb.WriteString("</ul>")
	fmt.Fprintf(&sb, "<p>Total: %s</p>", FormatAmount(session.AmountTotal, session.Currency))
	fmt.Fprintf(&sb, "<p>Reference: %s</p>", html.EscapeString(session.ID))
	return sb.String()
}

// FormatAmount renders minor units as a decimal amount, e.g. 4500 usd -> $45.00.
func FormatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	amount := fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
	if strings.EqualFold(currency, "usd") || currency == "" {
		return "$" + amount
	}
	return amount + " " + strings.ToUpper(currency)
}

func providerMessage(err error, fallback string) string {
	var apiErr *payment.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
