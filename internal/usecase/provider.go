package usecase

import (
	"context"

	"instructor-portal/internal/data/entity"
	"instructor-portal/pkg/content"
	"instructor-portal/pkg/mailer"
	"instructor-portal/pkg/payment"

	"github.com/google/uuid"
)

// IdentityProvider is the subset of the identity client the services use.
type IdentityProvider interface {
	VerifyAccessToken(token string) (*entity.Identity, error)
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*entity.AuthSession, error)
	Refresh(ctx context.Context, refreshToken string) (*entity.AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUserEmails(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, params payment.CheckoutSessionParams) (*payment.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error)
	RetrievePrice(ctx context.Context, priceID string) (*entity.Price, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type ContentProvider interface {
	RetrievePage(ctx context.Context, pageID string) (*content.Page, error)
	ListBlockChildren(ctx context.Context, blockID string) ([]content.Block, error)
}

// Providers groups the external collaborators built in main.
type Providers struct {
	Identity IdentityProvider
	Payment  PaymentProvider
	Mailer   Mailer
	Content  ContentProvider
}
