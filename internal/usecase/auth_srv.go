package usecase

import (
	"context"

	"instructor-portal/internal/data/entity"

	"go.uber.org/zap"
)

type AuthService interface {
	// Callback exchanges the provider's one-time code for a session
	Callback(ctx context.Context, code, codeVerifier string) (*entity.AuthSession, error)
	Logout(ctx context.Context, accessToken string) error
}

type authService struct {
	identity IdentityProvider
	log      *zap.Logger
}

func NewAuthService(identity IdentityProvider, log *zap.Logger) AuthService {
	return &authService{
		identity: identity,
		log:      log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Callback(ctx context.Context, code, codeVerifier string) (*entity.AuthSession, error) {
	if code == "" {
		return nil, &AuthError{Message: "missing auth code"}
	}

	session, err := s.identity.ExchangeCode(ctx, code, codeVerifier)
	if err != nil {
		s.log.Warn("Auth code exchange failed", zap.Error(err))
		return nil, &AuthError{Message: "could not complete sign-in", Err: err}
	}

	s.log.Info("User signed in", zap.String("identity_id", session.Identity.ID.String()))
	return session, nil
}

// Logout revokes the provider session. Failures are logged only; cookies are cleared regardless.
func (s *authService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := s.identity.SignOut(ctx, accessToken); err != nil {
		s.log.Warn("Provider sign-out failed", zap.Error(err))
	}
	return nil
}
