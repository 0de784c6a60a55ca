package usecase

import (
	"context"

	"instructor-portal/internal/data/entity"

	"go.uber.org/zap"
)

// SessionTokens are the provider tokens read from the request cookies.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
}

func (t SessionTokens) Empty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

// SessionState is the outcome of reading a browser session.
type SessionState struct {
	Identity *entity.Identity
	// Refreshed holds new tokens the caller must write back
	Refreshed *entity.AuthSession
	// Invalid means tokens were presented but could not be used and should be cleared
	Invalid bool
}

type SessionStore interface {
	Current(ctx context.Context, tokens SessionTokens) SessionState
}

type sessionStore struct {
	identity IdentityProvider
	log      *zap.Logger
}

func NewSessionStore(identity IdentityProvider, log *zap.Logger) SessionStore {
	return &sessionStore{
		identity: identity,
		log:      log.With(zap.String("service", "session")),
	}
}

// Current verifies the access token locally and falls back to the refresh token
// when the access token is missing or no longer valid.
func (s *sessionStore) Current(ctx context.Context, tokens SessionTokens) SessionState {
	if tokens.Empty() {
		return SessionState{}
	}

	if tokens.AccessToken != "" {
		identity, err := s.identity.VerifyAccessToken(tokens.AccessToken)
		if err == nil {
			return SessionState{Identity: identity}
		}
		s.log.Debug("Access token rejected", zap.Error(err))
	}

	if tokens.RefreshToken == "" {
		return SessionState{Invalid: true}
	}

	session, err := s.identity.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		s.log.Warn("Failed to refresh session", zap.Error(err))
		return SessionState{Invalid: true}
	}

	identity := session.Identity
	return SessionState{Identity: &identity, Refreshed: session}
}
