// Package identity talks to the hosted identity provider (GoTrue compatible auth API).
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"instructor-portal/internal/data/entity"

	"github.com/google/uuid"
	auth "github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUserNotFound = errors.New("identity not found")
)

// APIError is a non-2xx answer from the provider
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity provider error %d: %s", e.StatusCode, e.Message)
}

type Config struct {
	// BaseURL is the project URL; the auth API lives under /auth/v1
	BaseURL        string
	AnonKey        string
	ServiceRoleKey string
	JWTSecret      string
	Timeout        time.Duration
	// LookupConcurrency bounds parallel admin lookups in GetUserEmails
	LookupConcurrency int
}

type Client struct {
	api      auth.Client
	cfg      Config
	verifier *TokenVerifier
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.LookupConcurrency <= 0 {
		cfg.LookupConcurrency = 8
	}
	api := auth.New("", cfg.AnonKey).
		WithCustomAuthURL(strings.TrimRight(cfg.BaseURL, "/") + "/auth/v1")

	return &Client{
		api:      api,
		cfg:      cfg,
		verifier: NewTokenVerifier([]byte(cfg.JWTSecret)),
	}
}

// VerifyAccessToken validates the token signature and expiry locally.
func (c *Client) VerifyAccessToken(token string) (*entity.Identity, error) {
	return c.verifier.Verify(token)
}

// ExchangeCode trades a one-time auth code (PKCE flow) for a session.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier string) (*entity.AuthSession, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	out, err := c.bind(ctx, "").Token(types.TokenRequest{
		GrantType:    "pkce",
		Code:         code,
		CodeVerifier: codeVerifier,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", toAPIError(err))
	}
	return toSession(out.Session)
}

// Refresh issues a new session from a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*entity.AuthSession, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	out, err := c.bind(ctx, "").RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", toAPIError(err))
	}
	return toSession(out.Session)
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := c.bind(ctx, accessToken).Logout(); err != nil {
		return fmt.Errorf("sign out: %w", toAPIError(err))
	}
	return nil
}

// GetUserEmails maps identity ids to account emails using the admin API.
// Ids unknown to the provider are absent from the result.
func (c *Client) GetUserEmails(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var mu sync.Mutex
	emails := make(map[uuid.UUID]string, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.LookupConcurrency)
	admin := c.bind(gctx, c.cfg.ServiceRoleKey)
	for _, id := range ids {
		g.Go(func() error {
			out, err := admin.AdminGetUser(types.AdminGetUserRequest{UserID: id})
			if err != nil {
				err = toAPIError(err)
				if isNotFound(err) {
					return nil
				}
				return fmt.Errorf("get user %s: %w", id, err)
			}

			mu.Lock()
			emails[id] = out.Email
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return emails, nil
}

// DeleteUser removes the identity. Missing identities map to ErrUserNotFound.
func (c *Client) DeleteUser(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	err := c.bind(ctx, c.cfg.ServiceRoleKey).AdminDeleteUser(types.AdminDeleteUserRequest{UserID: id})
	if err == nil {
		return nil
	}
	err = toAPIError(err)
	if isNotFound(err) {
		return ErrUserNotFound
	}
	return fmt.Errorf("delete user %s: %w", id, err)
}

// bind returns an api client whose requests run under ctx and carry bearer.
func (c *Client) bind(ctx context.Context, bearer string) auth.Client {
	api := c.api.WithClient(http.Client{
		Transport: contextTransport{ctx: ctx, base: http.DefaultTransport},
	})
	if bearer != "" {
		api = api.WithToken(bearer)
	}
	return api
}

// contextTransport attaches a caller context to requests built without one.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

// toAPIError recovers the status code from the sdk's "response status code N: body" errors.
func toAPIError(err error) error {
	var (
		status int
		body   string
	)
	msg := err.Error()
	if _, scanErr := fmt.Sscanf(msg, "response status code %d", &status); scanErr != nil {
		return err
	}
	if i := strings.Index(msg, ": "); i >= 0 {
		body = msg[i+2:]
	}
	return &APIError{StatusCode: status, Message: errorMessage(body)}
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func errorMessage(body string) string {
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal([]byte(body), &payload) == nil {
		for _, m := range []string{payload.Msg, payload.Message, payload.ErrorDescription} {
			if m != "" {
				return m
			}
		}
	}
	return body
}

func toSession(s types.Session) (*entity.AuthSession, error) {
	if s.User.ID == uuid.Nil {
		return nil, errors.New("session without user id")
	}

	expiresAt := time.Unix(s.ExpiresAt, 0)
	if s.ExpiresAt == 0 {
		expiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}

	return &entity.AuthSession{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    expiresAt,
		Identity:     entity.Identity{ID: s.User.ID, Email: s.User.Email},
	}, nil
}
