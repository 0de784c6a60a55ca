package middleware

import (
	"context"
	"net/http"
	"strings"

	"instructor-portal/internal/usecase"
	"instructor-portal/pkg/metrics"
	"instructor-portal/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// OverrideKeyHeader carries the operator key that enables admin testing mode
	OverrideKeyHeader = "X-Admin-Override-Key"
	TestingModeHeader = "X-Admin-Testing-Mode"
)

type ctxKey string

const (
	resolutionKey  ctxKey = "resolution"
	testingModeKey ctxKey = "testing_mode"
)

// ResolutionFromContext returns the identity/profile resolution set by Session.
// Without the middleware the resolution is READY and anonymous.
func ResolutionFromContext(ctx context.Context) usecase.Resolution {
	res, ok := ctx.Value(resolutionKey).(usecase.Resolution)
	if !ok {
		return usecase.Resolution{State: usecase.StateReady}
	}
	return res
}

func WithResolution(ctx context.Context, res usecase.Resolution) context.Context {
	ctx = context.WithValue(ctx, resolutionKey, res)
	if res.Identity != nil {
		ctx = utils.SetIdentityContext(ctx, res.Identity.ID, res.Identity.Email)
	}
	return ctx
}

// TestingModeFromContext reports whether admin access was granted through the override
func TestingModeFromContext(ctx context.Context) bool {
	on, _ := ctx.Value(testingModeKey).(bool)
	return on
}

// Session reads the session cookies, refreshes them when needed and resolves the profile.
// It never rejects a request; route requirements are enforced by RequireRoute.
func Session(store usecase.SessionStore, resolver usecase.ProfileResolver, cookieSecure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokens := usecase.SessionTokens{
				AccessToken:  utils.CookieValue(r, utils.AccessTokenCookie),
				RefreshToken: utils.CookieValue(r, utils.RefreshTokenCookie),
			}

			state := store.Current(r.Context(), tokens)
			accessToken := tokens.AccessToken

			switch {
			case state.Refreshed != nil:
				utils.SetSessionCookies(w, state.Refreshed, cookieSecure)
				accessToken = state.Refreshed.AccessToken
			case state.Invalid:
				utils.ClearSessionCookies(w, cookieSecure)
				accessToken = ""
			}

			res := resolver.Resolve(r.Context(), state.Identity)
			if res.State == usecase.StateError {
				logger.Warn("Profile resolution failed",
					zap.Error(res.Err),
					zap.String("path", r.URL.Path),
				)
			}

			ctx := WithResolution(r.Context(), res)
			if accessToken != "" && state.Identity != nil {
				ctx = utils.SetTokenContext(ctx, accessToken)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OverrideVerifier checks operator keys against the configured bcrypt hash.
type OverrideVerifier struct {
	hash []byte
}

func NewOverrideVerifier(hash string) *OverrideVerifier {
	return &OverrideVerifier{hash: []byte(hash)}
}

func (v *OverrideVerifier) Verify(key string) bool {
	if v == nil || len(v.hash) == 0 || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(v.hash, []byte(key)) == nil
}

// RequireRoute enforces a route requirement through the gate. Browser navigations are
// redirected with 303; API calls get a JSON 401/403 carrying the redirect target.
func RequireRoute(
	gate *usecase.Gate,
	req usecase.Requirement,
	override *OverrideVerifier,
	recorder metrics.Recorder,
	logger *zap.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := ResolutionFromContext(r.Context())

			if res.State == usecase.StateError && req == usecase.RequireInstructor {
				recorder.RecordGateDecision(string(req), "error")
				utils.ResponseServiceUnavailable(w, "Could not load your profile, please try again")
				return
			}

			forceAdmin := false
			if req == usecase.RequireAdmin && gate.TestingOverrideEnabled() {
				if key := r.Header.Get(OverrideKeyHeader); key != "" {
					forceAdmin = override.Verify(key)
					if !forceAdmin {
						logger.Warn("Rejected admin override key", zap.String("path", r.URL.Path))
					}
				}
			}

			decision := gate.Decide(req, r.URL.RequestURI(), res.Subject(forceAdmin))
			recorder.RecordGateDecision(string(req), string(decision.Outcome))

			switch decision.Outcome {
			case usecase.OutcomePending:
				utils.ResponseServiceUnavailable(w, "Session is still being resolved, please retry")
				return

			case usecase.OutcomeRedirect:
				writeRedirect(w, r, decision)
				return
			}

			ctx := r.Context()
			if decision.TestingMode {
				logger.Warn("Admin route served in testing mode",
					zap.String("path", r.URL.Path),
					zap.String("identity_id", res.Identity.ID.String()),
				)
				w.Header().Set(TestingModeHeader, "true")
				ctx = context.WithValue(ctx, testingModeKey, true)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeRedirect(w http.ResponseWriter, r *http.Request, decision usecase.Decision) {
	if WantsHTML(r) {
		http.Redirect(w, r, decision.Target, http.StatusSeeOther)
		return
	}

	data := map[string]string{"redirect": decision.Target}
	if decision.Unauthenticated {
		utils.ResponseUnauthorized(w, "Authentication required", data)
		return
	}
	utils.ResponseForbidden(w, "You do not have access to this resource", data)
}

// WantsHTML is true for top-level browser navigations
func WantsHTML(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead && r.Method != http.MethodPost {
		return false
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}
