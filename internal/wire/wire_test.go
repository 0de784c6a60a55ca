package wire

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"instructor-portal/internal/data/repository"
	"instructor-portal/internal/usecase"
	"instructor-portal/pkg/identity"
	"instructor-portal/pkg/mailer"
	"instructor-portal/pkg/metrics"
	"instructor-portal/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const jwtSecret = "test-secret"

func testConfig() *utils.Config {
	cfg := &utils.Config{}
	cfg.App.Env = "test"
	cfg.App.BaseURL = "https://portal.example.com"
	cfg.Redis.CartTTL = time.Hour
	cfg.Auth.JWTSecret = jwtSecret
	cfg.Auth.LoginPath = "/login"
	cfg.Auth.LandingPath = "/account"
	cfg.RateLimit.ContactPerMinute = 2
	cfg.RateLimit.CheckoutPerMinute = 5
	return cfg
}

func newTestApp(t *testing.T, health ...Pinger) (*App, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	config := testConfig()
	logger := zap.NewNop()
	registry := prometheus.NewRegistry()

	repo := repository.NewRepository(mock, repository.NewMemoryCartStorage(), logger)
	app := Wiring(Deps{
		Repo: repo,
		Providers: usecase.Providers{
			Identity: identity.NewClient(identity.Config{BaseURL: "http://identity.invalid", JWTSecret: jwtSecret}),
			Mailer:   mailer.NewLogMailer(logger),
		},
		Recorder: metrics.NewCollector(registry),
		Gatherer: registry,
		Health:   health,
	}, config, logger)

	return app, mock
}

func signToken(t *testing.T, id uuid.UUID, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, identity.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signed
}

func serve(app *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t, PingerFunc(func(context.Context) error { return nil }))
	assert.Equal(t, http.StatusOK, serve(app, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)

	down, _ := newTestApp(t, PingerFunc(func(context.Context) error { return errors.New("connection refused") }))
	assert.Equal(t, http.StatusServiceUnavailable, serve(down, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	serve(app, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portal_http_requests_total")
}

func TestAnonymousCartIssuesCookie(t *testing.T) {
	app, _ := newTestApp(t)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var cartCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == utils.CartCookie {
			cartCookie = c
		}
	}
	require.NotNil(t, cartCookie)
	assert.True(t, utils.IsValidCartID(cartCookie.Value))
	assert.True(t, cartCookie.HttpOnly)
}

func TestAnonymousProtectedRoutes(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Accept", "application/json")
	assert.Equal(t, http.StatusUnauthorized, serve(app, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/instructor/resources", nil)
	req.Header.Set("Accept", "text/html")
	rec := serve(app, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fapi%2Finstructor%2Fresources", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusUnauthorized, serve(app, httptest.NewRequest(http.MethodGet, "/api/admin/profiles", nil)).Code)
}

func TestSignedInNonInstructorIsSentToLanding(t *testing.T) {
	app, mock := newTestApp(t)
	id := uuid.New()
	updated := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, is_instructor, updated_at").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "is_instructor", "updated_at"}).
			AddRow(id, false, &updated))

	req := httptest.NewRequest(http.MethodGet, "/api/instructor/resources", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: signToken(t, id, "p@example.com")})
	rec := serve(app, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"/account"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContactIsRateLimited(t *testing.T) {
	app, _ := newTestApp(t)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		codes = append(codes, serve(app, req).Code)
	}

	assert.Equal(t, http.StatusBadRequest, codes[0])
	assert.Equal(t, http.StatusBadRequest, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}
