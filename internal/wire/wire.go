package wire

import (
	"context"
	"net/http"
	"time"

	"instructor-portal/internal/adaptor"
	"instructor-portal/internal/data/repository"
	"instructor-portal/internal/usecase"
	"instructor-portal/pkg/metrics"
	"instructor-portal/pkg/middleware"
	"instructor-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Pinger reports backing store health for /health
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a plain function to Pinger
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Deps are the process-level resources built in main
type Deps struct {
	Repo      *repository.Repository
	Providers usecase.Providers
	Recorder  metrics.Recorder
	Gatherer  prometheus.Gatherer
	Health    []Pinger
}

func Wiring(deps Deps, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(deps.Repo, deps.Providers, deps.Recorder, config, logger)
	override := middleware.NewOverrideVerifier(config.Auth.AdminOverrideKeyHash)
	handler := adaptor.NewHandler(service, config, override, logger)

	router := setupRouter(handler, service, override, deps, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

// routeGuard builds RequireRoute middleware bound to the shared gate
type routeGuard func(req usecase.Requirement) func(http.Handler) http.Handler

func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	override *middleware.OverrideVerifier,
	deps Deps,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger, deps.Recorder))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.BaseURL))

	r.Get("/health", healthHandler(deps.Health, logger))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	guard := routeGuard(func(req usecase.Requirement) func(http.Handler) http.Handler {
		return middleware.RequireRoute(service.Gate, req, override, deps.Recorder, logger)
	})

	r.Group(func(r chi.Router) {
		if config.App.RequestTimeout > 0 {
			r.Use(chimw.Timeout(config.App.RequestTimeout))
		}
		r.Use(middleware.CartSession(config.Redis.CartTTL, config.Auth.CookieSecure))
		r.Use(middleware.Session(service.Session, service.Resolver, config.Auth.CookieSecure, logger))

		wireAuth(r, handler.Auth, guard)
		wireSession(r, handler.Session, guard)
		wireProduct(r, handler.Product, guard)
		wireCart(r, handler.Cart, guard)
		wireCheckout(r, handler.Checkout, guard, config, logger)
		wireInstructor(r, handler.Resource, guard)
		wireAdmin(r, handler.Admin, guard)
		wireContact(r, handler.Contact, guard, config, logger)
	})

	return r
}

func healthHandler(checks []Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for _, check := range checks {
			if err := check.Ping(ctx); err != nil {
				logger.Error("Health check failed", zap.Error(err))
				utils.ResponseServiceUnavailable(w, "unhealthy")
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
