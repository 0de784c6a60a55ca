package wire

import (
	"instructor-portal/internal/adaptor"
	"instructor-portal/internal/usecase"
	"instructor-portal/pkg/middleware"
	"instructor-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCheckout(
	r chi.Router,
	checkoutHandler *adaptor.CheckoutHandler,
	guard routeGuard,
	config *utils.Config,
	log *zap.Logger,
) {
	limiter := middleware.NewRateLimiter("checkout", config.RateLimit.CheckoutPerMinute, log)

	// ==================== PROTECTED ROUTES ====================
	r.With(guard(usecase.RequireAuthenticated), limiter.Middleware()).Post("/api/checkout", checkoutHandler.Checkout)

	// ==================== PUBLIC ROUTES ====================
	// the session id is verified with the payment provider
	r.With(guard(usecase.RequirePublic), limiter.Middleware()).Post("/api/checkout/confirm", checkoutHandler.Confirm)
}
