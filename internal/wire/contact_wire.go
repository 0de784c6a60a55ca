package wire

import (
	"instructor-portal/internal/adaptor"
	"instructor-portal/internal/usecase"
	"instructor-portal/pkg/middleware"
	"instructor-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireContact(
	r chi.Router,
	contactHandler *adaptor.ContactHandler,
	guard routeGuard,
	config *utils.Config,
	log *zap.Logger,
) {
	limiter := middleware.NewRateLimiter("contact", config.RateLimit.ContactPerMinute, log)

	// ==================== PUBLIC ROUTES ====================
	r.With(guard(usecase.RequirePublic), limiter.Middleware()).Post("/api/contact", contactHandler.Submit)
}
