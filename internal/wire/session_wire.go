package wire

import (
	"instructor-portal/internal/adaptor"
	"instructor-portal/internal/usecase"

	"github.com/go-chi/chi/v5"
)

func wireSession(r chi.Router, sessionHandler *adaptor.SessionHandler, guard routeGuard) {
	// ==================== PUBLIC ROUTES ====================
	// anonymous visitors get an empty session rather than a redirect
	r.Get("/api/session", sessionHandler.Session)

	// ==================== PROTECTED ROUTES ====================
	r.With(guard(usecase.RequireAuthenticated)).Get("/api/profile", sessionHandler.Profile)
}
