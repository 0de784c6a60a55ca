package wire

import (
	"instructor-portal/internal/adaptor"
	"instructor-portal/internal/usecase"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, guard routeGuard) {
	// ==================== PUBLIC ROUTES ====================
	r.With(guard(usecase.RequirePublic)).Get("/auth/callback", authHandler.Callback)
	r.With(guard(usecase.RequirePublic)).Post("/auth/logout", authHandler.Logout)
}
