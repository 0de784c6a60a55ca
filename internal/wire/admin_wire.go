package wire

import (
	"instructor-portal/internal/adaptor"
	"instructor-portal/internal/usecase"

	"github.com/go-chi/chi/v5"
)

func wireAdmin(r chi.Router, adminHandler *adaptor.AdminHandler, guard routeGuard) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/profiles", func(r chi.Router) {
		r.Use(guard(usecase.RequireAdmin))

		r.Get("/", adminHandler.ListProfiles)
		r.Post("/{id}/approve", adminHandler.Approve)
		r.Post("/{id}/revoke", adminHandler.Revoke)
		r.Delete("/{id}", adminHandler.Reject)
	})
}
