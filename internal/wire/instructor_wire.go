package wire

import (
	"instructor-portal/internal/adaptor"
	"instructor-portal/internal/usecase"

	"github.com/go-chi/chi/v5"
)

func wireInstructor(r chi.Router, resourceHandler *adaptor.ResourceHandler, guard routeGuard) {
	// ==================== INSTRUCTOR ROUTES ====================
	r.Route("/api/instructor", func(r chi.Router) {
		r.Use(guard(usecase.RequireInstructor))

		r.Get("/resources", resourceHandler.Get)
	})
}
