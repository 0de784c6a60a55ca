package wire

import (
	"instructor-portal/internal/adaptor"
	"instructor-portal/internal/usecase"

	"github.com/go-chi/chi/v5"
)

func wireProduct(r chi.Router, productHandler *adaptor.ProductHandler, guard routeGuard) {
	// ==================== PUBLIC ROUTES ====================
	r.Route("/api/products", func(r chi.Router) {
		r.Use(guard(usecase.RequirePublic))

		r.Get("/", productHandler.List)
		r.Get("/{id}", productHandler.Get)
	})
}
