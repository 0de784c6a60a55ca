package wire

import (
	"instructor-portal/internal/adaptor"
	"instructor-portal/internal/usecase"

	"github.com/go-chi/chi/v5"
)

func wireCart(r chi.Router, cartHandler *adaptor.CartHandler, guard routeGuard) {
	// ==================== PUBLIC ROUTES ====================
	// Instructor-only products are checked by the cart service, not the gate
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(guard(usecase.RequirePublic))

		r.Get("/", cartHandler.Get)
		r.Delete("/", cartHandler.Clear)
		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{productID}", cartHandler.UpdateItem)
		r.Delete("/items/{productID}", cartHandler.RemoveItem)
	})
}
