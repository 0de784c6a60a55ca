package adaptor

import (
	"net/http"

	"instructor-portal/internal/dto/request"
	"instructor-portal/internal/usecase"
	"instructor-portal/pkg/middleware"
	"instructor-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CartHandler struct {
	service usecase.CartService
	log     *zap.Logger
}

func NewCartHandler(service usecase.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		log:     log.With(zap.String("handler", "cart")),
	}
}

// Get handles GET /api/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cartID, _ := utils.GetCartIDFromContext(r.Context())

	cart, err := h.service.Get(r.Context(), cartID)
	if err != nil {
		handleServiceError(w, r, h.log, err, "get cart")
		return
	}

	utils.ResponseSuccess(w, "Cart retrieved", cart)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req request.AddCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cartID, _ := utils.GetCartIDFromContext(r.Context())
	isInstructor := middleware.ResolutionFromContext(r.Context()).IsInstructor()

	cart, err := h.service.AddItem(r.Context(), cartID, req.ProductID, quantity, isInstructor)
	if err != nil {
		handleServiceError(w, r, h.log, err, "add cart item")
		return
	}

	utils.ResponseSuccess(w, "Item added to cart", cart)
}

// UpdateItem handles PUT /api/cart/items/{productID}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	cartID, _ := utils.GetCartIDFromContext(r.Context())

	cart, err := h.service.UpdateQuantity(r.Context(), cartID, chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		handleServiceError(w, r, h.log, err, "update cart item")
		return
	}

	utils.ResponseSuccess(w, "Cart updated", cart)
}

// RemoveItem handles DELETE /api/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, _ := utils.GetCartIDFromContext(r.Context())

	cart, err := h.service.RemoveItem(r.Context(), cartID, chi.URLParam(r, "productID"))
	if err != nil {
		handleServiceError(w, r, h.log, err, "remove cart item")
		return
	}

	utils.ResponseSuccess(w, "Item removed", cart)
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cartID, _ := utils.GetCartIDFromContext(r.Context())

	if err := h.service.Clear(r.Context(), cartID); err != nil {
		handleServiceError(w, r, h.log, err, "clear cart")
		return
	}

	utils.ResponseSuccess(w, "Cart cleared", nil)
}
