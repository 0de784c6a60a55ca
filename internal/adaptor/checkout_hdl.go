package adaptor

import (
	"net/http"
	"strings"

	"instructor-portal/internal/dto/request"
	"instructor-portal/internal/usecase"
	"instructor-portal/pkg/utils"

	"go.uber.org/zap"
)

type CheckoutHandler struct {
	service usecase.CheckoutService
	carts   usecase.CartService
	log     *zap.Logger
}

func NewCheckoutHandler(service usecase.CheckoutService, carts usecase.CartService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		carts:   carts,
		log:     log.With(zap.String("handler", "checkout")),
	}
}

// Checkout handles POST /api/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req request.CheckoutRequest

	formPost := isFormPost(r)
	if formPost {
		if err := r.ParseForm(); err != nil {
			utils.ResponseBadRequest(w, "Invalid form body", nil)
			return
		}
		req.Email = strings.TrimSpace(r.PostForm.Get("email"))
	} else if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			utils.ResponseBadRequest(w, "Invalid request body", nil)
			return
		}
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	email := req.Email
	if email == "" {
		email, _ = utils.GetEmailFromContext(r.Context())
	}
	cartID, _ := utils.GetCartIDFromContext(r.Context())

	session, err := h.service.Checkout(r.Context(), cartID, email)
	if err != nil {
		handleServiceError(w, r, h.log, err, "start checkout")
		return
	}

	if formPost {
		http.Redirect(w, r, session.URL, http.StatusSeeOther)
		return
	}
	utils.ResponseSuccess(w, "Checkout session created", session)
}

// Confirm handles POST /api/checkout/confirm
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req request.ConfirmCheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	confirmation, err := h.service.Confirm(r.Context(), req.SessionID)
	if err != nil {
		handleServiceError(w, r, h.log, err, "confirm checkout")
		return
	}

	if cartID, ok := utils.GetCartIDFromContext(r.Context()); ok {
		if err := h.carts.Clear(r.Context(), cartID); err != nil {
			h.log.Warn("Failed to clear cart after checkout", zap.Error(err), zap.String("cart_id", cartID))
		}
	}

	utils.ResponseSuccess(w, "Purchase confirmed", confirmation)
}

func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}
