package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"instructor-portal/internal/usecase"
	"instructor-portal/pkg/middleware"
	"instructor-portal/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	Session  *SessionHandler
	Product  *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Admin    *AdminHandler
	Contact  *ContactHandler
	Resource *ResourceHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, override *middleware.OverrideVerifier, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, config, log),
		Session:  NewSessionHandler(service.Gate, override, log),
		Product:  NewProductHandler(service.Product, log),
		Cart:     NewCartHandler(service.Cart, log),
		Checkout: NewCheckoutHandler(service.Checkout, service.Cart, log),
		Admin:    NewAdminHandler(service.Admin, log),
		Contact:  NewContactHandler(service.Contact, log),
		Resource: NewResourceHandler(service.Resource, log),
	}
}

// decodeJSON rejects unknown fields and trailing data
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// handleServiceError maps the usecase error taxonomy to HTTP responses
func handleServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, operation string) {
	var (
		validationErr  *usecase.ValidationError
		authErr        *usecase.AuthError
		upstreamErr    *usecase.UpstreamError
		consistencyErr *usecase.ConsistencyError
	)

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, validationErr.Message, validationErr.Fields)

	case errors.As(err, &authErr):
		log.Warn(operation+" failed - auth", zap.Error(err))
		if middleware.WantsHTML(r) {
			http.Redirect(w, r, "/login?error=auth", http.StatusSeeOther)
			return
		}
		utils.ResponseUnauthorized(w, authErr.Message, map[string]string{"redirect": "/login?error=auth"})

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, "Not found")

	case errors.Is(err, usecase.ErrInstructorOnly):
		log.Warn(operation+" failed - instructor only", zap.Error(err))
		utils.ResponseForbidden(w, err.Error(), nil)

	case errors.As(err, &upstreamErr):
		log.Error(operation+" failed - upstream", zap.Error(err), zap.String("service", upstreamErr.Service))
		utils.ResponseBadGateway(w, upstreamErr.Message+". Please try again.")

	case errors.As(err, &consistencyErr):
		log.Error(operation+" left inconsistent state", zap.Error(err))
		utils.ResponseInternalError(w, consistencyErr.Message, map[string]string{"code": "consistency_error"})

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error", nil)
	}
}
