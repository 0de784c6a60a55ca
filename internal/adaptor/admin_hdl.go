package adaptor

import (
	"net/http"

	"instructor-portal/internal/dto/request"
	"instructor-portal/internal/usecase"
	"instructor-portal/pkg/middleware"
	"instructor-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdminHandler struct {
	service usecase.AdminService
	log     *zap.Logger
}

func NewAdminHandler(service usecase.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log.With(zap.String("handler", "admin")),
	}
}

// ListProfiles handles GET /api/admin/profiles
func (h *AdminHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, err, "list profiles")
		return
	}

	utils.ResponseSuccess(w, "Profiles retrieved", profiles)
}

// Approve handles POST /api/admin/profiles/{id}/approve
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := profileIDParam(w, r)
	if !ok {
		return
	}

	h.auditTestingMode(r, "approve", id)

	res, err := h.service.Approve(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.log, err, "approve profile")
		return
	}

	utils.ResponseSuccess(w, "Instructor approved", res)
}

// Revoke handles POST /api/admin/profiles/{id}/revoke
func (h *AdminHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, ok := profileIDParam(w, r)
	if !ok {
		return
	}

	h.auditTestingMode(r, "revoke", id)

	res, err := h.service.Revoke(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.log, err, "revoke profile")
		return
	}

	utils.ResponseSuccess(w, "Instructor access revoked", res)
}

// Reject handles DELETE /api/admin/profiles/{id}
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := profileIDParam(w, r)
	if !ok {
		return
	}

	var req request.RejectProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	h.auditTestingMode(r, "reject", id)

	if err := h.service.Reject(r.Context(), id, req.Confirm); err != nil {
		handleServiceError(w, r, h.log, err, "reject profile")
		return
	}

	utils.ResponseSuccess(w, "Profile rejected", nil)
}

func (h *AdminHandler) auditTestingMode(r *http.Request, action string, target uuid.UUID) {
	if !middleware.TestingModeFromContext(r.Context()) {
		return
	}
	actor, _ := utils.GetIdentityIDFromContext(r.Context())
	h.log.Warn("Admin action in testing mode",
		zap.String("action", action),
		zap.String("target_id", target.String()),
		zap.String("actor_id", actor.String()),
	)
}

func profileIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid profile ID", nil)
		return uuid.Nil, false
	}
	return id, true
}
