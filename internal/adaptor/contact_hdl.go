package adaptor

import (
	"net/http"

	"instructor-portal/internal/dto/request"
	"instructor-portal/internal/usecase"
	"instructor-portal/pkg/utils"

	"go.uber.org/zap"
)

type ContactHandler struct {
	service usecase.ContactService
	log     *zap.Logger
}

func NewContactHandler(service usecase.ContactService, log *zap.Logger) *ContactHandler {
	return &ContactHandler{
		service: service,
		log:     log.With(zap.String("handler", "contact")),
	}
}

// Submit handles POST /api/contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.Submit(r.Context(), &req); err != nil {
		handleServiceError(w, r, h.log, err, "submit contact form")
		return
	}

	utils.ResponseCreated(w, "Message sent", nil)
}
