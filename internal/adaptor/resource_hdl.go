package adaptor

import (
	"net/http"

	"instructor-portal/internal/usecase"
	"instructor-portal/pkg/utils"

	"go.uber.org/zap"
)

type ResourceHandler struct {
	service usecase.ResourceService
	log     *zap.Logger
}

func NewResourceHandler(service usecase.ResourceService, log *zap.Logger) *ResourceHandler {
	return &ResourceHandler{
		service: service,
		log:     log.With(zap.String("handler", "resource")),
	}
}

// Get handles GET /api/instructor/resources
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.Get(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, err, "get resources")
		return
	}

	utils.ResponseSuccess(w, "Resources retrieved", page)
}
