package adaptor

import (
	"net/http"

	"instructor-portal/internal/dto/response"
	"instructor-portal/internal/usecase"
	"instructor-portal/pkg/middleware"
	"instructor-portal/pkg/utils"

	"go.uber.org/zap"
)

type SessionHandler struct {
	gate     *usecase.Gate
	override *middleware.OverrideVerifier
	log      *zap.Logger
}

func NewSessionHandler(gate *usecase.Gate, override *middleware.OverrideVerifier, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		gate:     gate,
		override: override,
		log:      log.With(zap.String("handler", "session")),
	}
}

// Session handles GET /api/session
func (h *SessionHandler) Session(w http.ResponseWriter, r *http.Request) {
	res := middleware.ResolutionFromContext(r.Context())

	body := response.SessionResponse{
		State:    string(res.State),
		Loading:  res.Loading(),
		Identity: response.IdentityToResponse(res.Identity),
		Profile:  response.ProfileToResponse(res.Profile),
	}

	if res.Identity != nil {
		body.IsAdmin = h.gate.IsAdmin(res.Identity.Email)
		if !body.IsAdmin && h.gate.TestingOverrideEnabled() {
			body.TestingMode = h.override.Verify(r.Header.Get(middleware.OverrideKeyHeader))
		}
	}
	if res.Err != nil {
		body.Error = "profile could not be loaded"
	}

	if body.TestingMode {
		w.Header().Set(middleware.TestingModeHeader, "true")
	}
	utils.ResponseSuccess(w, "Session retrieved", body)
}

// Profile handles GET /api/profile
func (h *SessionHandler) Profile(w http.ResponseWriter, r *http.Request) {
	res := middleware.ResolutionFromContext(r.Context())
	if res.State == usecase.StateError {
		h.log.Warn("Profile requested after failed resolution", zap.Error(res.Err))
		utils.ResponseServiceUnavailable(w, "Could not load your profile, please try again")
		return
	}
	if res.Profile == nil {
		utils.ResponseNotFound(w, "Profile not found")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved", response.ProfileToResponse(res.Profile))
}
