package adaptor

import (
	"net/http"
	"net/url"
	"strings"

	"instructor-portal/internal/usecase"
	"instructor-portal/pkg/middleware"
	"instructor-portal/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	config  *utils.Config
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, config *utils.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Callback handles GET /auth/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	verifier := utils.CookieValue(r, utils.CodeVerifierCookie)

	session, err := h.service.Callback(r.Context(), code, verifier)
	if err != nil {
		h.log.Warn("Auth callback failed", zap.Error(err))
		http.Redirect(w, r, h.config.Auth.LoginPath+"?error=auth_callback_failed", http.StatusSeeOther)
		return
	}

	utils.SetSessionCookies(w, session, h.config.Auth.CookieSecure)
	http.SetCookie(w, &http.Cookie{Name: utils.CodeVerifierCookie, Path: "/", MaxAge: -1})

	http.Redirect(w, r, safeNext(r.URL.Query().Get("next"), h.config.Auth.LandingPath), http.StatusSeeOther)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := utils.GetTokenFromContext(r.Context())

	if err := h.service.Logout(r.Context(), token); err != nil {
		handleServiceError(w, r, h.log, err, "logout")
		return
	}

	utils.ClearSessionCookies(w, h.config.Auth.CookieSecure)

	if middleware.WantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	utils.ResponseSuccess(w, "Logout successful", nil)
}

// safeNext only follows same-site relative paths
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return next
}
