package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/rs/zerolog"

	"event-raffle/backend/internal/admin/domain"
	adminservice "event-raffle/backend/internal/admin/service"
	"event-raffle/backend/internal/identity/service"
	"event-raffle/backend/internal/platform/rbac"
	"event-raffle/backend/internal/server/middleware"
	"event-raffle/backend/internal/server/respond"
)

// SessionCookieMaxAge is the lifetime of the session cookie. It outlives the 12h token;
// the browser keeps sending an expired token, which the guard rejects.
const SessionCookieMaxAge = 24 * time.Hour

// AuthService performs password login.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
}

// PasswordChanger rotates an admin's password.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, requester *domain.Admin, current, next string) error
}

// Handler serves the /api/auth endpoints.
type Handler struct {
	auth        AuthService
	passwords   PasswordChanger
	requireAuth func(http.Handler) http.Handler
	production  bool
	log         zerolog.Logger
}

// New returns an auth Handler. production selects Secure, SameSite=None cookies.
func New(auth AuthService, passwords PasswordChanger, requireAuth func(http.Handler) http.Handler, production bool, log zerolog.Logger) *Handler {
	return &Handler{
		auth:        auth,
		passwords:   passwords,
		requireAuth: requireAuth,
		production:  production,
		log:         log,
	}
}

// Register mounts the auth routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/me", h.handleMe)
		r.Post("/password", h.handleChangePassword)
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// UserView is the public projection of an admin identity.
type UserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// NewUserView projects a into its public view.
func NewUserView(a *domain.Admin) UserView {
	return UserView{ID: a.ID, Username: a.Username, Role: string(a.Role)}
}

type loginResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type userResponse struct {
	User UserView `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		h.log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("login")
		respond.Error(w, http.StatusInternalServerError, "Failed to login")
		return
	}
	http.SetCookie(w, h.sessionCookie(res.Token, int(SessionCookieMaxAge.Seconds())))
	respond.JSON(w, http.StatusOK, loginResponse{Token: res.Token, User: NewUserView(res.Admin)})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	respond.JSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	a, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	respond.JSON(w, http.StatusOK, userResponse{User: NewUserView(a)})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r changePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	a, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	var req changePasswordRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Current and new password are required")
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, "Current and new password are required")
		return
	}
	err := h.passwords.ChangePassword(r.Context(), a, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		respond.JSON(w, http.StatusOK, messageResponse{Message: "Password updated"})
	case errors.Is(err, adminservice.ErrInvalidCredentials):
		respond.Error(w, http.StatusUnauthorized, "Current password is incorrect")
	case errors.Is(err, adminservice.ErrWeakPassword), errors.Is(err, adminservice.ErrPasswordTooLong):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, rbac.ErrUnauthenticated):
		respond.Unauthorized(w)
	default:
		h.log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("change password")
		respond.Error(w, http.StatusInternalServerError, "Failed to update password")
	}
}

// sessionCookie builds the session cookie. A negative maxAge clears it.
func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     rbac.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	}
	if h.production {
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}
