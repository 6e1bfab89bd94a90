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
	"event-raffle/backend/internal/admin/service"
	"event-raffle/backend/internal/platform/rbac"
	"event-raffle/backend/internal/server/middleware"
	"event-raffle/backend/internal/server/respond"
)

// AdminService is the admin identity manager used by the handler.
type AdminService interface {
	CreateSubordinate(ctx context.Context, requester *domain.Admin, username, password string) (*domain.Admin, error)
	DeleteIdentity(ctx context.Context, requester *domain.Admin, targetID string) error
	ListIdentities(ctx context.Context, requester *domain.Admin) ([]*domain.Admin, error)
}

// Handler serves /api/admin/users. Every route requires a superadmin.
type Handler struct {
	admins AdminService
	log    zerolog.Logger
}

// New returns an admin users Handler.
func New(admins AdminService, log zerolog.Logger) *Handler {
	return &Handler{admins: admins, log: log}
}

// Register mounts the users routes on r. The caller applies authentication; the handler adds the role gate.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(domain.RoleSuperadmin))
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Delete("/{id}", h.handleDelete)
	})
}

// AdminView is the listing projection of an admin; it never includes the password hash.
type AdminView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func newAdminView(a *domain.Admin) AdminView {
	return AdminView{ID: a.ID, Username: a.Username, Role: string(a.Role), CreatedAt: a.CreatedAt}
}

type createRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r createRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requester, _ := middleware.AdminFromContext(r.Context())
	list, err := h.admins.ListIdentities(r.Context(), requester)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch admin users")
		return
	}
	out := make([]AdminView, 0, len(list))
	for _, a := range list {
		out = append(out, newAdminView(a))
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requester, _ := middleware.AdminFromContext(r.Context())
	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	a, err := h.admins.CreateSubordinate(r.Context(), requester, req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err, "Failed to create admin user")
		return
	}
	respond.JSON(w, http.StatusCreated, newAdminView(a))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requester, _ := middleware.AdminFromContext(r.Context())
	if err := h.admins.DeleteIdentity(r.Context(), requester, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err, "Failed to delete admin user")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Admin user deleted"})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, rbac.ErrUnauthenticated):
		respond.Unauthorized(w)
	case errors.Is(err, rbac.ErrForbidden):
		respond.Forbidden(w)
	case errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrPasswordTooLong),
		errors.Is(err, service.ErrSelfDeletion),
		errors.Is(err, service.ErrProtectedRole):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateUsername):
		respond.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg(fallback)
		respond.Error(w, http.StatusInternalServerError, fallback)
	}
}
