package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"event-raffle/backend/internal/participant/domain"
	"event-raffle/backend/internal/server/respond"
)

// Service is the participant pool used by the handler.
type Service interface {
	Submit(ctx context.Context, formData map[string]string) (*domain.Participant, error)
	List(ctx context.Context) ([]*domain.Participant, error)
	Count(ctx context.Context) (int, error)
}

// Handler serves /api/participants and /api/admin/participants.
type Handler struct {
	participants Service
	log          zerolog.Logger
}

// New returns a participants Handler.
func New(participants Service, log zerolog.Logger) *Handler {
	return &Handler{participants: participants, log: log}
}

// Register mounts the public participant routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleListPublic)
	r.Get("/count", h.handleCount)
	r.Post("/submit", h.handleSubmit)
}

// RegisterAdmin mounts the admin participant listing on r. The caller applies authentication.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/", h.handleListAdmin)
}

// PublicView omits form data.
type PublicView struct {
	ID          string    `json:"id"`
	Avatar      string    `json:"avatar"`
	SubmittedAt time.Time `json:"submittedAt"`
	HasWon      bool      `json:"hasWon"`
}

// NewPublicView projects p into its public view.
func NewPublicView(p *domain.Participant) PublicView {
	return PublicView{ID: p.ID, Avatar: p.Avatar, SubmittedAt: p.SubmittedAt, HasWon: p.HasWon}
}

// AdminView carries the full participant record.
type AdminView struct {
	ID          string            `json:"id"`
	FormData    map[string]string `json:"formData"`
	Avatar      string            `json:"avatar"`
	SubmittedAt time.Time         `json:"submittedAt"`
	RaffleEntry bool              `json:"raffleEntry"`
	HasWon      bool              `json:"hasWon"`
}

// NewAdminView projects p into its admin view.
func NewAdminView(p *domain.Participant) AdminView {
	return AdminView{
		ID:          p.ID,
		FormData:    p.FormData,
		Avatar:      p.Avatar,
		SubmittedAt: p.SubmittedAt,
		RaffleEntry: p.RaffleEntry,
		HasWon:      p.HasWon,
	}
}

type submitRequest struct {
	FormData map[string]string `json:"formData"`
}

type submittedView struct {
	ID          string    `json:"id"`
	Avatar      string    `json:"avatar"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type submitResponse struct {
	Success     bool          `json:"success"`
	Message     string        `json:"message"`
	Participant submittedView `json:"participant"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Form data is required")
		return
	}
	p, err := h.participants.Submit(r.Context(), req.FormData)
	switch {
	case errors.Is(err, domain.ErrEmptyFormData):
		respond.Error(w, http.StatusBadRequest, "Form data is required")
		return
	case errors.Is(err, domain.ErrInvalidFormData):
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("submit participant")
		respond.Error(w, http.StatusInternalServerError, "Failed to submit form")
		return
	}
	respond.JSON(w, http.StatusCreated, submitResponse{
		Success:     true,
		Message:     "Registration successful!",
		Participant: submittedView{ID: p.ID, Avatar: p.Avatar, SubmittedAt: p.SubmittedAt},
	})
}

func (h *Handler) handleListPublic(w http.ResponseWriter, r *http.Request) {
	list, err := h.participants.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("list participants")
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch participants")
		return
	}
	out := make([]PublicView, 0, len(list))
	for _, p := range list {
		out = append(out, NewPublicView(p))
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleListAdmin(w http.ResponseWriter, r *http.Request) {
	list, err := h.participants.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("list participants")
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch participants")
		return
	}
	out := make([]AdminView, 0, len(list))
	for _, p := range list {
		out = append(out, NewAdminView(p))
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.participants.Count(r.Context())
	if err != nil {
		h.log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("count participants")
		respond.Error(w, http.StatusInternalServerError, "Failed to count participants")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int{"count": n})
}
