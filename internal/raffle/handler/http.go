package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	admindomain "event-raffle/backend/internal/admin/domain"
	participantdomain "event-raffle/backend/internal/participant/domain"
	participanthandler "event-raffle/backend/internal/participant/handler"
	"event-raffle/backend/internal/raffle/domain"
	"event-raffle/backend/internal/raffle/lock"
	"event-raffle/backend/internal/raffle/service"
	"event-raffle/backend/internal/server/middleware"
	"event-raffle/backend/internal/server/respond"
)

// Drawer runs a draw.
type Drawer interface {
	Draw(ctx context.Context, actor *admindomain.Admin) (*service.DrawResult, error)
}

// Settings reads and updates the raffle configuration.
type Settings interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Peek(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, actor *admindomain.Admin, req service.UpdateSettingsRequest) (*domain.Settings, error)
}

// Participants is the read side of the participant pool.
type Participants interface {
	CountRaffleEntries(ctx context.Context) (int, error)
	ListWinners(ctx context.Context) ([]*participantdomain.Participant, error)
}

// Handler serves /api/raffle and /api/admin/raffle.
type Handler struct {
	draws        Drawer
	settings     Settings
	participants Participants
	requireAuth  func(http.Handler) http.Handler
	log          zerolog.Logger
}

// New returns a raffle Handler.
func New(draws Drawer, settings Settings, participants Participants, requireAuth func(http.Handler) http.Handler, log zerolog.Logger) *Handler {
	return &Handler{
		draws:        draws,
		settings:     settings,
		participants: participants,
		requireAuth:  requireAuth,
		log:          log,
	}
}

// Register mounts the raffle routes on r. Only /info is public.
func (h *Handler) Register(r chi.Router) {
	r.Get("/info", h.handleInfo)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/draw", h.handleDraw)
		r.Get("/winners", h.handleWinners)
	})
}

// RegisterAdmin mounts the settings routes on r. The caller applies authentication.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/", h.handleGetSettings)
	r.Put("/", h.handleUpdateSettings)
}

// SettingsView is the JSON form of the raffle configuration.
type SettingsView struct {
	Prize           string     `json:"prize"`
	Description     string     `json:"description"`
	IsActive        bool       `json:"isActive"`
	DrawDate        *time.Time `json:"drawDate"`
	NumberOfWinners int        `json:"numberOfWinners"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// NewSettingsView projects s.
func NewSettingsView(s *domain.Settings) SettingsView {
	return SettingsView{
		Prize:           s.Prize,
		Description:     s.Description,
		IsActive:        s.IsActive,
		DrawDate:        s.DrawDate,
		NumberOfWinners: s.NumberOfWinners,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

type infoResponse struct {
	Settings     any                             `json:"settings"`
	TotalEntries int                             `json:"totalEntries"`
	Winners      []participanthandler.PublicView `json:"winners"`
}

type drawResponse struct {
	Message string                         `json:"message"`
	Winners []participanthandler.AdminView `json:"winners"`
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.settings.Peek(ctx)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch raffle info")
		return
	}
	total, err := h.participants.CountRaffleEntries(ctx)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch raffle info")
		return
	}
	winners, err := h.participants.ListWinners(ctx)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch raffle info")
		return
	}
	resp := infoResponse{Settings: struct{}{}, TotalEntries: total, Winners: make([]participanthandler.PublicView, 0, len(winners))}
	if settings != nil {
		resp.Settings = NewSettingsView(settings)
	}
	for _, p := range winners {
		resp.Winners = append(resp.Winners, participanthandler.NewPublicView(p))
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDraw(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.AdminFromContext(r.Context())
	res, err := h.draws.Draw(r.Context(), actor)
	var insufficient *service.InsufficientParticipantsError
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNoConfiguration):
		respond.Error(w, http.StatusNotFound, "Raffle settings not found")
		return
	case errors.Is(err, service.ErrNoEligibleParticipants):
		respond.Error(w, http.StatusBadRequest, "No eligible participants for raffle")
		return
	case errors.As(err, &insufficient):
		respond.Error(w, http.StatusBadRequest, insufficient.Error())
		return
	case errors.Is(err, lock.ErrNotAcquired):
		respond.Error(w, http.StatusConflict, "A draw is already in progress")
		return
	default:
		h.fail(w, r, err, "Failed to draw winners")
		return
	}
	out := drawResponse{
		Message: fmt.Sprintf("%d winner(s) selected successfully!", len(res.Winners)),
		Winners: make([]participanthandler.AdminView, 0, len(res.Winners)),
	}
	for _, p := range res.Winners {
		out.Winners = append(out.Winners, participanthandler.NewAdminView(p))
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleWinners(w http.ResponseWriter, r *http.Request) {
	winners, err := h.participants.ListWinners(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch winners")
		return
	}
	out := make([]participanthandler.AdminView, 0, len(winners))
	for _, p := range winners {
		out = append(out, participanthandler.NewAdminView(p))
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch raffle settings")
		return
	}
	respond.JSON(w, http.StatusOK, NewSettingsView(s))
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSettingsRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	actor, _ := middleware.AdminFromContext(r.Context())
	s, err := h.settings.Update(r.Context(), actor, req)
	if errors.Is(err, service.ErrInvalidSettings) {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.fail(w, r, err, "Failed to update raffle settings")
		return
	}
	respond.JSON(w, http.StatusOK, NewSettingsView(s))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	h.log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg(msg)
	respond.Error(w, http.StatusInternalServerError, msg)
}
