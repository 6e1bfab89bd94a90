package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"event-raffle/backend/internal/form/domain"
	"event-raffle/backend/internal/server/respond"
)

// Lister returns the active registration form fields.
type Lister interface {
	ListActive(ctx context.Context) ([]*domain.Field, error)
}

// Handler serves the public registration form schema.
type Handler struct {
	fields Lister
	log    zerolog.Logger
}

func New(fields Lister, log zerolog.Logger) *Handler {
	return &Handler{fields: fields, log: log}
}

// Register mounts GET /fields on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/fields", h.handleList)
}

// FieldView is the JSON form of a field.
type FieldView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Options  []string `json:"options"`
	Required bool     `json:"required"`
	Order    int      `json:"order"`
}

func newFieldView(f *domain.Field) FieldView {
	options := f.Options
	if options == nil {
		options = []string{}
	}
	return FieldView{
		ID:       f.ID,
		Name:     f.Name,
		Label:    f.Label,
		Type:     string(f.Type),
		Options:  options,
		Required: f.Required,
		Order:    f.Order,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	fields, err := h.fields.ListActive(r.Context())
	if err != nil {
		h.log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("list form fields")
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch form fields")
		return
	}
	out := make([]FieldView, 0, len(fields))
	for _, f := range fields {
		out = append(out, newFieldView(f))
	}
	respond.JSON(w, http.StatusOK, out)
}
