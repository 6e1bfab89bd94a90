package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"event-raffle/backend/internal/participant/repository"
	"event-raffle/backend/internal/participant/service"
)

type fixedAvatar struct{}

func (fixedAvatar) Generate() string { return "data:image/svg+xml;base64,AA==" }

func newRouter() http.Handler {
	svc := service.NewParticipantService(repository.NewMemoryRepository(), fixedAvatar{}, nil)
	h := New(svc, zerolog.Nop())
	r := chi.NewRouter()
	r.Route("/api/participants", h.Register)
	r.Route("/api/admin/participants", h.RegisterAdmin)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestSubmitAndList(t *testing.T) {
	r := newRouter()
	rec := do(r, http.MethodPost, "/api/participants/submit", `{"formData":{"name":"Abebe","email":"abebe@example.com"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body)
	}
	var sub submitResponse
	_ = json.NewDecoder(rec.Body).Decode(&sub)
	if !sub.Success || sub.Participant.ID == "" || sub.Participant.Avatar == "" {
		t.Errorf("submit response = %+v", sub)
	}

	rec = do(r, http.MethodGet, "/api/participants", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "abebe@example.com") {
		t.Error("public listing must not expose form data")
	}
	var pub []PublicView
	_ = json.NewDecoder(rec.Body).Decode(&pub)
	if len(pub) != 1 || pub[0].HasWon {
		t.Errorf("public list = %+v", pub)
	}

	rec = do(r, http.MethodGet, "/api/admin/participants", "")
	var adm []AdminView
	_ = json.NewDecoder(rec.Body).Decode(&adm)
	if len(adm) != 1 || adm[0].FormData["email"] != "abebe@example.com" || !adm[0].RaffleEntry {
		t.Errorf("admin list = %+v", adm)
	}

	rec = do(r, http.MethodGet, "/api/participants/count", "")
	if got := strings.TrimSpace(rec.Body.String()); got != `{"count":1}` {
		t.Errorf("count body = %s", got)
	}
}

func TestSubmit_Invalid(t *testing.T) {
	r := newRouter()
	for _, body := range []string{`{}`, `{"formData":{}}`, `{"formData":{"age":42}}`, `{"formData":{"name":"A\u0000da"}}`, `nope`} {
		if rec := do(r, http.MethodPost, "/api/participants/submit", body); rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}
