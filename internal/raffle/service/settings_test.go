package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"event-raffle/backend/internal/raffle/domain"
	rafflerepo "event-raffle/backend/internal/raffle/repository"
)

func ptr[T any](v T) *T { return &v }

func TestSettingsService_GetCreatesDefaults(t *testing.T) {
	repo := rafflerepo.NewMemoryRepository()
	svc := NewSettingsService(repo, nil)

	if s, _ := svc.Peek(context.Background()); s != nil {
		t.Fatal("Peek before Get: want nil")
	}
	s, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.Prize != domain.DefaultPrize || !s.IsActive || s.NumberOfWinners != 1 || s.DrawDate != nil || s.Description != "" {
		t.Errorf("unexpected defaults: %+v", s)
	}
	stored, _ := repo.Get(context.Background())
	if stored == nil {
		t.Error("defaults not persisted")
	}
}

func TestSettingsService_Update(t *testing.T) {
	svc := NewSettingsService(rafflerepo.NewMemoryRepository(), nil)
	draw := time.Date(2025, 12, 24, 18, 0, 0, 0, time.UTC)

	s, err := svc.Update(context.Background(), nil, UpdateSettingsRequest{
		Prize:           ptr("  Bicycle "),
		DrawDate:        SetTime(draw),
		NumberOfWinners: ptr(3),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Prize != "Bicycle" || s.NumberOfWinners != 3 || s.DrawDate == nil || !s.DrawDate.Equal(draw) {
		t.Errorf("unexpected settings: %+v", s)
	}
	if !s.IsActive {
		t.Error("unset IsActive must keep its value")
	}

	s, err = svc.Update(context.Background(), nil, UpdateSettingsRequest{IsActive: ptr(false)})
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if s.IsActive || s.Prize != "Bicycle" || s.NumberOfWinners != 3 || s.DrawDate == nil {
		t.Errorf("partial update changed other fields: %+v", s)
	}

	s, err = svc.Update(context.Background(), nil, UpdateSettingsRequest{DrawDate: ClearTime()})
	if err != nil {
		t.Fatalf("clearing Update: %v", err)
	}
	if s.DrawDate != nil {
		t.Errorf("DrawDate = %v, want cleared", s.DrawDate)
	}
}

func TestSettingsService_ZeroWinnersNotStored(t *testing.T) {
	repo := rafflerepo.NewMemoryRepository()
	svc := NewSettingsService(repo, nil)
	if _, err := svc.Update(context.Background(), nil, UpdateSettingsRequest{NumberOfWinners: ptr(0)}); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("want ErrInvalidSettings, got %v", err)
	}
	s, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.NumberOfWinners != 1 {
		t.Errorf("NumberOfWinners = %d, want 1", s.NumberOfWinners)
	}
}

func TestOptionalTime_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		set     bool
		hasTime bool
	}{
		{"absent", `{}`, false, false},
		{"null", `{"drawDate":null}`, true, false},
		{"value", `{"drawDate":"2025-12-24T18:00:00Z"}`, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateSettingsRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if req.DrawDate.Set != tt.set || (req.DrawDate.Value != nil) != tt.hasTime {
				t.Errorf("DrawDate = %+v", req.DrawDate)
			}
		})
	}
	var req UpdateSettingsRequest
	if err := json.Unmarshal([]byte(`{"drawDate":"tomorrow"}`), &req); err == nil {
		t.Error("want error for a malformed date")
	}
}

func TestSettingsService_UpdateValidation(t *testing.T) {
	svc := NewSettingsService(rafflerepo.NewMemoryRepository(), nil)
	cases := map[string]UpdateSettingsRequest{
		"zero winners":     {NumberOfWinners: ptr(0)},
		"negative winners": {NumberOfWinners: ptr(-2)},
		"blank prize":      {Prize: ptr("   ")},
		"long prize":       {Prize: ptr(strings.Repeat("x", domain.MaxPrizeLength+1))},
		"long description": {Description: ptr(strings.Repeat("x", domain.MaxDescriptionLength+1))},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Update(context.Background(), nil, req); !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("want ErrInvalidSettings, got %v", err)
			}
		})
	}
}
