package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	admindomain "event-raffle/backend/internal/admin/domain"
	participantdomain "event-raffle/backend/internal/participant/domain"
	participantrepo "event-raffle/backend/internal/participant/repository"
	"event-raffle/backend/internal/raffle/domain"
	"event-raffle/backend/internal/raffle/lock"
	"event-raffle/backend/internal/raffle/metrics"
	"event-raffle/backend/internal/telemetry"
	telemetrydomain "event-raffle/backend/internal/telemetry/domain"
)

const tracerName = "event-raffle/backend/internal/raffle/service"

var (
	// ErrNoEligibleParticipants is returned when no participant can be drawn.
	ErrNoEligibleParticipants = errors.New("no eligible participants for raffle")
	// ErrInsufficientParticipants is returned when fewer participants are eligible than winners requested.
	// The concrete error is an *InsufficientParticipantsError.
	ErrInsufficientParticipants = errors.New("not enough participants")
)

// InsufficientParticipantsError reports how many winners were requested and how many were eligible.
type InsufficientParticipantsError struct {
	Need int
	Have int
}

func (e *InsufficientParticipantsError) Error() string {
	return fmt.Sprintf("Not enough participants. Need %d, have %d", e.Need, e.Have)
}

func (e *InsufficientParticipantsError) Unwrap() error { return ErrInsufficientParticipants }

// SettingsReader loads the raffle configuration.
type SettingsReader interface {
	Get(ctx context.Context) (*domain.Settings, error)
}

// Pool is the participant pool a draw selects from.
type Pool interface {
	DrawWinners(ctx context.Context, pick participantrepo.PickFunc) ([]*participantdomain.Participant, error)
}

// DrawResult holds the winners of one draw, already marked as won.
type DrawResult struct {
	Winners []*participantdomain.Participant
}

// DrawOption configures a DrawService.
type DrawOption func(*DrawService)

// WithIntN replaces the random source. intN(n) must return a uniform value in [0, n).
func WithIntN(intN func(n int) int) DrawOption {
	return func(s *DrawService) { s.intN = intN }
}

// DrawService runs raffle draws. Draws are serialized by the gate.
type DrawService struct {
	gate     lock.Gate
	settings SettingsReader
	pool     Pool
	emitter  telemetry.EventEmitter
	metrics  *metrics.Metrics
	intN     func(n int) int
	tracer   trace.Tracer
	now      func() time.Time
}

// NewDrawService returns a DrawService. A nil gate selects an in-process semaphore; emitter and m may be nil.
func NewDrawService(gate lock.Gate, settings SettingsReader, pool Pool, emitter telemetry.EventEmitter, m *metrics.Metrics, opts ...DrawOption) *DrawService {
	if gate == nil {
		gate = lock.NewSemaphoreGate()
	}
	s := &DrawService{
		gate:     gate,
		settings: settings,
		pool:     pool,
		emitter:  emitter,
		metrics:  m,
		intN:     rand.IntN,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draw selects the configured number of winners from the eligible participants and marks them as won.
// On any error no participant is marked. actor may be nil.
func (s *DrawService) Draw(ctx context.Context, actor *admindomain.Admin) (*DrawResult, error) {
	ctx, span := s.tracer.Start(ctx, "raffle.draw")
	defer span.End()
	start := s.now()

	winners, err := s.draw(ctx)
	s.metrics.ObserveDraw(outcome(err), len(winners), s.now().Sub(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("raffle.winners", len(winners)))

	ids := make([]string, 0, len(winners))
	for _, w := range winners {
		ids = append(ids, w.ID)
	}
	ev := &telemetrydomain.Event{
		Type:   telemetrydomain.EventRaffleDrawn,
		Source: "raffle",
		Attributes: map[string]string{
			"winners":    strconv.Itoa(len(winners)),
			"winner_ids": strings.Join(ids, ","),
		},
	}
	if actor != nil {
		ev.ActorID = actor.ID
		ev.ActorRole = string(actor.Role)
	}
	telemetry.EmitAsync(ctx, s.emitter, ev)
	return &DrawResult{Winners: winners}, nil
}

func (s *DrawService) draw(ctx context.Context) ([]*participantdomain.Participant, error) {
	release, err := s.gate.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load raffle settings: %w", err)
	}
	if settings == nil {
		return nil, domain.ErrNoConfiguration
	}
	n := settings.WinnersToDraw()
	return s.pool.DrawWinners(ctx, func(eligible []*participantdomain.Participant) ([]*participantdomain.Participant, error) {
		return pick(eligible, n, s.intN)
	})
}

// pick shuffles a copy of eligible with Fisher-Yates and returns the first n.
func pick(eligible []*participantdomain.Participant, n int, intN func(int) int) ([]*participantdomain.Participant, error) {
	if len(eligible) == 0 {
		return nil, ErrNoEligibleParticipants
	}
	if len(eligible) < n {
		return nil, &InsufficientParticipantsError{Need: n, Have: len(eligible)}
	}
	shuffled := make([]*participantdomain.Participant, len(eligible))
	copy(shuffled, eligible)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := intN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n], nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrNoConfiguration):
		return metrics.OutcomeNoConfig
	case errors.Is(err, ErrNoEligibleParticipants):
		return metrics.OutcomeNoEligible
	case errors.Is(err, ErrInsufficientParticipants):
		return metrics.OutcomeInsufficient
	case errors.Is(err, lock.ErrNotAcquired):
		return metrics.OutcomeLockTimeout
	default:
		return metrics.OutcomeError
	}
}
