package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	participantdomain "event-raffle/backend/internal/participant/domain"
	participantrepo "event-raffle/backend/internal/participant/repository"
	"event-raffle/backend/internal/raffle/domain"
	"event-raffle/backend/internal/raffle/lock"
	"event-raffle/backend/internal/raffle/metrics"
	rafflerepo "event-raffle/backend/internal/raffle/repository"
)

func seedPool(t *testing.T, n int) *participantrepo.MemoryRepository {
	t.Helper()
	pool := participantrepo.NewMemoryRepository()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		p := &participantdomain.Participant{
			ID:          fmt.Sprintf("p-%02d", i),
			FormData:    map[string]string{"name": fmt.Sprintf("Guest %d", i)},
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
			RaffleEntry: true,
		}
		if err := pool.Create(context.Background(), p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	return pool
}

func configured(t *testing.T, winners int) *rafflerepo.MemoryRepository {
	t.Helper()
	repo := rafflerepo.NewMemoryRepository()
	s := domain.NewDefaultSettings(time.Now())
	s.NumberOfWinners = winners
	if err := repo.Save(context.Background(), s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return repo
}

func countWinners(t *testing.T, pool *participantrepo.MemoryRepository) int {
	t.Helper()
	w, err := pool.ListWinners(context.Background())
	if err != nil {
		t.Fatalf("ListWinners: %v", err)
	}
	return len(w)
}

func TestDraw_ShrinksEligibleSet(t *testing.T) {
	ctx := context.Background()
	pool := seedPool(t, 5)
	svc := NewDrawService(nil, configured(t, 2), pool, nil, nil)

	first, err := svc.Draw(ctx, nil)
	if err != nil {
		t.Fatalf("first Draw: %v", err)
	}
	second, err := svc.Draw(ctx, nil)
	if err != nil {
		t.Fatalf("second Draw: %v", err)
	}
	seen := make(map[string]bool)
	for _, w := range append(first.Winners, second.Winners...) {
		if !w.HasWon {
			t.Errorf("winner %s not marked", w.ID)
		}
		if seen[w.ID] {
			t.Errorf("winner %s selected twice", w.ID)
		}
		seen[w.ID] = true
	}
	if len(seen) != 4 {
		t.Fatalf("distinct winners = %d, want 4", len(seen))
	}

	_, err = svc.Draw(ctx, nil)
	var insufficient *InsufficientParticipantsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("third Draw: want InsufficientParticipantsError, got %v", err)
	}
	if insufficient.Need != 2 || insufficient.Have != 1 {
		t.Errorf("need/have = %d/%d, want 2/1", insufficient.Need, insufficient.Have)
	}
	if got := countWinners(t, pool); got != 4 {
		t.Errorf("winners after failed draw = %d, want 4", got)
	}
}

func TestDraw_InsufficientLeavesAllUnmarked(t *testing.T) {
	pool := seedPool(t, 1)
	svc := NewDrawService(nil, configured(t, 2), pool, nil, nil)

	_, err := svc.Draw(context.Background(), nil)
	if !errors.Is(err, ErrInsufficientParticipants) {
		t.Fatalf("want ErrInsufficientParticipants, got %v", err)
	}
	if err.Error() != "Not enough participants. Need 2, have 1" {
		t.Errorf("message = %q", err.Error())
	}
	if got := countWinners(t, pool); got != 0 {
		t.Errorf("winners = %d, want 0", got)
	}
}

func TestDraw_NoEligible(t *testing.T) {
	svc := NewDrawService(nil, configured(t, 1), seedPool(t, 0), nil, nil)
	if _, err := svc.Draw(context.Background(), nil); !errors.Is(err, ErrNoEligibleParticipants) {
		t.Fatalf("want ErrNoEligibleParticipants, got %v", err)
	}
}

func TestDraw_NoConfiguration(t *testing.T) {
	settings := rafflerepo.NewMemoryRepository()
	svc := NewDrawService(nil, settings, seedPool(t, 3), nil, nil)
	if _, err := svc.Draw(context.Background(), nil); !errors.Is(err, domain.ErrNoConfiguration) {
		t.Fatalf("want ErrNoConfiguration, got %v", err)
	}
	if s, _ := settings.Get(context.Background()); s != nil {
		t.Error("draw must not create settings")
	}
}

func TestDraw_ZeroWinnersTreatedAsOne(t *testing.T) {
	svc := NewDrawService(nil, configured(t, 0), seedPool(t, 3), nil, nil)
	res, err := svc.Draw(context.Background(), nil)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(res.Winners) != 1 {
		t.Errorf("winners = %d, want 1", len(res.Winners))
	}
}

func TestDraw_GateTimeoutMarksNothing(t *testing.T) {
	gate := lock.NewSemaphoreGate()
	release, err := gate.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer release()

	pool := seedPool(t, 3)
	svc := NewDrawService(gate, configured(t, 1), pool, nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := svc.Draw(ctx, nil); !errors.Is(err, lock.ErrNotAcquired) {
		t.Fatalf("want ErrNotAcquired, got %v", err)
	}
	if got := countWinners(t, pool); got != 0 {
		t.Errorf("winners = %d, want 0", got)
	}
}

func TestDraw_ConcurrentDrawsNeverOverlap(t *testing.T) {
	const n = 20
	pool := seedPool(t, n)
	svc := NewDrawService(nil, configured(t, 1), pool, nil, nil)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]int)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Draw(context.Background(), nil)
			if err != nil {
				t.Errorf("Draw: %v", err)
				return
			}
			mu.Lock()
			for _, w := range res.Winners {
				ids[w.ID]++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(ids) != n {
		t.Fatalf("distinct winners = %d, want %d", len(ids), n)
	}
	for id, c := range ids {
		if c != 1 {
			t.Errorf("%s won %d times", id, c)
		}
	}
}

func TestDraw_RecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc := NewDrawService(nil, configured(t, 2), seedPool(t, 3), nil, m)

	if _, err := svc.Draw(context.Background(), nil); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if _, err := svc.Draw(context.Background(), nil); err == nil {
		t.Fatal("second Draw: want error")
	}
	if got := testutil.ToFloat64(m.DrawsTotal.WithLabelValues(metrics.OutcomeSuccess)); got != 1 {
		t.Errorf("success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DrawsTotal.WithLabelValues(metrics.OutcomeInsufficient)); got != 1 {
		t.Errorf("insufficient = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.WinnersTotal); got != 2 {
		t.Errorf("winners = %v, want 2", got)
	}
}

func participants(ids ...string) []*participantdomain.Participant {
	out := make([]*participantdomain.Participant, 0, len(ids))
	for _, id := range ids {
		out = append(out, &participantdomain.Participant{ID: id, RaffleEntry: true})
	}
	return out
}

func TestPick_FisherYatesOrder(t *testing.T) {
	var bounds []int
	intN := func(n int) int {
		bounds = append(bounds, n)
		return 0
	}
	in := participants("a", "b", "c")
	got, err := pick(in, 2, intN)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	// i=2 swaps with 0: c b a; i=1 swaps with 0: b c a.
	if got[0].ID != "b" || got[1].ID != "c" {
		t.Errorf("picked %s,%s, want b,c", got[0].ID, got[1].ID)
	}
	if len(bounds) != 2 || bounds[0] != 3 || bounds[1] != 2 {
		t.Errorf("intN bounds = %v, want [3 2]", bounds)
	}
	if in[0].ID != "a" || in[1].ID != "b" || in[2].ID != "c" {
		t.Error("pick must not reorder its input")
	}
}

func TestPick_Fairness(t *testing.T) {
	const (
		runs  = 10000
		size  = 10
		lower = 850
		upper = 1150
	)
	rng := rand.New(rand.NewPCG(7, 11))
	counts := make(map[string]int, size)
	ids := make([]string, size)
	for i := range ids {
		ids[i] = fmt.Sprintf("p-%d", i)
	}
	for i := 0; i < runs; i++ {
		got, err := pick(participants(ids...), 1, rng.IntN)
		if err != nil {
			t.Fatalf("pick: %v", err)
		}
		counts[got[0].ID]++
	}
	for _, id := range ids {
		if c := counts[id]; c < lower || c > upper {
			t.Errorf("%s selected %d times, want %d..%d", id, c, lower, upper)
		}
	}
}

func TestWithIntN(t *testing.T) {
	called := false
	svc := NewDrawService(nil, configured(t, 1), seedPool(t, 2), nil, nil, WithIntN(func(n int) int {
		called = true
		return n - 1
	}))
	if _, err := svc.Draw(context.Background(), nil); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if !called {
		t.Error("custom random source not used")
	}
}
