package repository

import (
	"context"
	"sort"
	"sync"

	"event-raffle/backend/internal/participant/domain"
)

// MemoryRepository is an in-memory Repository. DrawWinners holds the write lock across read, pick, and mark.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []*domain.Participant
	winSeq  map[string]int
	nextWin int
}

// NewMemoryRepository returns an empty in-memory participant repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{winSeq: make(map[string]int)}
}

// Create stores a copy of p.
func (r *MemoryRepository) Create(ctx context.Context, p *domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, cloneParticipant(p))
	return nil
}

// List returns copies of all participants, newest submission first.
func (r *MemoryRepository) List(ctx context.Context) ([]*domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Participant, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, cloneParticipant(r.entries[i]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

// Count returns the number of participants.
func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries), nil
}

// CountRaffleEntries returns the number of participants entered in the raffle.
func (r *MemoryRepository) CountRaffleEntries(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, p := range r.entries {
		if p.RaffleEntry {
			n++
		}
	}
	return n, nil
}

// ListWinners returns copies of winners, most recent win first.
func (r *MemoryRepository) ListWinners(ctx context.Context) ([]*domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Participant
	for _, p := range r.entries {
		if p.HasWon {
			out = append(out, cloneParticipant(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return r.winSeq[out[i].ID] > r.winSeq[out[j].ID] })
	return out, nil
}

// DrawWinners picks from the eligible participants and marks the picked ones, all under the write lock.
func (r *MemoryRepository) DrawWinners(ctx context.Context, pick PickFunc) ([]*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Participant)
	var eligible []*domain.Participant
	for _, p := range r.entries {
		if p.Eligible() {
			byID[p.ID] = p
			eligible = append(eligible, cloneParticipant(p))
		}
	}
	picked, err := pick(eligible)
	if err != nil {
		return nil, err
	}
	for _, w := range picked {
		stored, ok := byID[w.ID]
		if !ok || !stored.Eligible() {
			return nil, domain.ErrConcurrentDraw
		}
	}
	r.nextWin++
	out := make([]*domain.Participant, 0, len(picked))
	for _, w := range picked {
		stored := byID[w.ID]
		stored.HasWon = true
		r.winSeq[stored.ID] = r.nextWin
		out = append(out, cloneParticipant(stored))
	}
	return out, nil
}

func cloneParticipant(p *domain.Participant) *domain.Participant {
	c := *p
	if p.FormData != nil {
		c.FormData = make(map[string]string, len(p.FormData))
		for k, v := range p.FormData {
			c.FormData[k] = v
		}
	}
	return &c
}
