package lock

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// SemaphoreGate is an in-process Gate backed by a weighted semaphore of size one.
type SemaphoreGate struct {
	sem *semaphore.Weighted
}

// NewSemaphoreGate returns an in-process gate.
func NewSemaphoreGate() *SemaphoreGate {
	return &SemaphoreGate{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the gate is free or ctx is done.
func (g *SemaphoreGate) Acquire(ctx context.Context) (func(), error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAcquired, err)
	}
	return func() { g.sem.Release(1) }, nil
}
