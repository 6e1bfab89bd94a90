// Package lock provides single-writer gates that serialize raffle draws.
package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when the gate could not be acquired before ctx was done.
var ErrNotAcquired = errors.New("draw already in progress")

// Gate admits one holder at a time. Release must be called exactly once after a successful Acquire.
type Gate interface {
	Acquire(ctx context.Context) (release func(), err error)
}
