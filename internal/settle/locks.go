package settle

import (
	"context"
	"sync"
	"time"
)

// groupLocks serializes reconcile-and-persist operations per group. Groups
// are independent units of concurrency; there is no cross-group ordering.
//
// Each group's lock is a one-slot channel so acquisition can race a timeout
// and context cancellation instead of blocking indefinitely.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[string]chan struct{})}
}

func (g *groupLocks) lock(groupID string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	ch, ok := g.locks[groupID]
	if !ok {
		ch = make(chan struct{}, 1)
		g.locks[groupID] = ch
	}
	return ch
}

// acquire takes the group's lock, waiting at most timeout. It returns a
// release function on success and ErrLockTimeout when the bound is exceeded.
func (g *groupLocks) acquire(ctx context.Context, groupID string, timeout time.Duration) (func(), error) {
	ch := g.lock(groupID)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, ErrLockTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
