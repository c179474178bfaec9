package reservations

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// TableLocker serializes booking mutations per (table, service date). Two
// requests against different tables proceed concurrently; two against the
// same table on the same day are queued. This is the minimum serialization
// needed to keep the no-overlap invariant under concurrent booking attempts.
type TableLocker interface {
	// Acquire blocks until the (tableID, date) scope is held and returns a
	// release function. The release function is safe to call exactly once.
	Acquire(ctx context.Context, venueID string, tableID uint, date string) (func(), error)

	// AcquireMany acquires every (tableID, date) scope in a deadlock-free
	// order and returns a single release for the whole set. Used by the
	// auto-assign commit so the full batch lands under one critical section.
	AcquireMany(ctx context.Context, venueID string, tableIDs []uint, date string) (func(), error)
}

func lockKey(venueID string, tableID uint, date string) string {
	return fmt.Sprintf("tably:tablelock:%s:%d:%s", venueID, tableID, date)
}

// localTableLocker is the in-process fallback used when Redis is not
// configured (single-instance deployments and tests). Keyed mutexes are
// never evicted; the key space is bounded by tables x recent dates.
type localTableLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocalTableLocker creates an in-process table locker.
func NewLocalTableLocker() TableLocker {
	return &localTableLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *localTableLocker) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

func (l *localTableLocker) Acquire(ctx context.Context, venueID string, tableID uint, date string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := l.get(lockKey(venueID, tableID, date))
	m.Lock()
	var once sync.Once
	return func() { once.Do(m.Unlock) }, nil
}

func (l *localTableLocker) AcquireMany(ctx context.Context, venueID string, tableIDs []uint, date string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Sorted acquisition order prevents deadlock between concurrent batches.
	ids := make([]uint, len(tableIDs))
	copy(ids, tableIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	held := make([]*sync.Mutex, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		m := l.get(lockKey(venueID, id, date))
		m.Lock()
		held = append(held, m)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].Unlock()
			}
		})
	}, nil
}
