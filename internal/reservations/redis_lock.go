package reservations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisTableLocker serializes table-day scopes across service instances
// using Lua-scripted all-or-nothing claims. Locks carry a TTL so a crashed
// holder cannot wedge a table forever.
type redisTableLocker struct {
	client *redis.Client
	ttl    time.Duration

	// Acquisition retry cadence while another holder owns the scope.
	pollInterval time.Duration
}

// NewRedisTableLocker creates a Redis-backed table locker.
func NewRedisTableLocker(client *redis.Client, ttl time.Duration) TableLocker {
	return &redisTableLocker{
		client:       client,
		ttl:          ttl,
		pollInterval: 25 * time.Millisecond,
	}
}

// Lua script for atomic multi-key lock acquisition. Either every key is
// claimed with the caller's token or none are.
const luaAcquireTableLocks = `
-- KEYS[1..N] = lock keys
-- ARGV[1] = token
-- ARGV[2] = ttl_ms

for i = 1, #KEYS do
    if redis.call("EXISTS", KEYS[i]) == 1 then
        return {0, KEYS[i]}
    end
end

for i = 1, #KEYS do
    redis.call("SET", KEYS[i], ARGV[1], "PX", tonumber(ARGV[2]))
end

return {1, "ok"}
`

// Lua script for token-checked release. A lock that expired and was
// re-acquired by someone else is left alone.
const luaReleaseTableLocks = `
-- KEYS[1..N] = lock keys
-- ARGV[1] = token

local released = 0
for i = 1, #KEYS do
    if redis.call("GET", KEYS[i]) == ARGV[1] then
        redis.call("DEL", KEYS[i])
        released = released + 1
    end
end
return released
`

var (
	acquireScript = redis.NewScript(luaAcquireTableLocks)
	releaseScript = redis.NewScript(luaReleaseTableLocks)
)

func (l *redisTableLocker) Acquire(ctx context.Context, venueID string, tableID uint, date string) (func(), error) {
	return l.AcquireMany(ctx, venueID, []uint{tableID}, date)
}

func (l *redisTableLocker) AcquireMany(ctx context.Context, venueID string, tableIDs []uint, date string) (func(), error) {
	keys := make([]string, 0, len(tableIDs))
	seen := make(map[uint]bool, len(tableIDs))
	for _, id := range tableIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, lockKey(venueID, id, date))
	}
	if len(keys) == 0 {
		return func() {}, nil
	}

	token := uuid.NewString()
	ttlMs := l.ttl.Milliseconds()

	for {
		result, err := acquireScript.Run(ctx, l.client, keys, token, ttlMs).Result()
		if err != nil {
			return nil, fmt.Errorf("table lock acquisition failed: %w", err)
		}

		values, ok := result.([]interface{})
		if !ok || len(values) != 2 {
			return nil, fmt.Errorf("unexpected redis response for table lock")
		}

		if claimed, _ := values[0].(int64); claimed == 1 {
			release := func() {
				// Release on a fresh context so cancellation of the request
				// does not leak held locks until TTL expiry.
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_, _ = releaseScript.Run(releaseCtx, l.client, keys, token).Result()
			}
			return release, nil
		}

		// Scope held elsewhere; wait and retry until the caller gives up.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.pollInterval):
		}
	}
}
