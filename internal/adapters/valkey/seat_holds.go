package valkey

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/busseat/internal/core/domain"
	"github.com/samirrijal/busseat/internal/core/ports"
	"github.com/samirrijal/busseat/internal/pkg/clock"
)

// Every seat hold is its own key carrying the holder ID with a PX expiry,
// so Valkey drops stale holds on its own. A per-trip sorted set indexes the
// held seats by expiry for listing. The {trip} hash tag keeps all keys of
// one trip in the same cluster slot so the scripts below stay atomic.

// KEYS[1] index, KEYS[2..] seat keys; ARGV[1] holder, ARGV[2] ttl ms,
// ARGV[3] now ms, ARGV[4..] seat numbers. Returns the conflicting seats.
var acquireScript = valkey.NewLuaScript(`
local holder, ttl, now = ARGV[1], tonumber(ARGV[2]), tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now)
local conflicts = {}
for i = 2, #KEYS do
  local cur = redis.call('GET', KEYS[i])
  if cur and cur ~= holder then
    conflicts[#conflicts + 1] = ARGV[i + 2]
  end
end
if #conflicts > 0 then
  return conflicts
end
for i = 2, #KEYS do
  redis.call('SET', KEYS[i], holder, 'PX', ttl)
  redis.call('ZADD', KEYS[1], now + ttl, ARGV[i + 2])
end
if redis.call('PTTL', KEYS[1]) < ttl then
  redis.call('PEXPIRE', KEYS[1], ttl)
end
return conflicts
`)

// KEYS[1] index, KEYS[2..] seat keys; ARGV[1] holder, ARGV[2..] seat numbers.
var releaseScript = valkey.NewLuaScript(`
for i = 2, #KEYS do
  if redis.call('GET', KEYS[i]) == ARGV[1] then
    redis.call('DEL', KEYS[i])
    redis.call('ZREM', KEYS[1], ARGV[i])
  end
end
return 1
`)

// KEYS[1] index; ARGV[1] now ms, ARGV[2] seat key prefix.
// Returns flat triples of seat, holder, expiry ms.
var listScript = valkey.NewLuaScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local seats = redis.call('ZRANGE', KEYS[1], 0, -1, 'WITHSCORES')
local out = {}
for i = 1, #seats, 2 do
  local holder = redis.call('GET', ARGV[2] .. seats[i])
  if holder then
    out[#out + 1] = seats[i]
    out[#out + 1] = holder
    out[#out + 1] = seats[i + 1]
  end
end
return out
`)

// SeatHolds implements ports.SeatHoldService on Valkey.
type SeatHolds struct {
	client valkey.Client
	clock  clock.Clock
}

// NewSeatHolds creates a seat-hold store on an existing client.
func NewSeatHolds(client valkey.Client, clk clock.Clock) *SeatHolds {
	if clk == nil {
		clk = clock.Real{}
	}
	return &SeatHolds{client: client, clock: clk}
}

var _ ports.SeatHoldService = (*SeatHolds)(nil)

func indexKey(tripID string) string { return "seatholds:{" + tripID + "}" }

func seatKeyPrefix(tripID string) string { return "seathold:{" + tripID + "}:" }

func (s *SeatHolds) keys(tripID string, seats []string) []string {
	keys := make([]string, 0, len(seats)+1)
	keys = append(keys, indexKey(tripID))
	prefix := seatKeyPrefix(tripID)
	for _, seat := range seats {
		keys = append(keys, prefix+seat)
	}
	return keys
}

func (s *SeatHolds) Acquire(ctx context.Context, tripID, holderID string, seats []string, ttl time.Duration) ([]domain.SeatHold, error) {
	now := s.clock.Now()
	args := append([]string{
		holderID,
		strconv.FormatInt(ttl.Milliseconds(), 10),
		strconv.FormatInt(now.UnixMilli(), 10),
	}, seats...)

	conflicts, err := acquireScript.Exec(ctx, s.client, s.keys(tripID, seats), args).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("acquire seat holds: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, &domain.SeatConflictError{Seats: conflicts}
	}

	expires := now.Add(ttl)
	out := make([]domain.SeatHold, 0, len(seats))
	for _, seat := range seats {
		out = append(out, domain.SeatHold{TripID: tripID, SeatNumber: seat, HolderID: holderID, ExpiresAt: expires})
	}
	return out, nil
}

func (s *SeatHolds) Release(ctx context.Context, tripID, holderID string, seats []string) error {
	args := append([]string{holderID}, seats...)
	if err := releaseScript.Exec(ctx, s.client, s.keys(tripID, seats), args).Error(); err != nil {
		return fmt.Errorf("release seat holds: %w", err)
	}
	return nil
}

func (s *SeatHolds) ListHeld(ctx context.Context, tripID string) ([]domain.SeatHold, error) {
	now := s.clock.Now()
	flat, err := listScript.Exec(ctx, s.client,
		[]string{indexKey(tripID)},
		[]string{strconv.FormatInt(now.UnixMilli(), 10), seatKeyPrefix(tripID)},
	).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("list seat holds: %w", err)
	}

	out := make([]domain.SeatHold, 0, len(flat)/3)
	for i := 0; i+2 < len(flat); i += 3 {
		ms, err := strconv.ParseFloat(flat[i+2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse hold expiry %q: %w", flat[i+2], err)
		}
		out = append(out, domain.SeatHold{
			TripID:     tripID,
			SeatNumber: flat[i],
			HolderID:   flat[i+1],
			ExpiresAt:  time.UnixMilli(int64(ms)).UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}
