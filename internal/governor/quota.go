// Package governor bounds the load the application places on the AI
// provider: a per-caller daily call budget and a fixed pool of permits
// for concurrent outbound calls. All state is in-memory; quotas are soft
// and reset on process restart.
package governor

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/flowboard/aicore/pkg/aierr"
)

// Clock supplies the current time. Injected so day-rollover behavior is
// testable without waiting for midnight.
type Clock func() time.Time

// DefaultDailyCap is the per-caller call budget per local day.
const DefaultDailyCap = 100

type quotaRecord struct {
	Count       int
	WindowStart time.Time
}

// Quota tracks per-caller daily call counts. The window starts at local
// midnight; a record from a previous day reads as absent. Safe for
// concurrent use.
type Quota struct {
	mu    sync.Mutex
	store *cache.Cache
	cap   int
	now   Clock
}

// NewQuota creates a quota tracker with the given daily cap. A cap <= 0
// falls back to DefaultDailyCap. A nil clock uses time.Now.
func NewQuota(dailyCap int, now Clock) *Quota {
	if dailyCap <= 0 {
		dailyCap = DefaultDailyCap
	}
	if now == nil {
		now = time.Now
	}
	return &Quota{
		// Janitor sweeps expired records so idle callers do not
		// accumulate; correctness relies on WindowStart, not TTL.
		store: cache.New(48*time.Hour, time.Hour),
		cap:   dailyCap,
		now:   now,
	}
}

// Allow charges one call against the caller's daily budget. An empty
// caller ID passes unmetered. Returns a quota_exceeded error when the
// call would exceed the cap; the rejected call is not counted.
func (q *Quota) Allow(callerID string) error {
	key := normalizeCaller(callerID)
	if key == "" {
		return nil
	}

	now := q.now()
	dayStart := startOfDay(now)

	q.mu.Lock()
	defer q.mu.Unlock()

	rec := quotaRecord{WindowStart: dayStart}
	if v, ok := q.store.Get(key); ok {
		if stored, ok := v.(quotaRecord); ok && !stored.WindowStart.Before(dayStart) {
			rec = stored
		}
	}

	if rec.Count+1 > q.cap {
		return aierr.NewQuotaExceeded(
			fmt.Sprintf("daily AI call budget of %d reached, resets at midnight", q.cap))
	}

	rec.Count++
	q.store.Set(key, rec, dayStart.Add(24*time.Hour).Sub(now))
	return nil
}

// Count returns the caller's spent budget for the current day.
func (q *Quota) Count(callerID string) int {
	key := normalizeCaller(callerID)
	if key == "" {
		return 0
	}

	dayStart := startOfDay(q.now())

	q.mu.Lock()
	defer q.mu.Unlock()

	if v, ok := q.store.Get(key); ok {
		if rec, ok := v.(quotaRecord); ok && !rec.WindowStart.Before(dayStart) {
			return rec.Count
		}
	}
	return 0
}

// Cap returns the configured daily cap.
func (q *Quota) Cap() int {
	return q.cap
}

func normalizeCaller(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
