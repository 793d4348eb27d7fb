package ads

import (
	"sync"
	"time"
)

// QuotaTracker caps ad impressions per user per calendar day. Counters live
// in memory only; a restart starts everyone from zero, which is fine for a
// soft impression cap.
type QuotaTracker struct {
	mu       sync.Mutex
	max      int
	now      func() time.Time
	counters map[int64]*dayCount
}

type dayCount struct {
	date  string // YYYY-MM-DD
	count int
}

func NewQuotaTracker(dailyMax int) *QuotaTracker {
	return &QuotaTracker{
		max:      dailyMax,
		now:      time.Now,
		counters: make(map[int64]*dayCount),
	}
}

func (q *QuotaTracker) today() string {
	return q.now().Format("2006-01-02")
}

// rollover resets the counter whenever the stored date is not today.
// Caller must hold q.mu.
func (q *QuotaTracker) counterLocked(userID int64) *dayCount {
	today := q.today()
	c, ok := q.counters[userID]
	if !ok || c.date != today {
		c = &dayCount{date: today}
		q.counters[userID] = c
	}
	return c
}

// CanConsume reports whether the user is still under today's cap.
func (q *QuotaTracker) CanConsume(userID int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.counterLocked(userID).count < q.max
}

// Consume charges one impression. Call only after a successful CanConsume;
// prefer TryConsume in concurrent paths.
func (q *QuotaTracker) Consume(userID int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.counterLocked(userID).count++
}

// TryConsume performs the cap check and the increment under one lock.
func (q *QuotaTracker) TryConsume(userID int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	c := q.counterLocked(userID)
	if c.count >= q.max {
		return false
	}
	c.count++
	return true
}

// Remaining returns how many impressions the user has left today.
func (q *QuotaTracker) Remaining(userID int64) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	rem := q.max - q.counterLocked(userID).count
	if rem < 0 {
		rem = 0
	}
	return rem
}
