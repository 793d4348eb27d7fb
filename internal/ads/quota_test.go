package ads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaTrackerDailyCap(t *testing.T) {
	q := NewQuotaTracker(3)

	for i := 0; i < 3; i++ {
		require.True(t, q.CanConsume(42), "call %d should be under the cap", i+1)
		q.Consume(42)
	}
	assert.False(t, q.CanConsume(42))
	assert.Equal(t, 0, q.Remaining(42))

	// other users are unaffected
	assert.True(t, q.CanConsume(7))
	assert.Equal(t, 3, q.Remaining(7))
}

func TestQuotaTrackerTryConsume(t *testing.T) {
	q := NewQuotaTracker(2)

	assert.True(t, q.TryConsume(1))
	assert.True(t, q.TryConsume(1))
	assert.False(t, q.TryConsume(1))
	assert.Equal(t, 0, q.Remaining(1))
}

func TestQuotaTrackerResetsAtDayRollover(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 23, 50, 0, 0, time.UTC)
	now := day1
	q := NewQuotaTracker(3)
	q.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		require.True(t, q.TryConsume(42))
	}
	require.False(t, q.CanConsume(42))

	// next calendar day: counter back to zero regardless of prior selections
	now = day1.Add(15 * time.Minute)
	assert.True(t, q.CanConsume(42))
	assert.Equal(t, 3, q.Remaining(42))
}

func TestQuotaTrackerConcurrentTryConsume(t *testing.T) {
	q := NewQuotaTracker(100)
	done := make(chan int)
	for g := 0; g < 8; g++ {
		go func() {
			n := 0
			for q.TryConsume(9) {
				n++
			}
			done <- n
		}()
	}
	total := 0
	for g := 0; g < 8; g++ {
		total += <-done
	}
	assert.Equal(t, 100, total)
}
