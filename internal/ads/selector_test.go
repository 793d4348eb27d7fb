package ads

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCreatives() []Creative {
	return []Creative{
		{ID: "a", Text: "Ad A", ButtonText: "Open", URL: "https://a.example", Priority: 1, Active: true},
		{ID: "b", Text: "Ad B", ButtonText: "Open", URL: "https://b.example", Priority: 1, Active: true},
		{ID: "c", Text: "Ad C", ButtonText: "Open", URL: "https://c.example", Priority: 5, Active: true},
	}
}

func newTestSelector(creatives []Creative, dailyMax int, policy Policy) *Selector {
	return NewSelector(creatives, NewQuotaTracker(dailyMax), policy, rand.New(rand.NewSource(1)))
}

func TestClassicNeverRepeatsConsecutively(t *testing.T) {
	s := newTestSelector(testCreatives(), 1000, PolicyClassic)

	prev := ""
	for i := 0; i < 500; i++ {
		c := s.SelectClassic(42)
		require.NotNil(t, c)
		if prev != "" {
			assert.NotEqual(t, prev, c.ID, "iteration %d repeated the last creative", i)
		}
		prev = c.ID
	}
}

func TestClassicSingleActiveAlwaysReturned(t *testing.T) {
	creatives := []Creative{
		{ID: "only", Active: true},
		{ID: "off", Active: false},
	}
	s := newTestSelector(creatives, 10, PolicyClassic)

	for i := 0; i < 10; i++ {
		c := s.SelectClassic(1)
		require.NotNil(t, c)
		assert.Equal(t, "only", c.ID)
	}
	// quota spent
	assert.Nil(t, s.SelectClassic(1))
}

func TestSelectNoActiveCreatives(t *testing.T) {
	creatives := []Creative{{ID: "off", Active: false}}
	for _, policy := range []Policy{PolicyClassic, PolicySmart} {
		s := newTestSelector(creatives, 5, policy)
		assert.Nil(t, s.Select(1))
		// state untouched: quota still full, no last-shown entry
		assert.Equal(t, 5, s.quota.Remaining(1))
		assert.Empty(t, s.lastShown)
	}
}

func TestSelectQuotaExhaustedNoMutation(t *testing.T) {
	s := newTestSelector(testCreatives(), 2, PolicySmart)

	require.NotNil(t, s.Select(42))
	require.NotNil(t, s.Select(42))
	lastBefore := s.lastShown[42]

	assert.Nil(t, s.Select(42))
	assert.Equal(t, lastBefore, s.lastShown[42])

	// another user still gets served
	assert.NotNil(t, s.Select(7))
}

func TestSmartPriorityBranchDrawsFromTopTwo(t *testing.T) {
	s := newTestSelector(testCreatives(), 1<<30, PolicySmart)

	counts := map[string]int{}
	for i := 0; i < 3000; i++ {
		c := s.SelectSmart(42)
		require.NotNil(t, c)
		counts[c.ID]++
	}

	// a and b (priority 1) own the 70% branch plus their share of the uniform
	// branch; c appears only via the 30% uniform-over-all branch (~10%).
	assert.Greater(t, counts["a"], counts["c"])
	assert.Greater(t, counts["b"], counts["c"])
	assert.Greater(t, counts["c"], 0, "low-priority creative should still surface via the random branch")
	assert.InDelta(t, 0.10, float64(counts["c"])/3000, 0.05)
}

func TestSmartConsumesQuota(t *testing.T) {
	s := newTestSelector(testCreatives(), 3, PolicySmart)

	for i := 0; i < 3; i++ {
		require.NotNil(t, s.SelectSmart(42))
	}
	assert.Nil(t, s.SelectSmart(42))
}

func TestNewSelectorDefaultsToSmart(t *testing.T) {
	s := NewSelector(testCreatives(), NewQuotaTracker(1), Policy("bogus"), rand.New(rand.NewSource(1)))
	assert.Equal(t, PolicySmart, s.policy)
}
