package ads

import (
	"math/rand"
	"sort"
	"sync"
)

// Policy picks how the next creative is chosen.
type Policy string

const (
	PolicyClassic Policy = "classic"
	PolicySmart   Policy = "smart"
)

// smart rotation: probability of drawing from the top-priority pool
const smartTopProb = 0.7

// Selector rotates creatives for users under the daily quota. Per-user
// last-shown indices are in memory only, like the quota counters.
type Selector struct {
	mu        sync.Mutex
	creatives []Creative
	quota     *QuotaTracker
	policy    Policy
	rng       *rand.Rand
	lastShown map[int64]int // index into the active list
}

func NewSelector(creatives []Creative, quota *QuotaTracker, policy Policy, rng *rand.Rand) *Selector {
	if policy != PolicyClassic {
		policy = PolicySmart
	}
	return &Selector{
		creatives: creatives,
		quota:     quota,
		policy:    policy,
		rng:       rng,
		lastShown: make(map[int64]int),
	}
}

func (s *Selector) active() []Creative {
	out := make([]Creative, 0, len(s.creatives))
	for _, c := range s.creatives {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

// Select picks the next creative for the user under the configured policy,
// or nil when the quota is spent or no creatives are active. A nil result
// never mutates per-user state.
func (s *Selector) Select(userID int64) *Creative {
	if s.policy == PolicyClassic {
		return s.SelectClassic(userID)
	}
	return s.SelectSmart(userID)
}

// SelectClassic picks uniformly among active creatives, never repeating the
// creative shown to this user immediately before (when two or more are
// active).
func (s *Selector) SelectClassic(userID int64) *Creative {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.active()
	if len(active) == 0 {
		return nil
	}
	if !s.quota.TryConsume(userID) {
		return nil
	}

	var idx int
	if len(active) == 1 {
		idx = 0
	} else {
		last, ok := s.lastShown[userID]
		if !ok {
			last = -1
		}
		candidates := make([]int, 0, len(active))
		for i := range active {
			if i != last {
				candidates = append(candidates, i)
			}
		}
		idx = candidates[s.rng.Intn(len(candidates))]
	}

	s.lastShown[userID] = idx
	c := active[idx]
	return &c
}

// SelectSmart prefers high-priority creatives: with probability 0.7 it draws
// from the top two by ascending priority, otherwise uniformly from all active
// ones. The random branch deliberately skips the anti-repeat exclusion that
// SelectClassic applies, so occasional immediate repeats are possible.
func (s *Selector) SelectSmart(userID int64) *Creative {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.active()
	if len(active) == 0 {
		return nil
	}
	if !s.quota.TryConsume(userID) {
		return nil
	}

	var chosen Creative
	if s.rng.Float64() < smartTopProb {
		ranked := make([]Creative, len(active))
		copy(ranked, active)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Priority < ranked[j].Priority
		})
		top := ranked[:min(2, len(ranked))]
		chosen = top[s.rng.Intn(len(top))]
	} else {
		chosen = active[s.rng.Intn(len(active))]
	}

	idx := 0
	for i, c := range active {
		if c.ID == chosen.ID {
			idx = i
			break
		}
	}
	s.lastShown[userID] = idx
	return &chosen
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
