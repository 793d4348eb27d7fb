package profile

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Profile is the persisted per-user record. Profiles are created on first
// contact and updated on every later one; they are never deleted.
type Profile struct {
	FirstName      string `json:"first_name"`
	Username       string `json:"username"`
	FirstUse       string `json:"first_use"`
	LastUse        string `json:"last_use"`
	TotalDownloads int    `json:"total_downloads"`
}

// Store persists profiles keyed by user id.
type Store interface {
	Load(ctx context.Context, userID int64) (*Profile, error)
	Save(ctx context.Context, userID int64, p *Profile) error
}

// Manager applies the registration/update rules on top of a Store. Writes go
// through one mutex; store failures are logged and swallowed so a broken
// store never blocks a user-facing operation.
type Manager struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

func (m *Manager) today() string {
	return m.now().Format("2006-01-02")
}

// Touch registers a user on first contact and refreshes last_use afterwards.
// Name and username are overwritten only when newly supplied and non-empty.
func (m *Manager) Touch(ctx context.Context, userID int64, firstName, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	today := m.today()
	p, err := m.store.Load(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("uid", userID).Msg("profile load failed")
		return
	}
	if p == nil {
		p = &Profile{
			FirstName: firstName,
			Username:  username,
			FirstUse:  today,
		}
	} else {
		if firstName != "" {
			p.FirstName = firstName
		}
		if username != "" {
			p.Username = username
		}
	}
	p.LastUse = today

	if err := m.store.Save(ctx, userID, p); err != nil {
		log.Error().Err(err).Int64("uid", userID).Msg("profile save failed")
	}
}

// IncrDownloads bumps the user's lifetime download counter.
func (m *Manager) IncrDownloads(ctx context.Context, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.store.Load(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("uid", userID).Msg("profile load failed")
		return
	}
	if p == nil {
		p = &Profile{FirstUse: m.today()}
	}
	p.TotalDownloads++
	p.LastUse = m.today()

	if err := m.store.Save(ctx, userID, p); err != nil {
		log.Error().Err(err).Int64("uid", userID).Msg("profile save failed")
	}
}

// Get returns the stored profile, or a zero profile for unknown users.
func (m *Manager) Get(ctx context.Context, userID int64) Profile {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.store.Load(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("uid", userID).Msg("profile load failed")
		return Profile{}
	}
	if p == nil {
		return Profile{}
	}
	return *p
}

// Level maps lifetime downloads to a display rank.
func Level(downloads int) string {
	switch {
	case downloads >= 100:
		return "💎 Diamond"
	case downloads >= 50:
		return "🥇 Gold"
	case downloads >= 20:
		return "🥈 Silver"
	case downloads >= 5:
		return "🥉 Bronze"
	default:
		return "⭐ Beginner"
	}
}
