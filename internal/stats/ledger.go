package stats

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// AdCounters are per-creative impression/click totals.
type AdCounters struct {
	Shown  int `json:"shown"`
	Clicks int `json:"clicks"`
}

// DayCounters bucket activity by calendar day.
type DayCounters struct {
	Downloads int `json:"downloads"`
	AdsShown  int `json:"ads_shown"`
	Clicks    int `json:"clicks"`
}

// UserCounters track lifetime downloads per user.
type UserCounters struct {
	TotalDownloads int    `json:"total_downloads"`
	FirstUse       string `json:"first_use"`
}

// Aggregate is the persisted stats structure.
type Aggregate struct {
	TotalDownloads int                      `json:"total_downloads"`
	TotalAdsShown  int                      `json:"total_ads_shown"`
	AdClicks       map[string]*AdCounters   `json:"ad_clicks"`
	DailyStats     map[string]*DayCounters  `json:"daily_stats"`
	UserStats      map[string]*UserCounters `json:"user_stats"`
}

func newAggregate() *Aggregate {
	return &Aggregate{
		AdClicks:   make(map[string]*AdCounters),
		DailyStats: make(map[string]*DayCounters),
		UserStats:  make(map[string]*UserCounters),
	}
}

// Store persists the aggregate. Save must replace the stored value
// atomically.
type Store interface {
	Load(ctx context.Context) (*Aggregate, error)
	Save(ctx context.Context, agg *Aggregate) error
}

// Ledger owns the in-memory aggregate and writes it through the store after
// every mutation. Persist failures are logged and swallowed: a lost counter
// update must never fail the download that triggered it.
type Ledger struct {
	mu    sync.Mutex
	store Store
	agg   *Aggregate
	now   func() time.Time
}

func NewLedger(ctx context.Context, store Store) (*Ledger, error) {
	agg, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		agg = newAggregate()
	}
	if agg.AdClicks == nil {
		agg.AdClicks = make(map[string]*AdCounters)
	}
	if agg.DailyStats == nil {
		agg.DailyStats = make(map[string]*DayCounters)
	}
	if agg.UserStats == nil {
		agg.UserStats = make(map[string]*UserCounters)
	}
	return &Ledger{store: store, agg: agg, now: time.Now}, nil
}

func (l *Ledger) today() string {
	return l.now().Format("2006-01-02")
}

func (l *Ledger) dayLocked(day string) *DayCounters {
	d, ok := l.agg.DailyStats[day]
	if !ok {
		d = &DayCounters{}
		l.agg.DailyStats[day] = d
	}
	return d
}

func (l *Ledger) persistLocked(ctx context.Context) {
	if err := l.store.Save(ctx, l.agg); err != nil {
		log.Error().Err(err).Msg("stats persist failed")
	}
}

// RecordShown counts one impression of the given creative.
func (l *Ledger) RecordShown(ctx context.Context, adID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.agg.TotalAdsShown++
	l.dayLocked(l.today()).AdsShown++

	a, ok := l.agg.AdClicks[adID]
	if !ok {
		a = &AdCounters{}
		l.agg.AdClicks[adID] = a
	}
	a.Shown++

	l.persistLocked(ctx)
}

// RecordClick counts one click. Unknown creatives and days without a bucket
// are tolerated silently; a click can arrive long after the impression.
func (l *Ledger) RecordClick(ctx context.Context, adID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if a, ok := l.agg.AdClicks[adID]; ok {
		a.Clicks++
	}
	if d, ok := l.agg.DailyStats[l.today()]; ok {
		d.Clicks++
	}

	l.persistLocked(ctx)
}

// RecordDownload counts one successful download for the user.
func (l *Ledger) RecordDownload(ctx context.Context, userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := l.today()
	l.agg.TotalDownloads++
	l.dayLocked(today).Downloads++

	u, ok := l.agg.UserStats[userID]
	if !ok {
		u = &UserCounters{FirstUse: today}
		l.agg.UserStats[userID] = u
	}
	u.TotalDownloads++

	l.persistLocked(ctx)
}

// Snapshot returns a deep copy of the aggregate for reporting.
func (l *Ledger) Snapshot() Aggregate {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := Aggregate{
		TotalDownloads: l.agg.TotalDownloads,
		TotalAdsShown:  l.agg.TotalAdsShown,
		AdClicks:       make(map[string]*AdCounters, len(l.agg.AdClicks)),
		DailyStats:     make(map[string]*DayCounters, len(l.agg.DailyStats)),
		UserStats:      make(map[string]*UserCounters, len(l.agg.UserStats)),
	}
	for k, v := range l.agg.AdClicks {
		c := *v
		out.AdClicks[k] = &c
	}
	for k, v := range l.agg.DailyStats {
		c := *v
		out.DailyStats[k] = &c
	}
	for k, v := range l.agg.UserStats {
		c := *v
		out.UserStats[k] = &c
	}
	return out
}
