package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore keeps the last saved aggregate and counts saves.
type memStore struct {
	saved   *Aggregate
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) Load(ctx context.Context) (*Aggregate, error) {
	return m.saved, m.loadErr
}

func (m *memStore) Save(ctx context.Context, agg *Aggregate) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = agg
	m.saves++
	return nil
}

func newTestLedger(t *testing.T, store *memStore) *Ledger {
	t.Helper()
	l, err := NewLedger(context.Background(), store)
	require.NoError(t, err)
	l.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestRecordShownCreatesBuckets(t *testing.T) {
	store := &memStore{}
	l := newTestLedger(t, store)
	ctx := context.Background()

	l.RecordShown(ctx, "promo1")
	l.RecordShown(ctx, "promo1")
	l.RecordShown(ctx, "promo2")

	snap := l.Snapshot()
	assert.Equal(t, 3, snap.TotalAdsShown)
	assert.Equal(t, 2, snap.AdClicks["promo1"].Shown)
	assert.Equal(t, 1, snap.AdClicks["promo2"].Shown)
	assert.Equal(t, 3, snap.DailyStats["2025-03-10"].AdsShown)
	assert.Equal(t, 3, store.saves, "each mutation persists")

	// invariant: total shown equals the sum of per-day shown
	sum := 0
	for _, d := range snap.DailyStats {
		sum += d.AdsShown
	}
	assert.Equal(t, snap.TotalAdsShown, sum)
}

func TestRecordClickUnknownAdTolerated(t *testing.T) {
	l := newTestLedger(t, &memStore{})
	ctx := context.Background()

	// no impression yet, no day bucket: must be a silent no-op
	l.RecordClick(ctx, "ghost")

	snap := l.Snapshot()
	assert.Empty(t, snap.AdClicks)
	assert.Empty(t, snap.DailyStats)
}

func TestRecordClickCountsForKnownAd(t *testing.T) {
	l := newTestLedger(t, &memStore{})
	ctx := context.Background()

	l.RecordShown(ctx, "promo1")
	l.RecordClick(ctx, "promo1")

	snap := l.Snapshot()
	assert.Equal(t, 1, snap.AdClicks["promo1"].Clicks)
	assert.Equal(t, 1, snap.DailyStats["2025-03-10"].Clicks)
	assert.GreaterOrEqual(t, snap.AdClicks["promo1"].Shown, snap.AdClicks["promo1"].Clicks)
}

func TestRecordDownloadTracksUsers(t *testing.T) {
	l := newTestLedger(t, &memStore{})
	ctx := context.Background()

	l.RecordDownload(ctx, "42")
	l.RecordDownload(ctx, "42")
	l.RecordDownload(ctx, "7")

	snap := l.Snapshot()
	assert.Equal(t, 3, snap.TotalDownloads)
	assert.Equal(t, 3, snap.DailyStats["2025-03-10"].Downloads)
	assert.Equal(t, 2, snap.UserStats["42"].TotalDownloads)
	assert.Equal(t, "2025-03-10", snap.UserStats["42"].FirstUse)
	assert.Equal(t, 1, snap.UserStats["7"].TotalDownloads)
}

func TestPersistFailureSwallowed(t *testing.T) {
	store := &memStore{saveErr: errors.New("redis down")}
	l := newTestLedger(t, store)

	// must not panic or surface the error; the counter still advances
	l.RecordDownload(context.Background(), "42")
	assert.Equal(t, 1, l.Snapshot().TotalDownloads)
}

func TestNewLedgerLoadsExisting(t *testing.T) {
	store := &memStore{saved: &Aggregate{
		TotalDownloads: 9,
		AdClicks:       map[string]*AdCounters{"promo1": {Shown: 4, Clicks: 1}},
	}}
	l, err := NewLedger(context.Background(), store)
	require.NoError(t, err)

	snap := l.Snapshot()
	assert.Equal(t, 9, snap.TotalDownloads)
	assert.Equal(t, 4, snap.AdClicks["promo1"].Shown)
	// nil maps from a partial blob are initialized
	assert.NotNil(t, snap.DailyStats)
	assert.NotNil(t, snap.UserStats)
}

func TestNewLedgerLoadError(t *testing.T) {
	_, err := NewLedger(context.Background(), &memStore{loadErr: errors.New("boom")})
	assert.Error(t, err)
}
