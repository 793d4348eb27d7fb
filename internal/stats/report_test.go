package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCTR(t *testing.T) {
	assert.Equal(t, 0.0, CTR(0, 0))
	assert.Equal(t, 0.0, CTR(5, 0), "zero shown always means zero CTR")
	assert.InDelta(t, 2.5, CTR(5, 200), 1e-9)
	assert.InDelta(t, 100.0, CTR(10, 10), 1e-9)
}

func TestHealthThresholds(t *testing.T) {
	assert.Equal(t, HealthHealthy, Health(2.1))
	assert.Equal(t, HealthWatch, Health(2.0))
	assert.Equal(t, HealthWatch, Health(0.6))
	assert.Equal(t, HealthUnderperforming, Health(0.5))
	assert.Equal(t, HealthUnderperforming, Health(0), "zero impressions count as underperforming")
}

func TestAvgDownloadsPerDay(t *testing.T) {
	empty := Aggregate{TotalDownloads: 0}
	assert.Equal(t, 0.0, empty.AvgDownloadsPerDay(), "floor of one day avoids division by zero")

	a := Aggregate{
		TotalDownloads: 10,
		DailyStats: map[string]*DayCounters{
			"2025-03-09": {Downloads: 4},
			"2025-03-10": {Downloads: 6},
		},
	}
	assert.InDelta(t, 5.0, a.AvgDownloadsPerDay(), 1e-9)
}

func TestOverallCTRSumsAllAds(t *testing.T) {
	a := Aggregate{
		TotalAdsShown: 200,
		AdClicks: map[string]*AdCounters{
			"a": {Shown: 150, Clicks: 3},
			"b": {Shown: 50, Clicks: 1},
		},
	}
	assert.Equal(t, 4, a.TotalClicks())
	assert.InDelta(t, 2.0, a.OverallCTR(), 1e-9)
}

func TestAdminReportContainsPerAdLines(t *testing.T) {
	a := Aggregate{
		TotalDownloads: 1,
		TotalAdsShown:  100,
		AdClicks: map[string]*AdCounters{
			"promo1": {Shown: 100, Clicks: 5},
		},
		DailyStats: map[string]*DayCounters{"2025-03-10": {Downloads: 1, AdsShown: 100, Clicks: 5}},
		UserStats:  map[string]*UserCounters{"42": {TotalDownloads: 1}},
	}
	rep := a.AdminReport("2025-03-10")
	assert.Contains(t, rep, "promo1: 5/100 (5.0%)")
	assert.Contains(t, rep, "🟢")
	assert.Contains(t, rep, "Users: 1")
}
