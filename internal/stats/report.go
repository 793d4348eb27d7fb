package stats

import (
	"fmt"
	"sort"
	"strings"
)

// Per-ad health thresholds: CTR above 2% is healthy, above 0.5% needs
// watching, the rest (including zero impressions) is underperforming.
const (
	HealthHealthy         = "healthy"
	HealthWatch           = "watch"
	HealthUnderperforming = "underperforming"
)

// CTR returns total clicks over total shown as a percentage, zero when
// nothing was shown.
func CTR(clicks, shown int) float64 {
	if shown <= 0 {
		return 0
	}
	return float64(clicks) / float64(shown) * 100
}

// Health classifies a creative's click-through rate.
func Health(ctr float64) string {
	switch {
	case ctr > 2:
		return HealthHealthy
	case ctr > 0.5:
		return HealthWatch
	default:
		return HealthUnderperforming
	}
}

func healthIcon(h string) string {
	switch h {
	case HealthHealthy:
		return "🟢"
	case HealthWatch:
		return "🟡"
	default:
		return "🔴"
	}
}

// TotalClicks sums clicks over all creatives.
func (a Aggregate) TotalClicks() int {
	total := 0
	for _, c := range a.AdClicks {
		total += c.Clicks
	}
	return total
}

// OverallCTR is the click-through rate across all creatives.
func (a Aggregate) OverallCTR() float64 {
	return CTR(a.TotalClicks(), a.TotalAdsShown)
}

// AvgDownloadsPerDay averages downloads over the days that have data, with a
// floor of one day.
func (a Aggregate) AvgDownloadsPerDay() float64 {
	days := len(a.DailyStats)
	if days < 1 {
		days = 1
	}
	return float64(a.TotalDownloads) / float64(days)
}

// Day returns the bucket for a date, zero-valued when absent.
func (a Aggregate) Day(date string) DayCounters {
	if d, ok := a.DailyStats[date]; ok {
		return *d
	}
	return DayCounters{}
}

// Report renders the user-facing stats summary for the given day.
func (a Aggregate) Report(today string) string {
	day := a.Day(today)
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Bot statistics\n\n")
	fmt.Fprintf(&b, "📅 Today (%s):\n", today)
	fmt.Fprintf(&b, "• Downloads: %d\n", day.Downloads)
	fmt.Fprintf(&b, "• Ads shown: %d\n", day.AdsShown)
	fmt.Fprintf(&b, "• Clicks: %d\n\n", day.Clicks)
	fmt.Fprintf(&b, "📈 Totals:\n")
	fmt.Fprintf(&b, "• Downloads: %d\n", a.TotalDownloads)
	fmt.Fprintf(&b, "• Ads shown: %d\n", a.TotalAdsShown)
	fmt.Fprintf(&b, "• CTR: %.1f%%\n", a.OverallCTR())
	fmt.Fprintf(&b, "• Users: %d", len(a.UserStats))
	return b.String()
}

// AdminReport renders the admin dashboard including per-ad performance.
func (a Aggregate) AdminReport(today string) string {
	day := a.Day(today)
	var b strings.Builder
	fmt.Fprintf(&b, "👑 Admin dashboard\n\n")
	fmt.Fprintf(&b, "📅 Today (%s):\n", today)
	fmt.Fprintf(&b, "├ 📥 Downloads: %d\n", day.Downloads)
	fmt.Fprintf(&b, "├ 📢 Ads shown: %d\n", day.AdsShown)
	fmt.Fprintf(&b, "└ 👆 Clicks: %d\n\n", day.Clicks)
	fmt.Fprintf(&b, "📈 Totals:\n")
	fmt.Fprintf(&b, "├ 📥 Downloads: %d\n", a.TotalDownloads)
	fmt.Fprintf(&b, "├ 📢 Ads shown: %d\n", a.TotalAdsShown)
	fmt.Fprintf(&b, "├ 📊 CTR: %.1f%%\n", a.OverallCTR())
	fmt.Fprintf(&b, "├ 👥 Users: %d\n", len(a.UserStats))
	fmt.Fprintf(&b, "└ 📉 Avg downloads/day: %.1f\n\n", a.AvgDownloadsPerDay())
	fmt.Fprintf(&b, "💰 Ad performance:")

	ids := make([]string, 0, len(a.AdClicks))
	for id := range a.AdClicks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c := a.AdClicks[id]
		ctr := CTR(c.Clicks, c.Shown)
		fmt.Fprintf(&b, "\n%s %s: %d/%d (%.1f%%)", healthIcon(Health(ctr)), id, c.Clicks, c.Shown, ctr)
	}
	return b.String()
}
