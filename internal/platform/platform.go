// Package platform classifies source URLs and selects the extraction
// strategy for each supported site.
package platform

import (
	"net/url"
	"regexp"
	"strings"
)

// Platform identifies a recognized source site.
type Platform string

const (
	YouTube     Platform = "youtube"
	TikTok      Platform = "tiktok"
	Instagram   Platform = "instagram"
	Twitter     Platform = "twitter"
	Facebook    Platform = "facebook"
	Reddit      Platform = "reddit"
	Vimeo       Platform = "vimeo"
	Dailymotion Platform = "dailymotion"
	Twitch      Platform = "twitch"
	Pinterest   Platform = "pinterest"
	Snapchat    Platform = "snapchat"
	SoundCloud  Platform = "soundcloud"
	Unknown     Platform = "unknown"
)

// DefaultAllowList is the set of host substrings the bot accepts. URLs whose
// host matches none of these are rejected before any extraction is attempted.
var DefaultAllowList = []string{
	"youtube", "youtu.be",
	"tiktok",
	"instagram",
	"twitter", "x.com",
	"facebook", "fb.watch",
	"reddit",
	"vimeo",
	"dailymotion",
	"twitch",
	"pinterest",
	"snapchat",
	"soundcloud",
}

// detection table: first matching host substring wins
var detectTable = []struct {
	sub string
	p   Platform
}{
	{"youtube", YouTube},
	{"youtu.be", YouTube},
	{"tiktok", TikTok},
	{"instagram", Instagram},
	{"twitter", Twitter},
	{"x.com", Twitter},
	{"facebook", Facebook},
	{"fb.watch", Facebook},
	{"reddit", Reddit},
	{"vimeo", Vimeo},
	{"dailymotion", Dailymotion},
	{"twitch", Twitch},
	{"pinterest", Pinterest},
	{"snapchat", Snapchat},
	{"soundcloud", SoundCloud},
}

var displayNames = map[Platform]string{
	YouTube:     "🎬 YouTube",
	TikTok:      "📱 TikTok",
	Instagram:   "📸 Instagram",
	Twitter:     "🐦 Twitter/X",
	Facebook:    "📘 Facebook",
	Reddit:      "🔴 Reddit",
	Vimeo:       "📹 Vimeo",
	Dailymotion: "🎥 Dailymotion",
	Twitch:      "🎮 Twitch",
	Pinterest:   "📌 Pinterest",
	Snapchat:    "👻 Snapchat",
	SoundCloud:  "🎵 SoundCloud",
	Unknown:     "🌐 Unknown",
}

// Host returns the lowercased host of the URL with any www. prefix removed.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// Detect maps a URL to its platform by host substring.
func Detect(rawURL string) Platform {
	host := Host(rawURL)
	if host == "" {
		return Unknown
	}
	for _, e := range detectTable {
		if strings.Contains(host, e.sub) {
			return e.p
		}
	}
	return Unknown
}

// Name returns the platform's icon+label for display.
func (p Platform) Name() string {
	if n, ok := displayNames[p]; ok {
		return n
	}
	return displayNames[Unknown]
}

// Supported reports whether the URL's host matches the allow-list.
func Supported(rawURL string, allowList []string) bool {
	host := Host(rawURL)
	if host == "" {
		return false
	}
	for _, sub := range allowList {
		if strings.Contains(host, sub) {
			return true
		}
	}
	return false
}

var urlPattern = regexp.MustCompile(`(https?://[^\s<>"{}|\\^` + "`" + `\[\]]+|www\.[^\s<>"{}|\\^` + "`" + `\[\]]+)`)

// ExtractURL pulls the first URL out of free text. Bare www. links get an
// https scheme; trailing sentence punctuation is stripped.
func ExtractURL(text string) string {
	m := urlPattern.FindString(text)
	if m == "" {
		return ""
	}
	if strings.HasPrefix(m, "www.") {
		m = "https://" + m
	}
	return strings.TrimRight(m, ".,;:!?")
}
