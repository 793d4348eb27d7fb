package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		url  string
		want Platform
	}{
		{"https://www.youtube.com/watch?v=abc", YouTube},
		{"https://youtu.be/abc", YouTube},
		{"https://m.youtube.com/watch?v=abc", YouTube},
		{"https://www.tiktok.com/@user/video/123", TikTok},
		{"https://vm.tiktok.com/xyz", TikTok},
		{"https://instagram.com/reel/abc", Instagram},
		{"https://x.com/user/status/1", Twitter},
		{"https://twitter.com/user/status/1", Twitter},
		{"https://fb.watch/abc", Facebook},
		{"https://www.reddit.com/r/videos/comments/x", Reddit},
		{"https://vimeo.com/123", Vimeo},
		{"https://clips.twitch.tv/abc", Twitch},
		{"https://example.com/video", Unknown},
		{"not a url at all", Unknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Detect(c.url), "url: %s", c.url)
	}
}

func TestDetectIsCaseInsensitiveAndIgnoresWWW(t *testing.T) {
	assert.Equal(t, YouTube, Detect("HTTPS://WWW.YOUTUBE.COM/watch?v=abc"))
	assert.Equal(t, "youtube.com", Host("https://WWW.YouTube.com/watch"))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("https://www.youtube.com/watch?v=abc", DefaultAllowList))
	assert.True(t, Supported("https://vm.tiktok.com/xyz", DefaultAllowList))
	assert.False(t, Supported("https://evil.example.com/video", DefaultAllowList))
	assert.False(t, Supported("://broken", DefaultAllowList))

	// custom allow-list narrows what is accepted
	assert.False(t, Supported("https://www.youtube.com/watch", []string{"tiktok"}))
}

func TestName(t *testing.T) {
	assert.Equal(t, "🎬 YouTube", YouTube.Name())
	assert.Equal(t, "🌐 Unknown", Unknown.Name())
	assert.Equal(t, "🌐 Unknown", Platform("made-up").Name())
}

func TestExtractURL(t *testing.T) {
	assert.Equal(t, "https://youtu.be/abc", ExtractURL("check this https://youtu.be/abc out"))
	assert.Equal(t, "https://www.tiktok.com/x", ExtractURL("www.tiktok.com/x"))
	assert.Equal(t, "https://youtu.be/abc", ExtractURL("https://youtu.be/abc."))
	assert.Equal(t, "", ExtractURL("no link here"))
}

func TestResolveYouTube(t *testing.T) {
	p, prof := Resolve("https://www.youtube.com/watch?v=abc")
	assert.Equal(t, YouTube, p)
	assert.Equal(t, youtubeFormat, prof.FormatFilter)
	assert.Contains(t, prof.Headers["User-Agent"], "Mozilla/5.0")
	assert.Empty(t, prof.ExtractorArgs)
}

func TestResolveTikTok(t *testing.T) {
	p, prof := Resolve("https://www.tiktok.com/@u/video/1")
	assert.Equal(t, TikTok, p)
	assert.Equal(t, bestFormat, prof.FormatFilter)
	assert.Equal(t, "https://www.tiktok.com/", prof.Headers["Referer"])
	assert.Equal(t, "api22-normal-c-useast1a.tiktokv.com", prof.ExtractorArgs["tiktok:api_hostname"])
}

func TestResolveGeneralDefaultExcludesAV01(t *testing.T) {
	p, prof := Resolve("https://vimeo.com/123")
	assert.Equal(t, Vimeo, p)
	assert.Contains(t, prof.FormatFilter, "vcodec!*=av01")
	assert.Contains(t, prof.Headers, "Accept-Language")
}

func TestResolveIsDeterministic(t *testing.T) {
	p1, prof1 := Resolve("https://www.tiktok.com/@u/video/1")
	p2, prof2 := Resolve("https://www.tiktok.com/@u/video/1")
	assert.Equal(t, p1, p2)
	assert.Equal(t, prof1, prof2)
}
