package platform

// browser-like UA; several sites serve broken formats to unknown agents
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// The general format filter avoids av01 so no remux step is needed.
// YouTube gets the pre-merged mp4 ladder with itag fallbacks; short-form and
// social platforms deliver a single progressive file, so plain "best" works.
const (
	generalFormat = "best[ext=mp4][vcodec!*=av01]/best[ext=mp4]/best[vcodec!*=av01]/best"
	youtubeFormat = "best[ext=mp4][height<=720]/best[ext=mp4]/18/22/best"
	bestFormat    = "best"
)

// ExtractionProfile is the structured per-platform configuration handed to
// the extractor: format filter, extra HTTP headers, and extractor-specific
// parameters.
type ExtractionProfile struct {
	FormatFilter  string
	Headers       map[string]string
	ExtractorArgs map[string]string // keys are "extractor:key" style hints
}

// Resolve returns the platform identity and its extraction profile for a
// URL. Pure function of the URL's host.
func Resolve(rawURL string) (Platform, ExtractionProfile) {
	p := Detect(rawURL)
	prof := ExtractionProfile{
		FormatFilter: generalFormat,
		Headers: map[string]string{
			"User-Agent":      defaultUserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-us,en;q=0.5",
		},
	}

	switch p {
	case YouTube:
		prof.FormatFilter = youtubeFormat
		prof.Headers = map[string]string{"User-Agent": defaultUserAgent}
	case TikTok:
		prof.FormatFilter = bestFormat
		prof.Headers = map[string]string{
			"User-Agent": defaultUserAgent,
			"Referer":    "https://www.tiktok.com/",
			"Accept":     "*/*",
		}
		prof.ExtractorArgs = map[string]string{
			"tiktok:api_hostname": "api22-normal-c-useast1a.tiktokv.com",
		}
	case Instagram, Twitter:
		prof.FormatFilter = bestFormat
	}
	return p, prof
}
