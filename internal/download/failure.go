package download

import "fmt"

// Kind is the stable failure taxonomy for download attempts.
type Kind string

const (
	KindNotAvailable         Kind = "not_available"
	KindPrivate              Kind = "private"
	KindAuthRequired         Kind = "auth_required"
	KindCopyrightBlocked     Kind = "copyright_blocked"
	KindAgeRestricted        Kind = "age_restricted"
	KindGeoBlocked           Kind = "geo_blocked"
	KindSizeExceeded         Kind = "size_exceeded"
	KindArtifactMissing      Kind = "artifact_missing"
	KindTimeout              Kind = "timeout"
	KindExtractorUnavailable Kind = "extractor_unavailable"
	KindUnknown              Kind = "unknown"
)

// Failure is the typed terminal outcome of a failed download. Nothing
// escapes the orchestrator as an unhandled fault; every failure cause ends
// up here.
type Failure struct {
	Kind    Kind
	Message string
	// set for KindSizeExceeded
	SizeBytes  int64
	LimitBytes int64
}

func (f *Failure) Error() string {
	return fmt.Sprintf("download failed (%s): %s", f.Kind, f.Message)
}

// UserMessage maps the failure kind to an actionable reply for the user.
func (f *Failure) UserMessage() string {
	switch f.Kind {
	case KindNotAvailable:
		return "❌ This video is unavailable or has been removed."
	case KindPrivate:
		return "🔒 This video is private."
	case KindAuthRequired:
		return "🔑 This video requires signing in to view."
	case KindCopyrightBlocked:
		return "⚖️ This video is blocked for copyright reasons."
	case KindAgeRestricted:
		return "🔞 This video is age-restricted."
	case KindGeoBlocked:
		return "🌍 This video is not available in your region."
	case KindSizeExceeded:
		return fmt.Sprintf("📦 Video is too big (%dMB, limit %dMB). Try a shorter or smaller video.",
			f.SizeBytes/(1024*1024), f.LimitBytes/(1024*1024))
	case KindArtifactMissing:
		return "❌ The file was not downloaded correctly. Please try again."
	case KindTimeout:
		return "⏰ Download timed out. Try a shorter video."
	case KindExtractorUnavailable:
		return "🛠 Downloads are temporarily unavailable. Please try again later."
	default:
		return "❌ Download failed. Please try again later."
	}
}
