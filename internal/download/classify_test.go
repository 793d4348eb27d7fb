package download

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKnownPatterns(t *testing.T) {
	cases := []struct {
		raw  string
		want Kind
	}{
		{"Video unavailable on this platform", KindNotAvailable},
		{"ERROR: content is not available in your plan", KindNotAvailable},
		{"This video is private", KindPrivate},
		{"Sign in to confirm you're not a bot", KindAuthRequired},
		{"login required to view this content", KindAuthRequired},
		{"blocked due to copyright claim", KindCopyrightBlocked},
		{"this video is age-restricted", KindAgeRestricted},
		{"geo restriction applies", KindGeoBlocked},
		{"The uploader has not made this video available in your country", KindGeoBlocked},
		{"some weird failure nobody has seen", KindUnknown},
	}
	for _, c := range cases {
		f := Classify(c.raw)
		assert.Equal(t, c.want, f.Kind, "raw: %s", c.raw)
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	// mentions both "not available" and "country"; availability is checked first
	f := Classify("video not available in your country")
	assert.Equal(t, KindNotAvailable, f.Kind)
}

func TestClassifyTruncatesUnknown(t *testing.T) {
	raw := strings.Repeat("x", 500)
	f := Classify(raw)
	assert.Equal(t, KindUnknown, f.Kind)
	assert.Len(t, f.Message, maxDiagnosticLen)
}

func TestClassifyCaseInsensitive(t *testing.T) {
	assert.Equal(t, KindPrivate, Classify("THIS VIDEO IS PRIVATE").Kind)
}

func TestUserMessageDistinctPerKind(t *testing.T) {
	kinds := []Kind{
		KindNotAvailable, KindPrivate, KindAuthRequired, KindCopyrightBlocked,
		KindAgeRestricted, KindGeoBlocked, KindSizeExceeded, KindArtifactMissing,
		KindTimeout, KindExtractorUnavailable, KindUnknown,
	}
	seen := map[string]Kind{}
	for _, k := range kinds {
		msg := (&Failure{Kind: k}).UserMessage()
		assert.NotEmpty(t, msg)
		if prev, dup := seen[msg]; dup {
			t.Errorf("kinds %s and %s share message %q", prev, k, msg)
		}
		seen[msg] = k
	}
}

func TestSizeExceededMessageCarriesSizes(t *testing.T) {
	f := &Failure{Kind: KindSizeExceeded, SizeBytes: 120 * 1024 * 1024, LimitBytes: 50 * 1024 * 1024}
	msg := f.UserMessage()
	assert.Contains(t, msg, "120MB")
	assert.Contains(t, msg, "50MB")
}
