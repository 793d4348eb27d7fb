package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wapuda/clipsaver_pro/internal/platform"
)

// Success is the terminal outcome of a completed download. The artifact at
// FilePath belongs to the caller, who must delete it once consumed.
type Success struct {
	FilePath       string
	Title          string
	DurationSec    int
	SourcePlatform string
	ViewCount      int64
}

// probeExts is the ordered list of container extensions tried when the
// artifact lands under a different extension than requested.
var probeExts = []string{".mp4", ".webm", ".mkv", ".mov", ".avi", ".flv"}

// Orchestrator runs one download attempt end to end: per-user pre-cleanup,
// strategy resolution, the timed extraction call, artifact location, size
// enforcement, and failure classification.
type Orchestrator struct {
	dir       string
	maxBytes  int64
	timeout   time.Duration
	extractor Extractor
	now       func() time.Time
}

func NewOrchestrator(dir string, maxBytes int64, timeout time.Duration, ex Extractor) (*Orchestrator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	return &Orchestrator{
		dir:       dir,
		maxBytes:  maxBytes,
		timeout:   timeout,
		extractor: ex,
		now:       time.Now,
	}, nil
}

// Download fetches the media behind url for userID. The URL must already
// have passed the platform allow-list check. Exactly one of the returns is
// non-nil; no fault propagates past this method.
func (o *Orchestrator) Download(ctx context.Context, rawURL string, userID int64) (s *Success, f *Failure) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int64("uid", userID).Msg("download panicked")
			s, f = nil, &Failure{Kind: KindUnknown, Message: truncate(fmt.Sprint(r), maxDiagnosticLen)}
		}
	}()

	// at most one stale job's files per user survive between attempts
	o.CleanupUserFiles(userID)

	p, prof := platform.Resolve(rawURL)
	ts := o.now().Unix()
	tmpl := filepath.Join(o.dir, fmt.Sprintf("%d_%d_%%(title).40s.%%(ext)s", userID, ts))

	type result struct {
		meta *Metadata
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		// detached context: on timeout the worker is abandoned, not
		// killed; the extractor bounds its own lifetime
		meta, err := o.extractor.Extract(context.Background(), ExtractRequest{
			URL:            rawURL,
			OutputTemplate: tmpl,
			Profile:        prof,
		})
		ch <- result{meta, err}
	}()

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	var r result
	select {
	case r = <-ch:
	case <-timer.C:
		return nil, &Failure{Kind: KindTimeout, Message: fmt.Sprintf("no result within %s", o.timeout)}
	case <-ctx.Done():
		return nil, &Failure{Kind: KindTimeout, Message: "request canceled"}
	}

	if r.err != nil {
		if errors.Is(r.err, ErrExtractorUnavailable) {
			return nil, &Failure{Kind: KindExtractorUnavailable, Message: r.err.Error()}
		}
		return nil, Classify(r.err.Error())
	}
	if r.meta == nil {
		return nil, &Failure{Kind: KindUnknown, Message: "extractor returned no metadata"}
	}

	path := o.locateArtifact(r.meta.Filename, userID, ts)
	if path == "" {
		return nil, &Failure{Kind: KindArtifactMissing, Message: "no artifact found after extraction"}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &Failure{Kind: KindArtifactMissing, Message: err.Error()}
	}
	if info.Size() > o.maxBytes {
		if rmErr := os.Remove(path); rmErr != nil {
			log.Error().Err(rmErr).Str("path", path).Msg("oversize artifact cleanup failed")
		}
		return nil, &Failure{
			Kind:       KindSizeExceeded,
			Message:    fmt.Sprintf("artifact is %d bytes, limit %d", info.Size(), o.maxBytes),
			SizeBytes:  info.Size(),
			LimitBytes: o.maxBytes,
		}
	}

	source := r.meta.Extractor
	if source == "" {
		source = string(p)
	}
	return &Success{
		FilePath:       path,
		Title:          SanitizeTitle(r.meta.Title),
		DurationSec:    r.meta.DurationSec,
		SourcePlatform: source,
		ViewCount:      r.meta.ViewCount,
	}, nil
}

// locateArtifact finds the downloaded file: the reported path first, then
// sibling extensions, then any file matching this job's name prefix.
func (o *Orchestrator) locateArtifact(reported string, userID, ts int64) string {
	if reported != "" {
		if fileExists(reported) {
			return reported
		}
		base := strings.TrimSuffix(reported, filepath.Ext(reported))
		for _, ext := range probeExts {
			if fileExists(base + ext) {
				return base + ext
			}
		}
	}
	matches, err := filepath.Glob(filepath.Join(o.dir, fmt.Sprintf("%d_%d_*", userID, ts)))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return matches[0]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

var illegalTitleChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeTitle strips characters illegal in file names and caps the length.
func SanitizeTitle(title string) string {
	title = illegalTitleChars.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) > 100 {
		title = string(runes[:100])
	}
	if title == "" {
		title = "video"
	}
	return title
}
