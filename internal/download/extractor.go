package download

import (
	"context"
	"errors"

	"github.com/wapuda/clipsaver_pro/internal/platform"
)

// ErrExtractorUnavailable means the extraction tool is not installed in the
// runtime environment.
var ErrExtractorUnavailable = errors.New("extractor not found in PATH")

// ExtractRequest carries everything the extraction capability needs for one
// attempt.
type ExtractRequest struct {
	URL            string
	OutputTemplate string // output path template, extension decided by the tool
	Profile        platform.ExtractionProfile
}

// Metadata is what a successful extraction reports back.
type Metadata struct {
	Title       string
	DurationSec int
	Extractor   string // source platform as reported by the tool
	ViewCount   int64
	Filename    string // artifact path the tool claims it wrote
}

// Extractor is the external media-extraction capability: given a URL and a
// profile it either produces a local file plus metadata or fails. The
// orchestrator treats it as opaque, including its internal retries.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (*Metadata, error)
}
