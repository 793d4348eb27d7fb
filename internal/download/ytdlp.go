package download

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wapuda/clipsaver_pro/internal/logx"
)

// YTDLP runs the yt-dlp binary as the extraction capability. The subprocess
// performs its own bounded retries (socket timeout, 3 retries); the
// orchestrator's wall-clock timeout sits above that.
type YTDLP struct {
	Binary string
}

func NewYTDLP() *YTDLP {
	return &YTDLP{Binary: "yt-dlp"}
}

type ytdlpInfo struct {
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Extractor string  `json:"extractor"`
	ViewCount int64   `json:"view_count"`
	Filename  string  `json:"_filename"`
}

// buildArgs assembles the yt-dlp argv for one extraction attempt.
func (y *YTDLP) buildArgs(req ExtractRequest) []string {
	args := []string{
		"-f", req.Profile.FormatFilter,
		"--no-playlist",
		"--no-warnings",
		"--no-progress",
		"--no-color",
		"--print-json",
		"--socket-timeout", "30",
		"--retries", "3",
		"--fragment-retries", "3",
		"--geo-bypass",
		"--no-check-certificates",
		"-o", req.OutputTemplate,
	}
	// deterministic flag order keeps logs diffable
	for _, k := range sortedKeys(req.Profile.Headers) {
		args = append(args, "--add-header", k+":"+req.Profile.Headers[k])
	}
	for _, k := range sortedKeys(req.Profile.ExtractorArgs) {
		args = append(args, "--extractor-args", k+"="+req.Profile.ExtractorArgs[k])
	}
	return append(args, req.URL)
}

func (y *YTDLP) Extract(ctx context.Context, req ExtractRequest) (*Metadata, error) {
	if _, err := exec.LookPath(y.Binary); err != nil {
		return nil, ErrExtractorUnavailable
	}

	cmd := exec.CommandContext(ctx, y.Binary, y.buildArgs(req)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	// surface tool chatter as debug lines regardless of outcome
	if stderr.Len() > 0 {
		lw := logx.NewLineWriter(map[string]string{"tool": y.Binary}, zerolog.DebugLevel)
		lw.Pipe(bytes.NewReader(stderr.Bytes()))
	}

	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = runErr.Error()
		}
		return nil, fmt.Errorf("yt-dlp: %s", msg)
	}

	// --print-json emits one JSON object per downloaded entry; with
	// --no-playlist there is exactly one, on the last non-empty line.
	var infoLine string
	for _, ln := range strings.Split(stdout.String(), "\n") {
		if s := strings.TrimSpace(ln); s != "" {
			infoLine = s
		}
	}
	if infoLine == "" {
		return nil, fmt.Errorf("yt-dlp: no metadata in output")
	}
	var info ytdlpInfo
	if err := json.Unmarshal([]byte(infoLine), &info); err != nil {
		return nil, fmt.Errorf("yt-dlp: decode metadata: %w", err)
	}

	return &Metadata{
		Title:       info.Title,
		DurationSec: int(info.Duration),
		Extractor:   info.Extractor,
		ViewCount:   info.ViewCount,
		Filename:    info.Filename,
	}, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
