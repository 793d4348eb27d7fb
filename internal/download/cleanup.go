package download

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// CleanupArtifact deletes a consumed artifact. Missing files are fine.
func CleanupArtifact(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Str("path", path).Msg("artifact cleanup failed")
	}
}

// CleanupUserFiles removes every artifact the user left behind, matched by
// the <userID>_ filename prefix.
func (o *Orchestrator) CleanupUserFiles(userID int64) {
	prefix := fmt.Sprintf("%d_", userID)
	entries, err := os.ReadDir(o.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(o.dir, e.Name())); err != nil {
			log.Debug().Err(err).Str("file", e.Name()).Msg("stale file removal failed")
		}
	}
}

// SweepStale removes artifacts older than maxAge and returns how many went.
// Runs on a schedule to catch files orphaned by crashed jobs.
func (o *Orchestrator) SweepStale(maxAge time.Duration) int {
	entries, err := os.ReadDir(o.dir)
	if err != nil {
		return 0
	}
	cutoff := o.now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(o.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed
}
