package files

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/contre95/tubequeue/src/features/config"
)

const sweepInterval = time.Hour

// Janitor removes leftovers in the temp dir older than media.temp_max_age_hours.
type Janitor struct {
	config   *config.Manager
	stopChan chan struct{}
}

// NewJanitor creates a new Janitor.
func NewJanitor(cfg *config.Manager) *Janitor {
	return &Janitor{
		config:   cfg,
		stopChan: make(chan struct{}),
	}
}

// Start sweeps once and then every hour until Stop is called.
func (j *Janitor) Start() {
	go func() {
		j.Sweep(time.Now())
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				j.Sweep(now)
			case <-j.stopChan:
				return
			}
		}
	}()
}

// Stop halts the periodic sweep.
func (j *Janitor) Stop() {
	close(j.stopChan)
}

// Sweep removes every entry of the temp dir last modified before now minus the max age
// and returns how many were removed. A max age of 0 disables the sweep.
func (j *Janitor) Sweep(now time.Time) int {
	media := j.config.Get().Media
	if media.TempMaxAgeHours <= 0 {
		return 0
	}
	cutoff := now.Add(-time.Duration(media.TempMaxAgeHours) * time.Hour)

	entries, err := os.ReadDir(media.TempDir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Failed to read temp directory", "dir", media.TempDir, "error", err)
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(media.TempDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			slog.Warn("Failed to remove old temp entry", "path", path, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		slog.Info("Removed old temp files", "dir", media.TempDir, "count", removed)
	}
	return removed
}
