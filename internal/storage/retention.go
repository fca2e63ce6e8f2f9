package storage

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// PurgeOldFiles deletes regular files in both storage directories whose
// modification time is older than maxAge, and reports how many were removed.
func (s *LocalStore) PurgeOldFiles(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, dir := range []string{s.uploadsDir, s.exportsDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
					s.logger.Warn("retention remove failed", "file", e.Name(), "error", err)
					continue
				}
				removed++
			}
		}
	}
	return removed, nil
}

// SweepLoop runs the retention purge on a fixed interval until the context is
// cancelled. Errors are logged, never fatal to the loop.
func (s *LocalStore) SweepLoop(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("retention sweep started",
		"interval", interval.String(), "max_age", maxAge.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("retention sweep stopped")
			return
		case <-ticker.C:
			removed, err := s.PurgeOldFiles(maxAge)
			if err != nil {
				s.logger.Error("retention sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.Info("retention sweep removed files", "count", removed)
			}
		}
	}
}
