package downloader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"igresolver/pkg/logger"
)

// Sweeper periodically deletes downloaded media older than MaxAge.
type Sweeper struct {
	dir      string
	maxAge   time.Duration
	interval time.Duration
	logger   logger.Logger

	stop chan struct{}
	done chan struct{}
}

// NewSweeper creates a sweeper for the given downloads directory.
func NewSweeper(dir string, maxAge, interval time.Duration, log logger.Logger) *Sweeper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Sweeper{
		dir:      dir,
		maxAge:   maxAge,
		interval: interval,
		logger:   log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called. One sweep runs
// immediately so a restart cleans up leftovers from the previous run.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)

		s.Sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

// Sweep removes files older than MaxAge. Files deleted out from under
// the sweep are not an error.
func (s *Sweeper) Sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnWithFields("downloads sweep failed", map[string]interface{}{
				"dir":   s.dir,
				"error": err.Error(),
			})
		}
		return
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnWithFields("failed to remove stale download", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.InfoWithFields("downloads sweep complete", map[string]interface{}{
			"removed": removed,
		})
	}
}
