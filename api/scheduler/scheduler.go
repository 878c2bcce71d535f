package scheduler

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler handles periodic background jobs. Today that is retention of the
// debug PDF artifacts the export pipeline drops on local disk.
type Scheduler struct {
	cron        *cron.Cron
	artifactDir string
	maxAge      time.Duration
}

// NewScheduler creates a new scheduler instance for the given artifact dir.
func NewScheduler(artifactDir string) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		artifactDir: artifactDir,
		maxAge:      30 * 24 * time.Hour,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Purge aged artifacts daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.purgeArtifacts)
	if err != nil {
		zap.S().Errorw("failed to register artifact purge job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("artifact retention scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("artifact retention scheduler stopped")
}

// purgeArtifacts removes debug PDFs older than the retention window.
func (s *Scheduler) purgeArtifacts() {
	cutoff := time.Now().Add(-s.maxAge)
	removed := 0

	entries, err := os.ReadDir(s.artifactDir)
	if err != nil {
		zap.S().Warnw("failed to read artifact dir", "dir", s.artifactDir, "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.artifactDir, entry.Name())); err != nil {
				zap.S().Warnw("failed to remove artifact", "name", entry.Name(), "error", err)
				continue
			}
			removed++
		}
	}

	zap.S().Infow("artifact purge finished", "removed", removed)
}
