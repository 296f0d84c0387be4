package background

import (
	"context"
	"log/slog"
	"time"
)

// SessionExpirer drops sessions that have been idle past their TTL.
type SessionExpirer interface {
	ExpireIdle(now time.Time) int
}

// CleanupManager periodically expires idle table sessions
type CleanupManager struct {
	sessions SessionExpirer
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(sessions SessionExpirer, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		sessions: sessions,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the sweep immediately and then on every tick until Stop is
// called or ctx is cancelled. It blocks.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runCleanup()

	for {
		select {
		case <-ticker.C:
			cm.runCleanup()
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup() {
	expired := cm.sessions.ExpireIdle(cm.now())
	if expired > 0 {
		cm.logger.Info("idle session cleanup completed", slog.Int("sessions_expired", expired))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
