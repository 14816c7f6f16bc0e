package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/luminalib/lumina-server/internal/logger"
	"github.com/luminalib/lumina-server/internal/service"
)

// SessionCleanupJob periodically removes expired sessions.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable and stops the cleanup loop.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob starts the background session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessions := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		// Run once at startup to clear sessions that expired while down.
		cleanupSessions(ctx, sessions, log)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleanupSessions(ctx, sessions, log)
			}
		}
	}()

	log.Info("Session cleanup job started")
	return &SessionCleanupJob{cancel: cancel}, nil
}

func cleanupSessions(ctx context.Context, sessions *service.SessionService, log *logger.Logger) {
	deleted, err := sessions.DeleteExpiredSessions(ctx)
	if err != nil {
		log.Warn("Session cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		log.Info("Expired sessions removed", "count", deleted)
	}
}
