// Package scheduler runs the background sync schedule. Each tick walks the
// syncable connections and runs an unforced sync per connection, so the
// minimum re-sync interval still applies and recently synced connections are
// skipped cheaply.
package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
	portssvc "github.com/mintflow/syncd/internal/core/ports/services"
	"github.com/mintflow/syncd/internal/dto"
)

// SyncScheduler triggers periodic syncs for all eligible connections.
type SyncScheduler struct {
	connRepo portsrepo.ConnectionReader
	sync     portssvc.SyncSvcFacade
	schedule string
	logger   *slog.Logger
	cron     *cron.Cron
}

// NewSyncScheduler creates a scheduler with the given cron expression.
func NewSyncScheduler(connRepo portsrepo.ConnectionReader, sync portssvc.SyncSvcFacade, schedule string, logger *slog.Logger) *SyncScheduler {
	return &SyncScheduler{
		connRepo: connRepo,
		sync:     sync,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start registers the schedule and begins running it in the background.
func (s *SyncScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Sync scheduler started", slog.String("schedule", s.schedule))
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (s *SyncScheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Sync scheduler stopped")
}

// RunOnce syncs every eligible connection sequentially. Sequential on
// purpose: the per-connection lock already bounds concurrency and a burst of
// parallel provider calls would just invite rate limiting.
func (s *SyncScheduler) RunOnce(ctx context.Context) {
	conns, err := s.connRepo.ListSyncableConnections(ctx)
	if err != nil {
		s.logger.Error("Failed to list syncable connections", slog.String("error", err.Error()))
		return
	}

	var synced, skipped, failed int
	for _, conn := range conns {
		summary := s.sync.Sync(ctx, conn.ConnectionID, false)
		switch summary.Status {
		case dto.SyncStatusSuccess:
			synced++
		case dto.SyncStatusSkipped:
			skipped++
		default:
			failed++
		}
	}

	s.logger.Info("Scheduled sync pass completed",
		slog.Int("connections", len(conns)),
		slog.Int("synced", synced),
		slog.Int("skipped", skipped),
		slog.Int("failed", failed))
}
