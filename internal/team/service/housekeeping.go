package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/lodgeline/lodgeline/internal/team/store"
)

// DefaultInviteRetention is how long consumed invitations are kept before
// housekeeping purges them. Pending invitations are never purged.
const DefaultInviteRetention = 90 * 24 * time.Hour

// HousekeepingService periodically purges terminal invitations to prevent
// unbounded growth of the member_invitations table.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping worker. A non-positive
// interval defaults to 1 hour; a non-positive retention defaults to 90 days.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if retention <= 0 {
		retention = DefaultInviteRetention
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		"interval", s.Interval,
		"retention", s.Retention,
	)
}

// Stop shuts down the worker, blocking until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep once immediately on startup.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep deletes accepted, expired and cancelled invitations that have been
// in their terminal state longer than the retention window.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-s.Retention)

	if err := s.Store.Invitations().DeleteTerminalInvitationsBefore(ctx, cutoff); err != nil {
		s.Logger.Error("failed to purge terminal invitations", "error", err)
		return
	}
	s.Logger.Debug("purged terminal invitations", "cutoff", cutoff)
}
