package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/metrics"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/session"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
)

// HousekeepingService periodically deletes expired one time codes and, for
// backends that do not expire entries themselves, expired sessions. A single
// DELETE keyed on expiry commutes with concurrent issue and verify.
type HousekeepingService struct {
	Store    store.Store
	Sessions session.Purger // optional
	Logger   *slog.Logger
	Interval time.Duration

	// Now is the clock; nil means time.Now.
	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. If interval is 0 or
// negative, it defaults to 10 minutes.
func NewHousekeepingService(store store.Store, sessions session.Purger, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &HousekeepingService{
		Store:    store,
		Sessions: sessions,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one sweep. Each step is independent; a failure in one does not
// stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	n, err := s.Store.OTPCodes().DeleteExpiredOTPCodes(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired otp codes", "error", err)
	} else {
		metrics.HousekeepingDeletedTotal.WithLabelValues("otp_codes").Add(float64(n))
		s.Logger.Debug("deleted expired otp codes", "count", n)
	}

	if s.Sessions != nil {
		purged, err := s.Sessions.Purge(ctx)
		if err != nil {
			s.Logger.Error("failed to purge expired sessions", "error", err)
		} else {
			metrics.HousekeepingDeletedTotal.WithLabelValues("sessions").Add(float64(purged))
			s.Logger.Debug("purged expired sessions", "count", purged)
		}
	}
}
