package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/taskgate/internal/auth/store"
)

const defaultHousekeepingInterval = time.Hour

// HousekeepingService deletes revoked and expired refresh token rows. Dead
// rows are already refused at refresh time, so this only bounds table size.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time
}

func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = defaultHousekeepingInterval
	}
	return &HousekeepingService{Store: st, Logger: logger, Interval: interval}
}

// Run prunes once immediately and then every Interval until ctx is done.
// A failed pass is logged and retried on the next tick.
func (s *HousekeepingService) Run(ctx context.Context) {
	s.Logger.Info("housekeeping started", "interval", s.Interval)
	defer s.Logger.Info("housekeeping stopped")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		s.pass(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Go runs the service in the background. The returned stop cancels it and
// waits for an in-flight pass to finish.
func (s *HousekeepingService) Go(parent context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

func (s *HousekeepingService) pass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.Interval)
	defer cancel()

	if _, err := s.PruneRefreshTokens(ctx); err != nil {
		s.Logger.Error("prune refresh tokens failed", "error", err)
	}
}

// PruneRefreshTokens runs a single pass and reports how many rows went.
func (s *HousekeepingService) PruneRefreshTokens(ctx context.Context) (int64, error) {
	n, err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, nowOrWall(s.Now))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Logger.Info("pruned refresh tokens", "deleted", n)
	}
	return n, nil
}
