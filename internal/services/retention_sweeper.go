package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/clearpointhq/client-portal-api/internal/repository"
)

// RetentionSweeper periodically purges secure responses whose
// EXPIRE_AFTER_HOURS window has passed. It runs outside the request path;
// the read path independently rejects expired rows, so sweep cadence only
// bounds how long dead ciphertext lingers on disk.
type RetentionSweeper struct {
	vaultRepo repository.SecureResponseRepository
	interval  time.Duration
}

// NewRetentionSweeper creates a new RetentionSweeper
func NewRetentionSweeper(vaultRepo repository.SecureResponseRepository, interval time.Duration) *RetentionSweeper {
	return &RetentionSweeper{
		vaultRepo: vaultRepo,
		interval:  interval,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (s *RetentionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("retention sweeper started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("retention sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(time.Now())
		}
	}
}

// SweepOnce purges rows expired as of now and logs the result.
func (s *RetentionSweeper) SweepOnce(now time.Time) {
	purged, err := s.vaultRepo.DeleteExpired(now)
	if err != nil {
		slog.Error("retention sweep failed", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("retention sweep purged expired secure responses", "count", purged)
	}
}
