package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultRetentionInterval is how often Retain prunes when no interval is given.
const DefaultRetentionInterval = time.Hour

// Retain deletes entries older than maxAge, once immediately and then every
// interval, until ctx is done. A non-positive maxAge keeps everything and
// returns at once.
func (s *Store) Retain(ctx context.Context, maxAge, interval time.Duration, logger *zap.Logger) {
	if maxAge <= 0 {
		return
	}
	if interval <= 0 {
		interval = DefaultRetentionInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	prune := func() {
		n, err := s.DeleteBefore(ctx, s.now().Add(-maxAge))
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Warn("journal pruning failed", zap.Error(err))
		case n > 0:
			logger.Info("journal pruned", zap.Int64("deleted", n), zap.Duration("max_age", maxAge))
		}
	}

	prune()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
