package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/printdesk/pkg/domain"
)

// Cleanup removes outputs older than the retention period together with their
// generated files. It returns the number of removed outputs.
func (s *Service) Cleanup(ctx context.Context) (int, error) {
	before := s.now().Add(-s.retention)
	removed, err := s.outputs.Prune(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune outputs: %w", err)
	}

	for _, o := range removed {
		if o.Output == "" {
			continue
		}
		if err := s.media.Remove(ctx, o.Output); err != nil {
			s.logger.Warn("Failed to remove output file", "output", o.ID, "url", o.Output, "err", err)
		}
	}

	if len(removed) > 0 {
		s.logger.Info("Removed old outputs", "count", len(removed), "before", before)
	}
	if s.hooks.OnCleanup != nil {
		s.hooks.OnCleanup(ctx, &domain.CleanupEvent{
			EventBase: domain.EventBase{Timestamp: s.now(), Type: domain.EventCleanup},
			Removed:   len(removed),
			Before:    before,
		})
	}
	return len(removed), nil
}

// RunJanitor runs Cleanup once immediately and then on every interval until ctx
// is cancelled. Failed passes are logged and retried on the next tick.
func (s *Service) RunJanitor(ctx context.Context) error {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		if _, err := s.Cleanup(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("Output cleanup failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
