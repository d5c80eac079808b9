package worker

import (
	"context"
	"time"

	"github.com/aegisid/aegis-backend/internal/repository"
	"github.com/rs/zerolog"
)

const (
	// PruneInterval is how often expired refresh tokens are swept.
	PruneInterval = 1 * time.Hour
	// RetainRevoked keeps revoked rows around for a while so that
	// reuse of a rotated token can still be detected.
	RetainRevoked = 24 * time.Hour
)

// TokenPruneWorker periodically deletes refresh tokens that are expired
// or have been revoked long enough that they no longer matter.
type TokenPruneWorker struct {
	refreshRepo *repository.RefreshTokenRepository
	log         zerolog.Logger
}

// NewTokenPruneWorker creates a new TokenPruneWorker.
func NewTokenPruneWorker(refreshRepo *repository.RefreshTokenRepository, log zerolog.Logger) *TokenPruneWorker {
	return &TokenPruneWorker{
		refreshRepo: refreshRepo,
		log:         log.With().Str("component", "token_prune_worker").Logger(),
	}
}

// Start begins the prune loop. Call in a goroutine.
func (w *TokenPruneWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	// Run once at startup so a long-stopped deployment catches up
	// without waiting for the first tick.
	w.prune(ctx)

	ticker := time.NewTicker(PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.prune(ctx)
		}
	}
}

func (w *TokenPruneWorker) prune(ctx context.Context) {
	cutoff := time.Now().Add(-RetainRevoked)

	deleted, err := w.refreshRepo.DeleteStale(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Prune failed")
		}
		return
	}

	if deleted > 0 {
		w.log.Info().Int64("deleted", deleted).Msg("Pruned stale refresh tokens")
	}
}
