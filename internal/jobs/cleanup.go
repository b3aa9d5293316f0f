package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/snapvault/gallery-server-go/internal/repository"
)

// CleanupJob sweeps expired organizer sessions. Guest sessions have no
// server-side expiry and are left alone.
type CleanupJob struct {
	organizerSessionRepo repository.OrganizerSessionRepository
	interval             time.Duration
	done                 chan struct{}
}

func NewCleanupJob(organizerSessionRepo repository.OrganizerSessionRepository, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		organizerSessionRepo: organizerSessionRepo,
		interval:             interval,
		done:                 make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("failed to cleanup organizer sessions")
	}
}

// RunOnce performs one sweep and returns the deleted row count. The internal
// trigger endpoint calls this directly.
func (j *CleanupJob) RunOnce(ctx context.Context) (int64, error) {
	count, err := j.organizerSessionRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Info().Int64("count", count).Msg("cleaned up expired organizer sessions")
	}
	return count, nil
}
