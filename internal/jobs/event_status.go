package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/snapvault/gallery-server-go/internal/repository"
)

const syncTimeout = 30 * time.Second

// EventStatusJob advances the event lifecycle on UTC half-day boundaries.
// Every tick runs the activation pass and then the close pass; the two SQL
// predicates share one threshold, so a row matches at most one of them.
type EventStatusJob struct {
	eventRepo      repository.EventRepository
	openEarlyHours int
	closeLateHours int
	done           chan struct{}
}

func NewEventStatusJob(eventRepo repository.EventRepository, openEarlyHours, closeLateHours int) *EventStatusJob {
	return &EventStatusJob{
		eventRepo:      eventRepo,
		openEarlyHours: openEarlyHours,
		closeLateHours: closeLateHours,
		done:           make(chan struct{}),
	}
}

func (j *EventStatusJob) Start() {
	go j.run()
	log.Info().
		Int("openEarlyHours", j.openEarlyHours).
		Int("closeLateHours", j.closeLateHours).
		Msg("event status job started")
}

func (j *EventStatusJob) Stop() {
	close(j.done)
	log.Info().Msg("event status job stopped")
}

func (j *EventStatusJob) run() {
	// Catch up immediately; the process may have been down across a boundary.
	j.runSync()

	for {
		delay := untilNextHalfDayBoundary(time.Now())
		timer := time.NewTimer(delay)

		select {
		case <-j.done:
			timer.Stop()
			return
		case <-timer.C:
			// The next timer is armed only after this pass settles, so slow
			// database passes never stack.
			j.runSync()
		}
	}
}

func (j *EventStatusJob) runSync() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	if _, _, err := j.Sync(ctx); err != nil {
		log.Error().Err(err).Msg("event status sync failed")
	}
}

// Sync runs one transition pass and returns the affected row counts. The
// internal trigger endpoint calls this directly.
func (j *EventStatusJob) Sync(ctx context.Context) (activated, closed int64, err error) {
	activated, err = j.eventRepo.ActivateDue(ctx, j.openEarlyHours, j.closeLateHours)
	if err != nil {
		return 0, 0, err
	}

	closed, err = j.eventRepo.CloseDue(ctx, j.closeLateHours)
	if err != nil {
		return activated, 0, err
	}

	if activated > 0 || closed > 0 {
		log.Info().
			Int64("activated", activated).
			Int64("closed", closed).
			Msg("event status transitions applied")
	} else {
		log.Debug().Msg("event status sync: nothing due")
	}
	return activated, closed, nil
}

// untilNextHalfDayBoundary returns the delay to the next UTC 00:00 or 12:00
// strictly after now, clamped to at least one second so a tick that lands
// exactly on a boundary cannot rearm for zero.
func untilNextHalfDayBoundary(now time.Time) time.Duration {
	now = now.UTC()

	boundary := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for !boundary.After(now) {
		boundary = boundary.Add(12 * time.Hour)
	}

	delay := boundary.Sub(now)
	if delay < time.Second {
		delay = time.Second
	}
	return delay
}
