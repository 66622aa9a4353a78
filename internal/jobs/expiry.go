package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/davimurta/aurora-pairing-server/internal/repository"
)

// ExpirySweep periodically reports how many pending connection codes have
// aged past their activation window. Records are never deleted: a code must
// stay reserved forever so it can never be reissued to another psychologist.
type ExpirySweep struct {
	repo     repository.ConnectionRepository
	interval time.Duration
	done     chan struct{}
}

func NewExpirySweep(repo repository.ConnectionRepository, interval time.Duration) *ExpirySweep {
	return &ExpirySweep{
		repo:     repo,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *ExpirySweep) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("expiry sweep started")
}

func (j *ExpirySweep) Stop() {
	close(j.done)
	log.Info().Msg("expiry sweep stopped")
}

func (j *ExpirySweep) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *ExpirySweep) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := j.repo.CountExpiredPending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to count expired pending connections")
		return
	}
	if count > 0 {
		log.Info().Int64("count", count).Msg("pending connections past expiry")
	}
}
