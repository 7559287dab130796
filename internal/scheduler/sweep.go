package scheduler

import (
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// SweepJobName is the name the rate limiter cleanup runs under.
const SweepJobName = "ratelimit-sweep"

// Sweeper drops idle per-client state.
type Sweeper interface {
	Sweep() int
	Len() int
}

// RegisterSweepJob runs sweeper.Sweep on cronExpr so per-client limiter state
// stays bounded between uploads.
func RegisterSweepJob(s *Service, cronExpr string, sweeper Sweeper) (gocron.Job, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("sweep job requires a sweeper")
	}

	jobLogger := log.With().
		Str("component", "ratelimit_sweep_job").
		Str("job_name", SweepJobName).
		Logger()

	job, err := s.AddJob(SweepJobName, cronExpr, func() {
		removed := sweeper.Sweep()
		if removed == 0 {
			return
		}
		jobLogger.Info().
			Int("removed", removed).
			Int("remaining", sweeper.Len()).
			Msg("Swept idle rate limit clients")
	})
	if err != nil {
		return nil, fmt.Errorf("add rate limit sweep job: %w", err)
	}
	return job, nil
}
