package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"review_system/internal/domain"
)

// Runner is the slice of the processing service the scheduler needs.
type Runner interface {
	ProcessAllFiles(ctx context.Context) (domain.RunSummary, error)
}

// Scheduler triggers full ingestion runs on a cron spec. A tick that lands
// while the previous run is still active is skipped, not queued.
type Scheduler struct {
	c   *cron.Cron
	log zerolog.Logger
}

func New(r Runner, spec string, logger zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{log: logger}
	s.c = cron.New(cron.WithChain(
		cron.Recover(cronLog{logger}),
		cron.SkipIfStillRunning(cronLog{logger}),
	))
	_, err := s.c.AddFunc(spec, func() {
		logger.Info().Msg("scheduled processing started")
		sum, err := r.ProcessAllFiles(context.Background())
		if err != nil {
			logger.Error().Err(err).Msg("scheduled processing failed")
			return
		}
		logger.Info().
			Str("run_id", sum.RunID).
			Int("dispatched", sum.FilesDispatched).
			Int("failed", sum.FilesFailed).
			Int("records", sum.RecordsProcessed).
			Msg("scheduled processing completed")
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() { s.c.Start() }

// Stop halts scheduling and waits for an in-flight run to finish, bounded
// by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

// cronLog adapts zerolog to the cron.Logger interface.
type cronLog struct{ l zerolog.Logger }

func (c cronLog) Info(msg string, keysAndValues ...interface{}) {
	c.l.Info().Fields(keysAndValues).Msg(msg)
}

func (c cronLog) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
