package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Completer is the part of booking.Service the sweeper drives.
type Completer interface {
	CompleteElapsed(ctx context.Context) (int, error)
}

// Sweeper periodically marks confirmed bookings whose end has passed as completed.
type Sweeper struct {
	cron      *cron.Cron
	completer Completer
	log       zerolog.Logger
	timeout   time.Duration
}

// NewSweeper schedules the sweep on spec (standard cron syntax or "@every 5m").
// An empty spec returns a nil Sweeper; Start and Stop are no-ops on nil.
func NewSweeper(spec string, completer Completer, log zerolog.Logger) (*Sweeper, error) {
	if spec == "" {
		return nil, nil
	}

	s := &Sweeper{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		completer: completer,
		log:       log.With().Str("component", "completion_sweeper").Logger(),
		timeout:   time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.Run); err != nil {
		return nil, fmt.Errorf("invalid completion sweep spec %q: %w", spec, err)
	}
	return s, nil
}

// Run performs one sweep.
func (s *Sweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	ctx = s.log.WithContext(ctx)

	n, err := s.completer.CompleteElapsed(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("completion sweep failed")
		return
	}
	if n > 0 {
		s.log.Info().Int("completed", n).Msg("completion sweep finished")
	} else {
		s.log.Debug().Msg("completion sweep found nothing to do")
	}
}

func (s *Sweeper) Start() {
	if s == nil {
		return
	}
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep until ctx is done.
func (s *Sweeper) Stop(ctx context.Context) {
	if s == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("completion sweep still running at shutdown")
	}
}
