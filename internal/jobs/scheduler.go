package jobs

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// TrimSpec runs the stream trim once a day at 03:00.
const TrimSpec = "0 0 3 * * *"

// Scheduler keeps the ingestion stream bounded.
type Scheduler struct {
	cron   *cron.Cron
	queue  *redis.Client
	stream string
	maxLen int64
	log    zerolog.Logger
}

func NewScheduler(queue *redis.Client, stream string, maxLen int64, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		queue:  queue,
		stream: stream,
		maxLen: maxLen,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil || s.maxLen <= 0 {
		return nil
	}

	if _, err := s.cron.AddFunc(TrimSpec, s.trimStream); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) trimStream() {
	removed, err := s.queue.XTrimMaxLenApprox(context.Background(), s.stream, s.maxLen, 0).Result()
	if err != nil {
		s.log.Error().Err(err).Str("stream", s.stream).Msg("trim stream failed")
		return
	}
	s.log.Info().Str("stream", s.stream).Int64("removed", removed).Msg("stream trimmed")
}
