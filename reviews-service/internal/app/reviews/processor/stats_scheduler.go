package processor

import (
	"context"
	"fmt"

	"shopreviews/pkg/logger"
	"shopreviews/reviews-service/internal/app/reviews/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// StatsScheduler периодически обновляет метрику активных отзывов
type StatsScheduler struct {
	cron      *cron.Cron
	refresher service.StatsRefresher
}

func NewStatsScheduler(refresher service.StatsRefresher) *StatsScheduler {
	cl := cronLogger{log: logger.With().Str("component", "cron").Logger()}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl)))

	return &StatsScheduler{
		cron:      c,
		refresher: refresher,
	}
}

// Start регистрирует задачу по расписанию и сразу выполняет её один раз
func (s *StatsScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting stats scheduler")

	if _, err := s.cron.AddFunc(schedule, func() { s.refresh(ctx) }); err != nil {
		return fmt.Errorf("invalid stats schedule %q: %w", schedule, err)
	}

	s.cron.Start()

	s.refresh(ctx)
	return nil
}

// Stop дожидается завершения запущенной задачи
func (s *StatsScheduler) Stop() {
	logger.Info().Msg("Stopping stats scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Stats scheduler stopped")
}

func (s *StatsScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

func (s *StatsScheduler) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.refresher.RefreshStats(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to refresh review stats")
		return
	}
	logger.Debug().Msg("Review stats refreshed")
}

// cronLogger направляет внутренние сообщения cron в zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
