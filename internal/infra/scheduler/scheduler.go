package scheduler

import (
	"context"
	"fmt"
	"time"

	"showtime_alert_bot/internal/app" // For RunSummary
	"showtime_alert_bot/internal/infra/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Checker is the job the scheduler triggers.
type Checker interface {
	Run(ctx context.Context) (*app.RunSummary, error)
}

type ShowtimeScheduler struct {
	cronEngine *cron.Cron
	checker    Checker
	logger     *logrus.Entry
	cronSpec   string
	runTimeout time.Duration
}

// NewShowtimeScheduler builds a scheduler that runs checker on cronSpec (e.g. "@every 60m").
// A tick that arrives while the previous run is still going is skipped.
func NewShowtimeScheduler(
	checker Checker,
	entry *logrus.Entry,
	cronSpec string,
	location *time.Location,
	runTimeout time.Duration,
) *ShowtimeScheduler {
	if location == nil {
		location = time.Local
	}
	cronLogger := logger.NewCronLogger(entry)
	return &ShowtimeScheduler{
		cronEngine: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		checker:    checker,
		logger:     entry,
		cronSpec:   cronSpec,
		runTimeout: runTimeout,
	}
}

func (s *ShowtimeScheduler) Start() error {
	s.logger.WithField("spec", s.cronSpec).Info("Starting showtime scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.runCheck); err != nil {
		return fmt.Errorf("could not add showtime check cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.Info("Showtime scheduler started.")
	return nil
}

func (s *ShowtimeScheduler) runCheck() {
	s.logger.Info("Cron job triggered for showtime check.")
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	summary, err := s.checker.Run(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Showtime check failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"run_id":  summary.RunID,
		"alerts":  summary.Alerts,
		"retired": summary.Retired,
		"failed":  summary.Failed,
	}).Info("Showtime check completed")
}

func (s *ShowtimeScheduler) Stop() {
	s.logger.Info("Stopping showtime scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Showtime scheduler gracefully stopped.")
}
