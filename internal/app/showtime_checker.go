package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"showtime_alert_bot/internal/domain/alert"
	"showtime_alert_bot/internal/domain/push"
	"showtime_alert_bot/internal/domain/showtime"
	"showtime_alert_bot/internal/infra/clock"
	"showtime_alert_bot/internal/infra/movieglu"
	"showtime_alert_bot/internal/infra/onesignal"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	notificationTitle = "New Showtime Alert"

	defaultCheckConcurrency = 4
	defaultCallTimeout      = 15 * time.Second
)

// ErrCheckInProgress is returned by Run while another run is still going.
var ErrCheckInProgress = errors.New("a showtime check is already running")

// AlertStore is the part of the alert repository the checker needs.
type AlertStore interface {
	ListAll(ctx context.Context) ([]*alert.Alert, error)
	Delete(ctx context.Context, id int64) error
}

// AlertEventPublisher is notified after an alert has been retired. Failures are only logged.
type AlertEventPublisher interface {
	PublishAlertTriggered(ctx context.Context, ev alert.Triggered) error
}

// RunSummary describes one pass of the showtime checker.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	Date      string        `json:"date"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Alerts    int           `json:"alerts"`
	Venues    int           `json:"venues"`
	Matched   int           `json:"matched"`
	Notified  int           `json:"notified"`
	Retired   int           `json:"retired"`
	Failed    int           `json:"failed"`
}

func (s *RunSummary) record(o alert.Outcome) {
	switch o {
	case alert.OutcomeRetired:
		s.Matched++
		s.Notified++
		s.Retired++
	case alert.OutcomeRetireFailed:
		s.Matched++
		s.Notified++
		s.Failed++
	case alert.OutcomeNotifyFailed:
		s.Matched++
		s.Failed++
	case alert.OutcomeQueryFailed:
		s.Failed++
	}
}

type CheckerOption func(*ShowtimeChecker)

func WithClock(c clock.Clock) CheckerOption {
	return func(s *ShowtimeChecker) { s.clock = c }
}

// WithLocation sets the zone whose calendar day counts as "today".
func WithLocation(loc *time.Location) CheckerOption {
	return func(s *ShowtimeChecker) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithConcurrency caps how many venues are queried at once.
func WithConcurrency(n int) CheckerOption {
	return func(s *ShowtimeChecker) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithCallTimeout bounds each provider query and each push.
func WithCallTimeout(d time.Duration) CheckerOption {
	return func(s *ShowtimeChecker) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

func WithEventPublisher(p AlertEventPublisher) CheckerOption {
	return func(s *ShowtimeChecker) { s.events = p }
}

// ShowtimeChecker matches stored alerts against today's listings, pushes a notification
// for every match and retires the alerts that were delivered.
type ShowtimeChecker struct {
	alerts      AlertStore
	provider    showtime.Provider
	sender      push.Sender
	events      AlertEventPublisher
	clock       clock.Clock
	location    *time.Location
	concurrency int
	callTimeout time.Duration
	logger      *logrus.Entry

	running sync.Mutex
	mu      sync.RWMutex
	lastRun *RunSummary
}

func NewShowtimeChecker(
	alerts AlertStore,
	provider showtime.Provider,
	sender push.Sender,
	logger *logrus.Entry,
	opts ...CheckerOption,
) *ShowtimeChecker {
	c := &ShowtimeChecker{
		alerts:      alerts,
		provider:    provider,
		sender:      sender,
		clock:       clock.NewSystem(),
		location:    time.Local,
		concurrency: defaultCheckConcurrency,
		callTimeout: defaultCallTimeout,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LastRun returns the summary of the most recent completed run, or nil.
func (c *ShowtimeChecker) LastRun() *RunSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastRun == nil {
		return nil
	}
	s := *c.lastRun
	return &s
}

// Run performs one check over every stored alert. Only a failure to list alerts is returned;
// anything that goes wrong for a single venue or alert is logged and counted in the summary.
func (c *ShowtimeChecker) Run(ctx context.Context) (*RunSummary, error) {
	if !c.running.TryLock() {
		return nil, ErrCheckInProgress
	}
	defer c.running.Unlock()

	started := c.clock.Now()
	today := started.In(c.location)
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		Date:      today.Format(showtime.DateLayout),
		StartedAt: started,
	}
	log := c.logger.WithFields(logrus.Fields{"run_id": summary.RunID, "date": summary.Date})

	alerts, err := c.alerts.ListAll(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list alerts, aborting showtime check")
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	summary.Alerts = len(alerts)
	if len(alerts) == 0 {
		log.Info("No alerts stored, nothing to check")
		c.finish(summary, started)
		return summary, nil
	}

	groups := groupByCinema(alerts)
	summary.Venues = len(groups)
	log.WithFields(logrus.Fields{"alerts": len(alerts), "venues": len(groups)}).Info("Checking showtimes")

	// Plain group: one venue failing must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	var mu sync.Mutex
	for _, grp := range groups {
		grp := grp
		g.Go(func() error {
			outcomes := c.checkVenue(ctx, log, grp, today)
			mu.Lock()
			for _, o := range outcomes {
				summary.record(o)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	c.finish(summary, started)
	log.WithFields(logrus.Fields{
		"matched":  summary.Matched,
		"notified": summary.Notified,
		"retired":  summary.Retired,
		"failed":   summary.Failed,
		"duration": summary.Duration.String(),
	}).Info("Showtime check finished")
	return summary, nil
}

func (c *ShowtimeChecker) finish(summary *RunSummary, started time.Time) {
	summary.Duration = c.clock.Now().Sub(started)
	c.mu.Lock()
	c.lastRun = summary
	c.mu.Unlock()
}

type venueGroup struct {
	cinemaID string
	alerts   []*alert.Alert
}

// groupByCinema buckets alerts by provider venue code, keeping first-seen order.
func groupByCinema(alerts []*alert.Alert) []venueGroup {
	index := make(map[string]int)
	var groups []venueGroup
	for _, a := range alerts {
		i, ok := index[a.CinemaID]
		if !ok {
			i = len(groups)
			index[a.CinemaID] = i
			groups = append(groups, venueGroup{cinemaID: a.CinemaID})
		}
		groups[i].alerts = append(groups[i].alerts, a)
	}
	return groups
}

// checkVenue queries one venue and settles each of its alerts in order.
// The returned slice has one outcome per alert in the group. A provider panic fails the whole group.
func (c *ShowtimeChecker) checkVenue(ctx context.Context, log *logrus.Entry, grp venueGroup, today time.Time) (outcomes []alert.Outcome) {
	vlog := log.WithField("cinema_id", grp.cinemaID)
	outcomes = make([]alert.Outcome, 0, len(grp.alerts))
	defer func() {
		if r := recover(); r != nil {
			for _, a := range grp.alerts[len(outcomes):] {
				vlog.WithFields(logrus.Fields{"alert_id": a.ID, "film_id": a.FilmID, "panic": r}).
					Error("Recovered from panic while checking alert; alert kept")
				outcomes = append(outcomes, alert.OutcomeQueryFailed)
			}
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	films, err := c.provider.FetchShowtimes(callCtx, grp.cinemaID, today)
	cancel()
	if err != nil {
		entry := vlog.WithError(err)
		var perr *movieglu.ProviderError
		if errors.As(err, &perr) {
			entry = entry.WithFields(logrus.Fields{"status": perr.StatusCode, "body": perr.Body})
		}
		for _, a := range grp.alerts {
			entry.WithFields(logrus.Fields{"alert_id": a.ID, "film_id": a.FilmID}).
				Error("Showtime query failed; alert kept for next run")
			outcomes = append(outcomes, alert.OutcomeQueryFailed)
		}
		return outcomes
	}

	for _, a := range grp.alerts {
		outcomes = append(outcomes, c.checkAlert(ctx, vlog, a, films, today))
	}
	return outcomes
}

// checkAlert runs match, notify and retire for a single alert as one unit.
// A panic is confined to the alert that raised it; outcome holds the stage reached when it happened.
func (c *ShowtimeChecker) checkAlert(ctx context.Context, vlog *logrus.Entry, a *alert.Alert, films []showtime.Film, today time.Time) (outcome alert.Outcome) {
	alog := vlog.WithFields(logrus.Fields{"alert_id": a.ID, "film_id": a.FilmID})
	outcome = alert.OutcomeNotifyFailed
	defer func() {
		if r := recover(); r != nil {
			alog.WithFields(logrus.Fields{"panic": r, "outcome": outcome}).
				Error("Recovered from panic while checking alert; moving on to the next alert")
		}
	}()

	film, ok := showtime.FindFilm(films, a.FilmID)
	if !ok {
		alog.Debug("Film not scheduled yet")
		return alert.OutcomeNotMatched
	}

	sendCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	err := c.sender.Send(sendCtx, a.PlayerID, notificationTitle, notificationBody(a))
	cancel()
	if err != nil {
		entry := alog.WithError(err)
		var derr *onesignal.DispatchError
		if errors.As(err, &derr) {
			entry = entry.WithFields(logrus.Fields{"status": derr.StatusCode, "body": derr.Body})
		}
		entry.Error("Failed to send push notification; alert kept for next run")
		return alert.OutcomeNotifyFailed
	}
	outcome = alert.OutcomeRetireFailed

	if err := c.alerts.Delete(ctx, a.ID); err != nil {
		alog.WithError(err).Error("Notification sent but alert could not be deleted; it will be sent again next run")
		return alert.OutcomeRetireFailed
	}
	alog.Info("Alert notified and retired")

	outcome = alert.OutcomeRetired
	c.publishTriggered(ctx, alog, a, film, today)
	return outcome
}

func (c *ShowtimeChecker) publishTriggered(ctx context.Context, alog *logrus.Entry, a *alert.Alert, film showtime.Film, today time.Time) {
	if c.events == nil {
		return
	}
	ev := alert.Triggered{
		AlertID:     a.ID,
		OwnerID:     a.OwnerID,
		FilmID:      a.FilmID,
		FilmTitle:   a.FilmTitle,
		CinemaID:    a.CinemaID,
		TheaterName: a.TheaterName,
		Date:        today.Format(showtime.DateLayout),
		Times:       film.Times,
		TriggeredAt: c.clock.Now(),
	}
	pubCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	if err := c.events.PublishAlertTriggered(pubCtx, ev); err != nil {
		alog.WithError(err).Warn("Failed to publish alert event")
	}
}

func notificationBody(a *alert.Alert) string {
	return fmt.Sprintf("New showtime available for %s at %s!", a.FilmTitle, a.TheaterName)
}
