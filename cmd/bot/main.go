package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"showtime_alert_bot/internal/app"
	"showtime_alert_bot/internal/domain/showtime"
	"showtime_alert_bot/internal/infra/cache"
	"showtime_alert_bot/internal/infra/clock"
	"showtime_alert_bot/internal/infra/config"
	idb "showtime_alert_bot/internal/infra/database"
	"showtime_alert_bot/internal/infra/events"
	"showtime_alert_bot/internal/infra/httpapi"
	"showtime_alert_bot/internal/infra/logger"
	"showtime_alert_bot/internal/infra/movieglu"
	"showtime_alert_bot/internal/infra/onesignal"
	"showtime_alert_bot/internal/infra/scheduler"
	"showtime_alert_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/telebot.v3"
)

const (
	schemaInitTimeout = 30 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Could not load application configuration")
	}
	logger.Init(cfg)

	mainLogger := logger.For("main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"admin_id":    cfg.AdminTelegramID,
	}).Info("Showtime alert bot starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL, logger.For("database"))
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()

	schemaCtx, cancel := context.WithTimeout(ctx, schemaInitTimeout)
	err = idb.InitialiseSchema(schemaCtx, db)
	cancel()
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not initialise database schema")
	}
	mainLogger.Info("Database connection established and schema ready.")

	// Initialize Repositories
	alertRepo := idb.NewPostgresAlertRepository(db)
	theaterRepo := idb.NewPostgresTheaterRepository(db)

	// Showtime provider, optionally behind the Redis cache
	var provider showtime.Provider = movieglu.NewClient(movieglu.Config{
		BaseURL:       cfg.MovieGluBaseURL,
		ClientID:      cfg.MovieGluClientID,
		APIKey:        cfg.MovieGluAPIKey,
		Authorization: cfg.MovieGluAuthorization,
		Territory:     cfg.MovieGluTerritory,
		Geolocation:   cfg.MovieGluGeolocation,
		Timeout:       cfg.HTTPTimeout,
	})
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to Redis")
		}
		defer rdb.Close()
		provider = cache.NewShowtimeCache(provider, rdb, cfg.CacheTTL, logger.For("showtime_cache"))
		mainLogger.WithField("ttl", cfg.CacheTTL.String()).Info("Showtime cache enabled.")
	}

	pushSender := onesignal.NewClient(onesignal.Config{
		URL:        cfg.OneSignalURL,
		AppID:      cfg.OneSignalAppID,
		RESTAPIKey: cfg.OneSignalRESTAPIKey,
		Timeout:    cfg.HTTPTimeout,
	})

	checkerOpts := []app.CheckerOption{
		app.WithLocation(cfg.CheckLocation),
		app.WithConcurrency(cfg.CheckConcurrency),
		app.WithCallTimeout(cfg.HTTPTimeout),
	}
	if cfg.RabbitMQURL != "" {
		publisher, err := events.NewPublisher(cfg.RabbitMQURL)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to RabbitMQ")
		}
		defer publisher.Close()
		checkerOpts = append(checkerOpts, app.WithEventPublisher(publisher))
		mainLogger.Info("Alert events will be published to RabbitMQ.")
	}

	checker := app.NewShowtimeChecker(alertRepo, provider, pushSender, logger.For("showtime_checker"), checkerOpts...)
	alertService := app.NewAlertService(alertRepo, theaterRepo, provider, clock.NewSystem(), cfg.CheckLocation)

	showtimeScheduler := scheduler.NewShowtimeScheduler(
		checker,
		logger.For("scheduler"),
		cfg.CronSpecCheck,
		cfg.CheckLocation,
		cfg.CheckRunTimeout,
	)
	if err := showtimeScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start showtime scheduler")
	}

	var bot *telebot.Bot
	if cfg.TelegramToken != "" {
		bot, err = newBot(cfg.TelegramToken)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		botLogger := logger.For("telegram")
		telegram.RegisterBotCommands(bot, cfg.AdminTelegramID, botLogger)
		telegram.RegisterAlertHandlers(ctx, bot, alertService, botLogger)
		telegram.RegisterAdminHandlers(ctx, bot, checker, cfg.AdminTelegramID, cfg.CheckRunTimeout, botLogger)
		mainLogger.Info("Telegram command handlers registered.")
	} else {
		mainLogger.Warn("TELEGRAM_TOKEN is not set, Telegram bot disabled.")
	}

	router := httpapi.NewRouter(db, checker, logger.For("http"))

	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		mainLogger.WithField("addr", cfg.HTTPAddr).Info("Starting HTTP server...")
		if err := router.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, httpapi.ErrServerClosed) {
			return err
		}
		return nil
	})

	if bot != nil {
		// Start blocks until Stop is called.
		g.Go(func() error {
			bot.Start()
			return nil
		})
	}

	g.Go(func() error {
		<-runCtx.Done()
		mainLogger.Info("Shutting down application...")

		if bot != nil {
			bot.Stop()
		}
		showtimeScheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return router.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		mainLogger.WithError(err).Error("Application stopped with error")
		return
	}
	mainLogger.Info("Application shut down gracefully.")
}

func newBot(token string) (*telebot.Bot, error) {
	botLogger := logger.For("telebot")
	pref := telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{
					"message":   c.Text(),
					"sender_id": c.Sender().ID,
					"chat_id":   c.Chat().ID,
				})
			}
			entry.Error("Telegram handler error")
		},
	}
	return telebot.NewBot(pref)
}
