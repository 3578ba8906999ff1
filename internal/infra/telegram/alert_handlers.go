package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"showtime_alert_bot/internal/app"
	idb "showtime_alert_bot/internal/infra/database" // For ErrAlertNotFound

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAlertHandlers wires the user-facing theater search and alert commands.
func RegisterAlertHandlers(ctx context.Context, b *telebot.Bot, alertService *app.AlertService, baseLogger *logrus.Entry) {
	b.Handle("/theaters", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/theaters",
			"sender_id": c.Sender().ID,
		})

		lat, lng, err := parseCoordinates(c.Args())
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send("Usage: /theaters <latitude> <longitude>")
		}

		theaters, err := alertService.FindTheaters(ctx, lat, lng)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to search theaters")
			return c.Send("Could not search cinemas right now. Please try again later.")
		}
		handlerLogger.WithField("theaters_count", len(theaters)).Info("Theater search completed")
		return c.Send(formatTheaters(theaters))
	})

	b.Handle("/showtimes", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/showtimes",
			"sender_id": c.Sender().ID,
		})

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /showtimes <cinema_id>")
		}
		handlerLogger = handlerLogger.WithField("cinema_id", args[0])

		films, err := alertService.TodaysShowtimes(ctx, args[0])
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to fetch showtimes")
			return c.Send("Could not fetch showtimes right now. Please try again later.")
		}
		return c.Send(formatShowtimes(args[0], films))
	})

	b.Handle("/alert", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/alert",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		parsed, err := parseAlertArgs(c.Args())
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send("Usage: /alert <cinema_id> <film_id> <player_id> [title]")
		}
		handlerLogger = handlerLogger.WithFields(logrus.Fields{
			"cinema_id": parsed.CinemaID,
			"film_id":   parsed.FilmID,
		})

		created, err := alertService.CreateAlert(ctx, app.CreateAlertInput{
			OwnerID:   c.Sender().ID,
			CinemaID:  parsed.CinemaID,
			FilmID:    parsed.FilmID,
			FilmTitle: parsed.FilmTitle,
			PlayerID:  parsed.PlayerID,
		})
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrUnknownTheater):
				logWithError.Warn("Alert for unknown theater")
				return c.Send(fmt.Sprintf("Cinema %s is unknown. Find it with /theaters first.", parsed.CinemaID))
			case errors.Is(err, app.ErrInvalidAlert):
				logWithError.Warn("Invalid alert")
				return c.Send("Error: " + err.Error())
			default:
				logWithError.Error("Failed to create alert")
				return c.Send("Could not create the alert. Please try again later.")
			}
		}

		handlerLogger.WithField("alert_id", created.ID).Info("Alert created")
		return c.Send(fmt.Sprintf("Alert #%d created: I'll notify you when %s gets a showtime at %s.", created.ID, created.FilmTitle, created.TheaterName))
	})

	b.Handle("/my_alerts", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/my_alerts",
			"sender_id": c.Sender().ID,
		})

		alerts, err := alertService.ListAlerts(ctx, c.Sender().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list alerts")
			return c.Send("Could not load your alerts. Please try again later.")
		}
		if len(alerts) == 0 {
			return c.Send("You have no alerts.")
		}

		markup := &telebot.ReplyMarkup{}
		for _, a := range alerts {
			markup.InlineKeyboard = append(markup.InlineKeyboard, []telebot.InlineButton{{
				Text: fmt.Sprintf("Remove #%d", a.ID),
				Data: deleteAlertCallbackData(a.ID),
			}})
		}
		handlerLogger.WithField("alerts_count", len(alerts)).Info("Listed alerts")
		return c.Send(formatAlerts(alerts), markup)
	})

	b.Handle("/unalert", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/unalert",
			"sender_id": c.Sender().ID,
		})

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /unalert <alert_id>")
		}
		alertID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			handlerLogger.WithField("arg", args[0]).Warn("Invalid alert ID format")
			return c.Send("Error: alert ID must be a number.")
		}
		return c.Send(removeAlert(ctx, alertService, handlerLogger, c.Sender().ID, alertID))
	})

	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := c.Callback().Data
		alertID, ok := parseDeleteAlertCallback(data)
		if !ok {
			c.Bot().OnError(fmt.Errorf("unhandled callback data: %s", data), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
		}
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "remove_alert_button",
			"sender_id": c.Sender().ID,
		})
		return c.Respond(&telebot.CallbackResponse{Text: removeAlert(ctx, alertService, handlerLogger, c.Sender().ID, alertID)})
	})
}

// removeAlert deletes the alert and returns the reply for the user.
func removeAlert(ctx context.Context, alertService *app.AlertService, logger *logrus.Entry, ownerID, alertID int64) string {
	logger = logger.WithField("alert_id", alertID)
	err := alertService.DeleteAlert(ctx, ownerID, alertID)
	switch {
	case err == nil:
		logger.Info("Alert removed")
		return fmt.Sprintf("Alert #%d removed.", alertID)
	case errors.Is(err, idb.ErrAlertNotFound), errors.Is(err, app.ErrNotAlertOwner):
		// Someone else's alert looks the same as a missing one.
		logger.WithError(err).Warn("Alert not found or unauthorized")
		return fmt.Sprintf("Alert #%d not found or unauthorized.", alertID)
	default:
		logger.WithError(err).Error("Failed to remove alert")
		return "Could not remove the alert. Please try again later."
	}
}
