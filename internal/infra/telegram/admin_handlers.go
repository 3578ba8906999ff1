package telegram

import (
	"context"
	"errors"
	"time"

	"showtime_alert_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// CheckRunner is what the admin commands need from the showtime checker.
type CheckRunner interface {
	Run(ctx context.Context) (*app.RunSummary, error)
	LastRun() *app.RunSummary
}

// RegisterAdminHandlers registers handlers for admin commands.
// They are only answered for the configured admin Telegram ID.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, checker CheckRunner, adminTelegramID int64, runTimeout time.Duration, baseLogger *logrus.Entry) {
	b.Handle("/check_now", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/check_now",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if !isAdmin(c.Sender().ID, adminTelegramID) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		runCtx, cancel := context.WithTimeout(ctx, runTimeout)
		defer cancel()
		summary, err := checker.Run(runCtx)
		if err != nil {
			if errors.Is(err, app.ErrCheckInProgress) {
				handlerLogger.Warn("Check already running")
				return c.Send("A check is already running, try again shortly.")
			}
			handlerLogger.WithError(err).Error("Manual showtime check failed")
			return c.Send("Showtime check failed: " + err.Error())
		}
		handlerLogger.WithField("run_id", summary.RunID).Info("Manual showtime check completed")
		return c.Send(formatSummary(summary))
	})

	b.Handle("/last_check", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/last_check",
			"sender_id": c.Sender().ID,
		})
		if !isAdmin(c.Sender().ID, adminTelegramID) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		summary := checker.LastRun()
		if summary == nil {
			return c.Send("No showtime check has completed yet.")
		}
		return c.Send(formatSummary(summary))
	})
}

// isAdmin reports whether senderID is the admin. A zero admin ID disables admin commands.
func isAdmin(senderID, adminTelegramID int64) bool {
	return adminTelegramID != 0 && senderID == adminTelegramID
}
