// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const userHelp = "Showtime alerts: I ping your device when a film gets a showtime at a cinema you follow.\n\n" +
	"`/theaters <lat> <lng>`\n - Find cinemas near a location.\n\n" +
	"`/showtimes <cinema_id>`\n - Show today's listing for a cinema.\n\n" +
	"`/alert <cinema_id> <film_id> <player_id> [title]`\n - Get a push on device <player_id> once the film is scheduled.\n\n" +
	"`/my_alerts`\n - List your alerts.\n\n" +
	"`/unalert <alert_id>`\n - Remove an alert.\n\n" +
	"`/help`\n - Show this message."

const adminHelp = "\n\nAdmin commands:\n\n" +
	"`/check_now`\n - Run the showtime check immediately.\n\n" +
	"`/last_check`\n - Show the result of the most recent check."

func RegisterBotCommands(
	b *telebot.Bot,
	adminTelegramID int64,
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		return c.Send("Hi " + c.Sender().FirstName + "! Use /theaters to find a cinema, then /alert to follow a film there. /help lists every command.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		var helpText strings.Builder
		helpText.WriteString(userHelp)
		if isAdmin(senderID, adminTelegramID) {
			helpText.WriteString(adminHelp)
		}
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}
