package logger

import (
	"os"
	"strings"

	"showtime_alert_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// ServiceName tags every entry handed out by For.
const ServiceName = "showtime-alert-bot"

// Log is the global logger instance
var Log = logrus.New()

// Init initializes the global logger based on application configuration.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.LogLevel, err)
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
	Log.SetFormatter(formatterFor(cfg.Environment))

	For("logger").WithFields(logrus.Fields{
		"level":       Log.GetLevel().String(),
		"environment": cfg.Environment,
	}).Debug("Logger initialised")
}

// formatterFor picks JSON for deployed environments, where logs are shipped, and text elsewhere.
func formatterFor(environment string) logrus.Formatter {
	switch environment {
	case "production", "staging":
		return &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		}
	default:
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		}
	}
}

// For returns an entry tagged with the service and component name.
func For(component string) *logrus.Entry {
	return Log.WithFields(logrus.Fields{
		"service":   ServiceName,
		"component": component,
	})
}
