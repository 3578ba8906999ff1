package logger

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// CronLogger adapts a logrus entry to robfig/cron's Logger interface.
// Cron's routine chatter ("wake", "run", "schedule") goes to debug; errors stay errors.
type CronLogger struct {
	entry *logrus.Entry
}

func NewCronLogger(entry *logrus.Entry) *CronLogger {
	return &CronLogger{entry: entry}
}

func (l *CronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(cronFields(keysAndValues)).Debug("cron: " + msg)
}

func (l *CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithError(err).WithFields(cronFields(keysAndValues)).Error("cron: " + msg)
}

// cronFields turns cron's alternating key/value list into logrus fields.
// A trailing key without a value is kept under "extra".
func cronFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 >= len(keysAndValues) {
			fields["extra"] = key
			break
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
