package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sirupsen/logrus"
)

const (
	// The checker holds at most CHECK_CONCURRENCY connections during a run; the rest serve the bot.
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 4
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute

	pingTimeout   = 5 * time.Second
	pingAttempts  = 5
	pingRetryWait = 2 * time.Second
)

// NewPostgresConnection opens a pooled PostgreSQL connection and waits for the server to answer.
// The first ping is retried while the server is still coming up.
func NewPostgresConnection(ctx context.Context, dataSourceName string, logger *logrus.Entry) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err := pingWithRetry(ctx, db.PingContext, pingAttempts, pingRetryWait, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// pingWithRetry calls ping up to attempts times, waiting between tries, and returns the last error.
func pingWithRetry(ctx context.Context, ping func(context.Context) error, attempts int, wait time.Duration, logger *logrus.Entry) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		logger.WithError(err).WithField("attempt", attempt).Warn("Database not reachable yet, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return err
}
