package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"showtime_alert_bot/internal/domain/showtime"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "showtimes"

// ShowtimeCache keeps successful provider answers in Redis for a short TTL.
// Redis failures are logged and the call falls through to the provider. Errors are never cached.
type ShowtimeCache struct {
	next   showtime.Provider
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Entry
}

func NewShowtimeCache(next showtime.Provider, rdb *redis.Client, ttl time.Duration, logger *logrus.Entry) *ShowtimeCache {
	return &ShowtimeCache{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *ShowtimeCache) FetchShowtimes(ctx context.Context, cinemaID string, date time.Time) ([]showtime.Film, error) {
	key := fmt.Sprintf("%s:films:%s:%s", keyPrefix, cinemaID, date.Format(showtime.DateLayout))
	var films []showtime.Film
	if c.lookup(ctx, key, &films) {
		return films, nil
	}

	films, err := c.next.FetchShowtimes(ctx, cinemaID, date)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, films)
	return films, nil
}

func (c *ShowtimeCache) FetchCinemasNearby(ctx context.Context, latitude, longitude float64) ([]showtime.Cinema, error) {
	key := fmt.Sprintf("%s:cinemas:%.4f:%.4f", keyPrefix, latitude, longitude)
	var cinemas []showtime.Cinema
	if c.lookup(ctx, key, &cinemas) {
		return cinemas, nil
	}

	cinemas, err := c.next.FetchCinemasNearby(ctx, latitude, longitude)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, cinemas)
	return cinemas, nil
}

func (c *ShowtimeCache) lookup(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).WithField("key", key).Warn("Cache read failed, querying provider")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Discarding unreadable cache entry")
		return false
	}
	return true
}

func (c *ShowtimeCache) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Could not encode cache entry")
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}
