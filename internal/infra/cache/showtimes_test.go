package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"showtime_alert_bot/internal/domain/showtime"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	films       []showtime.Film
	cinemas     []showtime.Cinema
	err         error
	filmCalls   int
	cinemaCalls int
}

func (p *countingProvider) FetchShowtimes(_ context.Context, _ string, _ time.Time) ([]showtime.Film, error) {
	p.filmCalls++
	return p.films, p.err
}

func (p *countingProvider) FetchCinemasNearby(_ context.Context, _, _ float64) ([]showtime.Cinema, error) {
	p.cinemaCalls++
	return p.cinemas, p.err
}

func newCache(t *testing.T, next showtime.Provider) (*ShowtimeCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewShowtimeCache(next, rdb, 10*time.Minute, logrus.NewEntry(logger)), mr
}

func TestShowtimeCache_FetchShowtimes(t *testing.T) {
	date := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	t.Run("second call is served from redis", func(t *testing.T) {
		next := &countingProvider{films: []showtime.Film{{ID: "M1", Title: "Dune", Times: []string{"7:30 PM"}}}}
		c, mr := newCache(t, next)

		first, err := c.FetchShowtimes(context.Background(), "V1", date)
		require.NoError(t, err)
		second, err := c.FetchShowtimes(context.Background(), "V1", date)
		require.NoError(t, err)

		assert.Equal(t, 1, next.filmCalls)
		assert.Equal(t, first, second)
		assert.True(t, mr.Exists("showtimes:films:V1:2026-10-15"))
		assert.Equal(t, 10*time.Minute, mr.TTL("showtimes:films:V1:2026-10-15"))
	})

	t.Run("different dates are separate entries", func(t *testing.T) {
		next := &countingProvider{films: []showtime.Film{}}
		c, _ := newCache(t, next)

		_, err := c.FetchShowtimes(context.Background(), "V1", date)
		require.NoError(t, err)
		_, err = c.FetchShowtimes(context.Background(), "V1", date.AddDate(0, 0, 1))
		require.NoError(t, err)

		assert.Equal(t, 2, next.filmCalls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		next := &countingProvider{err: errors.New("boom")}
		c, mr := newCache(t, next)

		_, err := c.FetchShowtimes(context.Background(), "V1", date)
		require.Error(t, err)
		_, err = c.FetchShowtimes(context.Background(), "V1", date)
		require.Error(t, err)

		assert.Equal(t, 2, next.filmCalls)
		assert.Empty(t, mr.Keys())
	})

	t.Run("redis outage falls through to provider", func(t *testing.T) {
		next := &countingProvider{films: []showtime.Film{{ID: "M1"}}}
		c, mr := newCache(t, next)
		mr.Close()

		films, err := c.FetchShowtimes(context.Background(), "V1", date)
		require.NoError(t, err)
		assert.Len(t, films, 1)
		assert.Equal(t, 1, next.filmCalls)
	})
}

func TestShowtimeCache_FetchCinemasNearby(t *testing.T) {
	next := &countingProvider{cinemas: []showtime.Cinema{{CinemaID: "8893", Name: "Odeon"}}}
	c, _ := newCache(t, next)

	for i := 0; i < 3; i++ {
		cinemas, err := c.FetchCinemasNearby(context.Background(), 51.5072, -0.1276)
		require.NoError(t, err)
		require.Len(t, cinemas, 1)
		assert.Equal(t, "Odeon", cinemas[0].Name)
	}
	assert.Equal(t, 1, next.cinemaCalls)
}
